package market

import (
	"context"
	"fmt"

	"ecobazaarx/internal/models"
)

// DemoPassword es la contraseña de todas las cuentas de demo
const DemoPassword = "ecobazaar123"

var demoUsers = []models.UserCandidate{
	{Name: "Admin", Email: "admin@ecobazaarx.com", Role: models.RoleAdmin},
	{Name: "Seller Alice", Email: "alice@ecobazaarx.com", Role: models.RoleSeller},
	{Name: "Seller Bob", Email: "bob@ecobazaarx.com", Role: models.RoleSeller},
	{Name: "Buyer John", Email: "john@ecobazaarx.com", Role: models.RoleConsumer},
}

// SeedDemo carga usuarios y productos de ejemplo si el estado está vacío.
// Devuelve false si ya había usuarios.
func (s *State) SeedDemo(ctx context.Context, password string) (bool, error) {
	if len(s.Users()) > 0 {
		return false, nil
	}
	if password == "" {
		password = DemoPassword
	}

	sellers := make(map[string]models.User)
	for _, c := range demoUsers {
		c.Password = password
		user, err := s.RegisterUser(ctx, c)
		if err != nil {
			return false, fmt.Errorf("seed user %s: %w", c.Email, err)
		}
		if user.Role == models.RoleSeller {
			sellers[user.Name] = user
		}
	}

	alice := sellers["Seller Alice"]
	bob := sellers["Seller Bob"]
	drafts := []models.ProductDraft{
		{
			Name: "Men Grey Hoodie", Category: "Clothing", SellerID: alice.ID, SellerName: alice.Name,
			Description: "Organic cotton hoodie", Price: 49.99, Weight: 0.6, Material: "Organic Cotton",
			ShippingMode: models.ShippingRoad, EcoScore: 4.2, Inventory: 25,
		},
		{
			Name: "Women Striped T-Shirt", Category: "Clothing", SellerID: bob.ID, SellerName: bob.Name,
			Description: "Recycled fibre tee", Price: 19.99, Weight: 0.2, Material: "Recycled Polyester",
			ShippingMode: models.ShippingSea, EcoScore: 3.8, Inventory: 40,
		},
	}

	for i, d := range drafts {
		product, err := s.AddProduct(ctx, d)
		if err != nil {
			return false, fmt.Errorf("seed product %q: %w", d.Name, err)
		}
		// El primero queda aprobado para que el catálogo no arranque vacío
		if i == 0 {
			if _, err := s.ApproveProduct(ctx, product.ID, DefaultActor); err != nil {
				return false, err
			}
		}
	}

	s.logger.Info("Demo data seeded", "users", len(demoUsers), "products", len(drafts))
	return true, nil
}
