package market

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"ecobazaarx/internal/carbon"
	"ecobazaarx/internal/events"
	"ecobazaarx/internal/models"
)

// AddProduct da de alta un producto en estado pending con la huella
// calculada a partir de peso y modo de envío.
func (s *State) AddProduct(ctx context.Context, d models.ProductDraft) (models.Product, error) {
	if err := s.validateStruct(d); err != nil {
		return models.Product{}, err
	}
	if d.Category == "" {
		d.Category = "General"
	}

	product := s.addProduct(ctx, d)
	s.publish(ctx, events.TopicProductCreated, events.NewProductEvent(product, "created"))
	return product, nil
}

func (s *State) addProduct(ctx context.Context, d models.ProductDraft) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	product := models.Product{
		ID:              s.nextProductID(),
		Name:            d.Name,
		Category:        d.Category,
		Description:     d.Description,
		SellerID:        d.SellerID,
		SellerName:      d.SellerName,
		Price:           d.Price,
		Weight:          d.Weight,
		Material:        d.Material,
		ShippingMode:    d.ShippingMode,
		CarbonFootprint: carbon.Footprint(d.Weight, d.ShippingMode),
		EcoScore:        d.EcoScore,
		Inventory:       d.Inventory,
		Image:           d.Image,
		Status:          models.StatusPending,
		AuditTrail:      []models.AuditEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if user, ok := s.currentUserLocked(); ok && product.SellerID == 0 && user.Role == models.RoleSeller {
		product.SellerID = user.ID
		product.SellerName = user.Name
	}
	s.products = append(s.products, product)
	s.persistLocked(ctx, "add_product")

	s.logger.Info("Product created", "product_id", product.ID, "seller_id", product.SellerID)
	return product.Clone()
}

// UpdateProduct reemplaza el producto con el mismo id.
//
// La huella se recalcula si cambian peso o modo de envío; editarla sin ese
// cambio es un error de validación (usar VerifyFootprint). Un cambio de estado
// pasa por moderación y agrega exactamente una entrada de auditoría. El
// historial de auditoría del payload se ignora.
func (s *State) UpdateProduct(ctx context.Context, updated models.Product) (models.Product, error) {
	return s.updateProduct(ctx, updated.ID, "market.UpdateProduct", func(models.Product) models.Product {
		return updated.Clone()
	})
}

// ApplyProductUpdate aplica un cambio parcial del vendedor sobre el estado
// vigente del producto
func (s *State) ApplyProductUpdate(ctx context.Context, id int64, u models.ProductUpdate) (models.Product, error) {
	return s.updateProduct(ctx, id, "market.ApplyProductUpdate", func(current models.Product) models.Product {
		u.Apply(&current)
		return current
	})
}

// updateProduct lee, arma y escribe el producto en la misma sección crítica
func (s *State) updateProduct(ctx context.Context, id int64, op string, build func(models.Product) models.Product) (models.Product, error) {
	product, moderated, err := func() (models.Product, string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		idx := s.productIndexLocked(id)
		if idx < 0 {
			return models.Product{}, "", &OpError{Op: op, ID: id, Err: ErrProductNotFound}
		}
		current := s.products[idx]
		next, action, err := s.mergeProductLocked(op, current, build(current.Clone()))
		if err != nil {
			return models.Product{}, "", err
		}
		s.products[idx] = next
		s.persistLocked(ctx, "update_product")
		return next.Clone(), action, nil
	}()
	if err != nil {
		return models.Product{}, err
	}

	s.publish(ctx, events.TopicProductUpdated, events.NewProductEvent(product, "updated"))
	if moderated != "" {
		s.publish(ctx, events.TopicProductModerated, events.NewProductEvent(product, moderated))
	}
	return product, nil
}

// mergeProductLocked valida el candidato y conserva lo que pertenece al
// contenedor: identidad, vendedor, auditoría y huella
func (s *State) mergeProductLocked(op string, current, candidate models.Product) (models.Product, string, error) {
	if err := validateProduct(candidate); err != nil {
		return models.Product{}, "", err
	}

	target := current.Status
	if candidate.Status != "" {
		target, _ = models.ParseProductStatus(string(candidate.Status))
	}

	next := candidate
	next.ID = current.ID
	next.SellerID = current.SellerID
	next.SellerName = current.SellerName
	next.CreatedAt = current.CreatedAt
	next.AuditTrail = current.Clone().AuditTrail
	next.Status = current.Status

	if next.Weight != current.Weight || next.ShippingMode != current.ShippingMode {
		next.CarbonFootprint = carbon.Footprint(next.Weight, next.ShippingMode)
		next.FootprintVerified = false
	} else {
		if candidate.CarbonFootprint != current.CarbonFootprint {
			return models.Product{}, "", &ValidationError{
				Field:   "carbon_footprint",
				Message: "is derived from weight and shipping mode; use footprint verification to set it",
			}
		}
		next.FootprintVerified = current.FootprintVerified
	}

	var action string
	if target != current.Status {
		if !canTransition(current.Status, target) {
			return models.Product{}, "", &OpError{Op: op, ID: current.ID, Err: ErrInvalidTransition}
		}
		action = actionFor(target)
		next.AuditTrail = append(next.AuditTrail, s.auditEntryLocked(current, "", action, ""))
		next.Status = target
	}

	next.UpdatedAt = s.now()
	return next, action, nil
}

// ApproveProduct aprueba el producto. Volver a aprobar uno ya aprobado sólo
// agrega otra entrada de auditoría.
func (s *State) ApproveProduct(ctx context.Context, id int64, actor string) (models.Product, error) {
	return s.moderate(ctx, id, actor, models.StatusApproved, "")
}

// RejectProduct rechaza el producto con un motivo opcional
func (s *State) RejectProduct(ctx context.Context, id int64, actor, reason string) (models.Product, error) {
	return s.moderate(ctx, id, actor, models.StatusRejected, reason)
}

func (s *State) moderate(ctx context.Context, id int64, actor string, target models.ProductStatus, note string) (models.Product, error) {
	product, err := func() (models.Product, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		idx := s.productIndexLocked(id)
		if idx < 0 {
			return models.Product{}, &OpError{Op: "market.Moderate", ID: id, Err: ErrProductNotFound}
		}
		p := s.products[idx]
		if p.Status != target && !canTransition(p.Status, target) {
			return models.Product{}, &OpError{Op: "market.Moderate", ID: id, Err: ErrInvalidTransition}
		}

		p.AuditTrail = append(p.AuditTrail, s.auditEntryLocked(p, actor, actionFor(target), note))
		p.Status = target
		p.UpdatedAt = s.now()
		s.products[idx] = p
		s.persistLocked(ctx, "moderate_product")

		s.logger.Info("Product moderated", "product_id", id, "status", target)
		return p.Clone(), nil
	}()
	if err != nil {
		return models.Product{}, err
	}

	s.publish(ctx, events.TopicProductModerated, events.NewProductEvent(product, actionFor(target)))
	return product, nil
}

// VerifyFootprint fija la huella verificada por un administrador
func (s *State) VerifyFootprint(ctx context.Context, id int64, actor string, value float64) (models.Product, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return models.Product{}, &ValidationError{Field: "carbon_footprint", Message: "must be a non-negative number"}
	}

	product, err := func() (models.Product, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		idx := s.productIndexLocked(id)
		if idx < 0 {
			return models.Product{}, &OpError{Op: "market.VerifyFootprint", ID: id, Err: ErrProductNotFound}
		}
		p := s.products[idx]
		note := fmt.Sprintf("set to %gkg", value)
		p.AuditTrail = append(p.AuditTrail, s.auditEntryLocked(p, actor, models.ActionFootprintVerified, note))
		p.CarbonFootprint = value
		p.FootprintVerified = true
		p.UpdatedAt = s.now()
		s.products[idx] = p
		s.persistLocked(ctx, "verify_footprint")
		return p.Clone(), nil
	}()
	if err != nil {
		return models.Product{}, err
	}

	s.publish(ctx, events.TopicProductModerated, events.NewProductEvent(product, models.ActionFootprintVerified))
	return product, nil
}

// RemoveProduct borra el producto y su línea del carrito
func (s *State) RemoveProduct(ctx context.Context, id int64) error {
	err := func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		idx := s.productIndexLocked(id)
		if idx < 0 {
			return &OpError{Op: "market.RemoveProduct", ID: id, Err: ErrProductNotFound}
		}
		s.products = append(s.products[:idx], s.products[idx+1:]...)
		s.removeFromCartLocked(id)
		s.persistLocked(ctx, "remove_product")
		return nil
	}()
	if err != nil {
		return err
	}

	s.publish(ctx, events.TopicProductDeleted, events.ProductEvent{ProductID: id, Action: "deleted"})
	return nil
}

// Product busca un producto por id
func (s *State) Product(id int64) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndexLocked(id)
	if idx < 0 {
		return models.Product{}, false
	}
	return s.products[idx].Clone(), true
}

// Products lista productos filtrados; por defecto los más nuevos primero
func (s *State) Products(f models.ProductFilter) []models.Product {
	s.mu.Lock()
	out := make([]models.Product, 0, len(s.products))
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, p := range s.products {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.SellerID != 0 && p.SellerID != f.SellerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SellerName), q) {
			continue
		}
		out = append(out, p.Clone())
	}
	s.mu.Unlock()

	sortProducts(out, f.SortBy, f.SortOrder)
	return out
}

// RelatedProducts devuelve hasta limit productos aprobados de la misma
// categoría, sin incluir al producto consultado
func (s *State) RelatedProducts(id int64, limit int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndexLocked(id)
	if idx < 0 {
		return nil, &OpError{Op: "market.RelatedProducts", ID: id, Err: ErrProductNotFound}
	}
	category := s.products[idx].Category

	out := []models.Product{}
	for _, p := range s.products {
		if limit > 0 && len(out) >= limit {
			break
		}
		if p.ID == id || p.Status != models.StatusApproved || p.Category != category {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func sortProducts(list []models.Product, by, order string) {
	desc := order == "desc"
	var less func(a, b models.Product) bool
	switch by {
	case "price":
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case "footprint", "carbon_footprint":
		less = func(a, b models.Product) bool { return a.CarbonFootprint < b.CarbonFootprint }
	case "name":
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	case "eco_score":
		less = func(a, b models.Product) bool { return a.EcoScore < b.EcoScore }
		// Mejor puntaje primero salvo que se pida asc
		desc = order != "asc"
	default:
		less = func(a, b models.Product) bool { return a.ID < b.ID }
		desc = order != "asc"
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

func (s *State) productIndexLocked(id int64) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// auditEntryLocked arma la entrada con un timestamp nunca anterior al último
func (s *State) auditEntryLocked(p models.Product, actor, action, note string) models.AuditEntry {
	if actor == "" {
		actor = DefaultActor
		if user, ok := s.currentUserLocked(); ok && user.Role == models.RoleAdmin {
			actor = user.Name
		}
	}
	ts := s.now()
	if n := len(p.AuditTrail); n > 0 && ts.Before(p.AuditTrail[n-1].Timestamp) {
		ts = p.AuditTrail[n-1].Timestamp
	}
	return models.AuditEntry{Actor: actor, Action: action, Timestamp: ts, Note: note}
}

func canTransition(from, to models.ProductStatus) bool {
	return from == models.StatusPending && (to == models.StatusApproved || to == models.StatusRejected)
}

func actionFor(status models.ProductStatus) string {
	if status == models.StatusRejected {
		return models.ActionRejected
	}
	return models.ActionApproved
}

// validateProduct valida los campos del producto completo
func validateProduct(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if math.IsNaN(p.Price) || p.Price < 0 {
		return &ValidationError{Field: "price", Message: "price cannot be negative"}
	}
	if math.IsNaN(p.Weight) || p.Weight < 0 {
		return &ValidationError{Field: "weight", Message: "weight cannot be negative"}
	}
	if p.Inventory < 0 {
		return &ValidationError{Field: "inventory", Message: "inventory cannot be negative"}
	}
	if p.EcoScore < 0 || p.EcoScore > 5 {
		return &ValidationError{Field: "eco_score", Message: "must be between 0 and 5"}
	}
	if _, ok := carbon.EmissionFactor(p.ShippingMode); !ok {
		return &ValidationError{Field: "shipping_mode", Message: "must be one of [Air Road Sea]"}
	}
	if p.Status != "" {
		if _, ok := models.ParseProductStatus(string(p.Status)); !ok {
			return &ValidationError{Field: "status", Message: "must be one of [pending approved rejected]"}
		}
	}
	return nil
}
