package models

import "time"

// GuestName y GuestEmail identifican al comprador sin sesión
const (
	GuestName  = "Guest"
	GuestEmail = "guest@example.com"
)

// ProductSnapshot copia los datos del producto al momento de la compra
type ProductSnapshot struct {
	ID              int64   `json:"id" bson:"id"`
	Name            string  `json:"name" bson:"name"`
	Price           float64 `json:"price" bson:"price"`
	CarbonFootprint float64 `json:"carbon_footprint" bson:"carbon_footprint"`
	Category        string  `json:"category" bson:"category"`
	SellerID        int64   `json:"seller_id" bson:"seller_id"`
	SellerName      string  `json:"seller_name" bson:"seller_name"`
}

// Buyer identifica a quien realizó la compra
type Buyer struct {
	UserID int64  `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email" bson:"email"`
}

// Order es un registro histórico inmutable
type Order struct {
	ID         int64           `json:"id" bson:"_id"`
	CheckoutID string          `json:"checkout_id" bson:"checkout_id"`
	Product    ProductSnapshot `json:"product" bson:"product"`
	Buyer      Buyer           `json:"buyer" bson:"buyer"`
	Quantity   int             `json:"quantity" bson:"quantity"`
	Total      float64         `json:"total" bson:"total"`
	Footprint  float64         `json:"footprint" bson:"footprint"`
	Date       time.Time       `json:"date" bson:"date"`
}

// SnapshotOf captura los campos de p que se guardan en una orden
func SnapshotOf(p Product) ProductSnapshot {
	return ProductSnapshot{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		CarbonFootprint: p.CarbonFootprint,
		Category:        p.Category,
		SellerID:        p.SellerID,
		SellerName:      p.SellerName,
	}
}
