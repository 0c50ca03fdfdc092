package models

import (
	"strings"
	"time"
)

// ProductStatus es el estado de moderación de un producto
type ProductStatus string

const (
	StatusPending  ProductStatus = "pending"
	StatusApproved ProductStatus = "approved"
	StatusRejected ProductStatus = "rejected"
)

// Acciones registradas en el historial de auditoría
const (
	ActionApproved          = "Approved"
	ActionRejected          = "Rejected"
	ActionFootprintVerified = "Footprint Verified"
)

// Modos de envío soportados por el cálculo de huella
const (
	ShippingAir  = "Air"
	ShippingRoad = "Road"
	ShippingSea  = "Sea"
)

// Product representa un producto en el catálogo
type Product struct {
	ID                int64         `json:"id" bson:"_id"`
	Name              string        `json:"name" bson:"name"`
	Category          string        `json:"category" bson:"category"`
	Description       string        `json:"description,omitempty" bson:"description,omitempty"`
	SellerID          int64         `json:"seller_id" bson:"seller_id"`
	SellerName        string        `json:"seller_name" bson:"seller_name"`
	Price             float64       `json:"price" bson:"price"`
	Weight            float64       `json:"weight" bson:"weight"`
	Material          string        `json:"material" bson:"material"`
	ShippingMode      string        `json:"shipping_mode" bson:"shipping_mode"`
	CarbonFootprint   float64       `json:"carbon_footprint" bson:"carbon_footprint"`
	FootprintVerified bool          `json:"footprint_verified" bson:"footprint_verified"`
	EcoScore          float64       `json:"eco_score" bson:"eco_score"`
	Inventory         int           `json:"inventory" bson:"inventory"`
	Image             string        `json:"image,omitempty" bson:"image,omitempty"`
	Status            ProductStatus `json:"status" bson:"status"`
	AuditTrail        []AuditEntry  `json:"audit_trail" bson:"audit_trail"`
	CreatedAt         time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" bson:"updated_at"`
}

// AuditEntry registra una acción de moderación sobre un producto
type AuditEntry struct {
	Actor     string    `json:"actor" bson:"actor"`
	Action    string    `json:"action" bson:"action"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
}

// ProductDraft es el payload del vendedor para crear un producto
type ProductDraft struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	SellerID     int64   `json:"seller_id"`
	SellerName   string  `json:"seller_name"`
	Price        float64 `json:"price" validate:"gte=0"`
	Weight       float64 `json:"weight" validate:"gte=0"`
	Material     string  `json:"material"`
	ShippingMode string  `json:"shipping_mode" validate:"required,oneof=Air Road Sea"`
	EcoScore     float64 `json:"eco_score" validate:"gte=0,lte=5"`
	Inventory    int     `json:"inventory" validate:"gte=0"`
	Image        string  `json:"image"`
}

// ProductUpdate representa los campos actualizables de un producto
type ProductUpdate struct {
	Name         *string  `json:"name,omitempty"`
	Category     *string  `json:"category,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Material     *string  `json:"material,omitempty"`
	ShippingMode *string  `json:"shipping_mode,omitempty"`
	EcoScore     *float64 `json:"eco_score,omitempty"`
	Inventory    *int     `json:"inventory,omitempty"`
	Image        *string  `json:"image,omitempty"`
}

// Apply copia los campos presentes sobre p
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.Material != nil {
		p.Material = *u.Material
	}
	if u.ShippingMode != nil {
		p.ShippingMode = *u.ShippingMode
	}
	if u.EcoScore != nil {
		p.EcoScore = *u.EcoScore
	}
	if u.Inventory != nil {
		p.Inventory = *u.Inventory
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
}

// Empty indica si no hay ningún campo para actualizar
func (u ProductUpdate) Empty() bool {
	return u == ProductUpdate{}
}

// Clone devuelve una copia que no comparte slices con p
func (p Product) Clone() Product {
	if p.AuditTrail != nil {
		trail := make([]AuditEntry, len(p.AuditTrail))
		copy(trail, p.AuditTrail)
		p.AuditTrail = trail
	}
	return p
}

// ProductFilter filtra los listados del catálogo
type ProductFilter struct {
	Status    ProductStatus
	Category  string
	SellerID  int64
	Query     string
	SortBy    string
	SortOrder string
}

// ParseProductStatus acepta "Approved", "approved", etc.
func ParseProductStatus(v string) (ProductStatus, bool) {
	switch ProductStatus(strings.ToLower(strings.TrimSpace(v))) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}
