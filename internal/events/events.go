// Package events publica los eventos de dominio del marketplace.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"ecobazaarx/internal/models"
)

// Tópicos publicados
const (
	TopicUserRegistered   = "user.registered"
	TopicProductCreated   = "product.created"
	TopicProductUpdated   = "product.updated"
	TopicProductModerated = "product.moderated"
	TopicProductDeleted   = "product.deleted"
	TopicOrderPlaced      = "order.placed"
)

// Publisher envía un evento a un tópico
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// UserRegistered se emite al crear una cuenta
type UserRegistered struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ProductEvent cubre altas, cambios, moderación y bajas
type ProductEvent struct {
	ProductID       int64   `json:"product_id"`
	SellerID        int64   `json:"seller_id,omitempty"`
	Status          string  `json:"status,omitempty"`
	Action          string  `json:"action"`
	CarbonFootprint float64 `json:"carbon_footprint,omitempty"`
}

// NewProductEvent arma el evento a partir del producto
func NewProductEvent(p models.Product, action string) ProductEvent {
	return ProductEvent{
		ProductID:       p.ID,
		SellerID:        p.SellerID,
		Status:          string(p.Status),
		Action:          action,
		CarbonFootprint: p.CarbonFootprint,
	}
}

// OrderPlaced se emite una vez por checkout
type OrderPlaced struct {
	CheckoutID string    `json:"checkout_id"`
	OrderIDs   []int64   `json:"order_ids"`
	BuyerEmail string    `json:"buyer_email"`
	Total      float64   `json:"total"`
	Footprint  float64   `json:"footprint"`
	PlacedAt   time.Time `json:"placed_at"`
}

// NewOrderPlaced resume las órdenes de un mismo checkout
func NewOrderPlaced(orders []models.Order) OrderPlaced {
	var ev OrderPlaced
	total, footprint := decimal.Zero, decimal.Zero
	for _, o := range orders {
		ev.CheckoutID = o.CheckoutID
		ev.BuyerEmail = o.Buyer.Email
		ev.PlacedAt = o.Date
		ev.OrderIDs = append(ev.OrderIDs, o.ID)
		total = total.Add(decimal.NewFromFloat(o.Total))
		footprint = footprint.Add(decimal.NewFromFloat(o.Footprint))
	}
	ev.Total = total.Round(2).InexactFloat64()
	ev.Footprint = footprint.Round(2).InexactFloat64()
	return ev
}

// LogPublisher escribe los eventos en el log; se usa sin Kafka
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher crea un publisher que sólo loguea
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.logger.DebugContext(ctx, "Event published", "topic", topic, "payload", payload)
	return nil
}
