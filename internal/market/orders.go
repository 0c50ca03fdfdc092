package market

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ecobazaarx/internal/carbon"
	"ecobazaarx/internal/events"
	"ecobazaarx/internal/models"
)

// Checkout convierte cada línea del carrito en una orden. Las órdenes se
// agregan y el carrito se vacía en la misma sección crítica.
func (s *State) Checkout(ctx context.Context) ([]models.Order, error) {
	orders, err := s.checkout(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicOrderPlaced, events.NewOrderPlaced(orders))
	return orders, nil
}

func (s *State) checkout(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return nil, ErrEmptyCart
	}
	buyer, err := s.buyerLocked()
	if err != nil {
		return nil, err
	}

	checkoutID := uuid.NewString()
	now := s.now()
	orders := make([]models.Order, 0, len(s.cart))
	for _, line := range s.cart {
		product := line.Product
		if idx := s.productIndexLocked(line.ProductID); idx >= 0 {
			product = s.products[idx]
		}
		orders = append(orders, s.newOrder(checkoutID, product, line.Quantity, buyer, now))
	}

	s.orders = append(s.orders, orders...)
	s.cart = nil
	s.persistLocked(ctx, "checkout")

	s.logger.Info("Checkout completed",
		"checkout_id", checkoutID,
		"orders", len(orders),
		"buyer", buyer.Email)

	out := make([]models.Order, len(orders))
	copy(out, orders)
	return out, nil
}

// AddOrder compra un producto directamente sin pasar por el carrito
func (s *State) AddOrder(ctx context.Context, productID int64, quantity int) (models.Order, error) {
	if quantity < 1 {
		return models.Order{}, &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	order, err := s.addOrder(ctx, productID, quantity)
	if err != nil {
		return models.Order{}, err
	}
	s.publish(ctx, events.TopicOrderPlaced, events.NewOrderPlaced([]models.Order{order}))
	return order, nil
}

func (s *State) addOrder(ctx context.Context, productID int64, quantity int) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndexLocked(productID)
	if idx < 0 {
		return models.Order{}, &OpError{Op: "market.AddOrder", ID: productID, Err: ErrProductNotFound}
	}
	buyer, err := s.buyerLocked()
	if err != nil {
		return models.Order{}, err
	}

	order := s.newOrder(uuid.NewString(), s.products[idx], quantity, buyer, s.now())
	s.orders = append(s.orders, order)
	s.persistLocked(ctx, "add_order")

	s.logger.Info("Order placed", "order_id", order.ID, "product_id", productID, "quantity", quantity)
	return order, nil
}

// newOrder es el único constructor de órdenes
func (s *State) newOrder(checkoutID string, p models.Product, quantity int, buyer models.Buyer, at time.Time) models.Order {
	return models.Order{
		ID:         s.nextOrderID(),
		CheckoutID: checkoutID,
		Product:    models.SnapshotOf(p),
		Buyer:      buyer,
		Quantity:   quantity,
		Total:      carbon.LineTotal(p.Price, quantity),
		Footprint:  carbon.Round(p.CarbonFootprint*float64(quantity), 2),
		Date:       at,
	}
}

func (s *State) buyerLocked() (models.Buyer, error) {
	if user, ok := s.currentUserLocked(); ok {
		return models.Buyer{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
	}
	if s.policy == PolicyStrict {
		return models.Buyer{}, ErrNotAuthenticated
	}
	return models.Buyer{Name: models.GuestName, Email: models.GuestEmail}, nil
}

// Orders devuelve una copia del historial de órdenes
func (s *State) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// OrdersForSeller filtra las órdenes de productos del vendedor
func (s *State) OrdersForSeller(sellerID int64) []models.Order {
	return s.filterOrders(func(o models.Order) bool { return o.Product.SellerID == sellerID })
}

// OrdersForBuyer filtra las órdenes de un comprador por email
func (s *State) OrdersForBuyer(email string) []models.Order {
	return s.filterOrders(func(o models.Order) bool { return o.Buyer.Email == email })
}

func (s *State) filterOrders(keep func(models.Order) bool) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
