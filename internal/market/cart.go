package market

import (
	"ecobazaarx/internal/carbon"
	"ecobazaarx/internal/models"
)

// AddToCart suma quantity a la línea del producto o crea una nueva.
// No se verifica inventario.
func (s *State) AddToCart(product models.Product, quantity int) error {
	if product.ID == 0 {
		return &ValidationError{Field: "product_id", Message: "is required"}
	}
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addToCartLocked(product, quantity)
	return nil
}

// AddToCartByID resuelve el producto en el catálogo antes de agregarlo
func (s *State) AddToCartByID(productID int64, quantity int) (models.CartLine, error) {
	if quantity < 1 {
		return models.CartLine{}, &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndexLocked(productID)
	if idx < 0 {
		return models.CartLine{}, &OpError{Op: "market.AddToCart", ID: productID, Err: ErrProductNotFound}
	}
	return s.addToCartLocked(s.products[idx], quantity), nil
}

func (s *State) addToCartLocked(product models.Product, quantity int) models.CartLine {
	for i := range s.cart {
		if s.cart[i].ProductID == product.ID {
			s.cart[i].Quantity += quantity
			return s.cart[i]
		}
	}
	line := models.CartLine{
		ProductID: product.ID,
		Product:   product.Clone(),
		Quantity:  quantity,
	}
	s.cart = append(s.cart, line)
	return line
}

// RemoveFromCart quita la línea del producto; no hace nada si no existe
func (s *State) RemoveFromCart(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFromCartLocked(productID)
}

func (s *State) removeFromCartLocked(productID int64) {
	for i := range s.cart {
		if s.cart[i].ProductID == productID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return
		}
	}
}

// UpdateCartQuantity fija la cantidad con un mínimo de 1; nunca borra la línea
func (s *State) UpdateCartQuantity(productID int64, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].ProductID == productID {
			s.cart[i].Quantity = quantity
			return
		}
	}
}

// ClearCart vacía el carrito
func (s *State) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

// Cart devuelve una copia de las líneas del carrito
func (s *State) Cart() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked()
}

func (s *State) cartLocked() []models.CartLine {
	out := make([]models.CartLine, len(s.cart))
	for i, l := range s.cart {
		l.Product = l.Product.Clone()
		out[i] = l
	}
	return out
}

// CartSummary resume costo y huella del carrito
func (s *State) CartSummary() carbon.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return carbon.Summarize(s.cart)
}
