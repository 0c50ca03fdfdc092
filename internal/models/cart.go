package models

// CartLine es una línea del carrito, única por producto
type CartLine struct {
	ProductID int64   `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
}

// Subtotal devuelve precio por cantidad
func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}
