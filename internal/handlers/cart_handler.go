package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/carbon"
	"ecobazaarx/internal/models"
)

type CartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items   []models.CartLine  `json:"items"`
	Summary carbon.CartSummary `json:"summary"`
}

func (h *Handler) cartResponse() CartResponse {
	return CartResponse{Items: h.state.Cart(), Summary: h.state.CartSummary()}
}

// GET /v1/cart
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartResponse())
}

// POST /v1/cart/items
func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, found := h.state.Product(req.ProductID)
	if !found || product.Status != models.StatusApproved {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return
	}

	if _, err := h.state.AddToCartByID(req.ProductID, req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.cartResponse())
}

// PATCH /v1/cart/items/:productId
func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := parseID(c, "productId")
	if !ok {
		return
	}
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	h.state.UpdateCartQuantity(id, req.Quantity)
	c.JSON(http.StatusOK, h.cartResponse())
}

// DELETE /v1/cart/items/:productId
func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := parseID(c, "productId")
	if !ok {
		return
	}
	h.state.RemoveFromCart(id)
	c.JSON(http.StatusOK, h.cartResponse())
}

// DELETE /v1/cart
func (h *Handler) ClearCart(c *gin.Context) {
	h.state.ClearCart()
	c.JSON(http.StatusOK, h.cartResponse())
}
