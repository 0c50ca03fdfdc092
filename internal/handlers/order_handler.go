package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/carbon"
	"ecobazaarx/internal/events"
	"ecobazaarx/internal/models"
)

type BuyNowRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
}

type CheckoutResponse struct {
	CheckoutID  string         `json:"checkout_id"`
	Orders      []models.Order `json:"orders"`
	Total       float64        `json:"total"`
	Footprint   float64        `json:"footprint"`
	DrivingEqKm float64        `json:"driving_equivalent_km"`
}

func newCheckoutResponse(orders []models.Order) CheckoutResponse {
	ev := events.NewOrderPlaced(orders)
	footprint := carbon.Round(ev.Footprint, 2)
	return CheckoutResponse{
		CheckoutID:  ev.CheckoutID,
		Orders:      orders,
		Total:       carbon.Round(ev.Total, 2),
		Footprint:   footprint,
		DrivingEqKm: carbon.DrivingEquivalentKm(footprint),
	}
}

// POST /v1/checkout
func (h *Handler) Checkout(c *gin.Context) {
	orders, err := h.state.Checkout(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusCreated, newCheckoutResponse(orders))
}

// POST /v1/orders
func (h *Handler) BuyNow(c *gin.Context) {
	var req BuyNowRequest
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

	order, err := h.state.AddOrder(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusCreated, newCheckoutResponse([]models.Order{order}))
}

// GET /v1/orders
// Los administradores ven todo; los vendedores, las ventas de sus productos.
func (h *Handler) ListOrders(c *gin.Context) {
	user := sessionUser(c)
	var orders []models.Order
	if user.Role == models.RoleAdmin {
		orders = h.state.Orders()
	} else {
		orders = h.state.OrdersForSeller(user.ID)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// GET /v1/orders/mine
func (h *Handler) MyOrders(c *gin.Context) {
	orders := h.state.OrdersForBuyer(sessionUser(c).Email)
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}
