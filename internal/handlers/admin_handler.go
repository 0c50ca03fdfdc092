package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/carbon"
	"ecobazaarx/internal/models"
)

type RejectRequest struct {
	Reason string `json:"reason"`
}

type VerifyFootprintRequest struct {
	CarbonFootprint *float64 `json:"carbon_footprint" binding:"required"`
}

type FootprintSuggestion struct {
	ProductID       int64   `json:"product_id"`
	Category        string  `json:"category"`
	Weight          float64 `json:"weight"`
	Current         float64 `json:"current"`
	Suggested       float64 `json:"suggested"`
	DrivingEqKm     float64 `json:"driving_equivalent_km"`
	CurrentVerified bool    `json:"current_verified"`
}

// POST /v1/admin/products/:id/approve
func (h *Handler) ApproveProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.state.ApproveProduct(c.Request.Context(), id, sessionUser(c).Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusOK, product)
}

// POST /v1/admin/products/:id/reject
func (h *Handler) RejectProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	// El motivo es opcional; un body vacío es válido
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err.Error())
			return
		}
	}

	product, err := h.state.RejectProduct(c.Request.Context(), id, sessionUser(c).Name, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusOK, product)
}

// POST /v1/admin/products/:id/verify-footprint
func (h *Handler) VerifyFootprint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req VerifyFootprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	product, err := h.state.VerifyFootprint(c.Request.Context(), id, sessionUser(c).Name, *req.CarbonFootprint)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusOK, product)
}

// GET /v1/admin/products/:id/footprint-suggestion
func (h *Handler) SuggestFootprint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, found := h.state.Product(id)
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return
	}

	suggested := carbon.SuggestFootprint(product.Category, product.Weight)
	c.JSON(http.StatusOK, FootprintSuggestion{
		ProductID:       product.ID,
		Category:        product.Category,
		Weight:          product.Weight,
		Current:         product.CarbonFootprint,
		Suggested:       suggested,
		DrivingEqKm:     carbon.DrivingEquivalentKm(suggested),
		CurrentVerified: product.FootprintVerified,
	})
}

// GET /v1/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Users())
}

// PATCH /v1/admin/users/:id
// Sin body alterna activo/bloqueado, como el botón del panel.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var update models.UserUpdate
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&update); err != nil {
			h.badRequest(c, err.Error())
			return
		}
	}

	var (
		user models.User
		err  error
	)
	if update.Role == nil && update.Status == nil {
		user, err = h.state.ToggleUserStatus(c.Request.Context(), id)
	} else {
		user, err = h.state.ApplyUserUpdate(c.Request.Context(), id, update)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusOK, user)
}
