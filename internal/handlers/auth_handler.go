package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var candidate models.UserCandidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	// El rol admin sólo se asigna desde el panel de administración
	if candidate.Role == models.RoleAdmin {
		h.respondError(c, ErrForbidden)
		return
	}

	user, err := h.state.RegisterUser(c.Request.Context(), candidate)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// POST /v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	user, err := h.state.LoginUser(req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// POST /v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.state.LogoutUser()
	c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

// GET /v1/auth/me
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, sessionUser(c))
}
