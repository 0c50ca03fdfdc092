// Package handlers expone el marketplace por HTTP con gin.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/cache"
	"ecobazaarx/internal/market"
	"ecobazaarx/internal/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// ErrForbidden se devuelve cuando el rol en sesión no alcanza
var ErrForbidden = errors.New("forbidden")

// Handler agrupa las dependencias de todos los endpoints
type Handler struct {
	state  *market.State
	cache  *cache.Cache
	logger *slog.Logger
}

// New crea el handler; cache puede ser nil
func New(state *market.State, c *cache.Cache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{state: state, cache: c, logger: logger}
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// statusFor traduce los errores del dominio a códigos HTTP
func statusFor(err error) int {
	switch {
	case market.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrInvalidCredentials), errors.Is(err, market.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, market.ErrUserBlocked), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case market.IsNotFound(err):
		return http.StatusNotFound
	case market.IsConflict(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(status, ErrorResponse{Error: "internal error"})
		return
	}

	resp := ErrorResponse{Error: err.Error()}
	var ve *market.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	if errors.Is(err, market.ErrProductNotFound) {
		resp.Error = market.ErrProductNotFound.Error()
	} else if errors.Is(err, market.ErrUserNotFound) {
		resp.Error = market.ErrUserNotFound.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// parseID lee un id numérico de la ruta
func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param})
		return 0, false
	}
	return id, true
}

// getPaginationParams obtiene y valida los parámetros de paginación
func getPaginationParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// invalidate descarta catálogo y reportes después de una mutación
func (h *Handler) invalidate() {
	if h.cache == nil {
		return
	}
	h.cache.DeleteByPrefix(cache.CatalogPrefix)
	h.cache.DeleteByPrefix(cache.ReportsPrefix)
}

// RequireRole exige sesión iniciada y, si se indican, uno de los roles
func (h *Handler) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := h.state.CurrentUser()
		if !ok {
			h.respondError(c, market.ErrNotAuthenticated)
			return
		}
		if len(roles) > 0 && !hasRole(user, roles) {
			h.respondError(c, ErrForbidden)
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

func hasRole(u models.User, roles []models.Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// sessionUser devuelve el usuario puesto por RequireRole
func sessionUser(c *gin.Context) models.User {
	if v, ok := c.Get("user"); ok {
		if u, ok := v.(models.User); ok {
			return u
		}
	}
	return models.User{}
}
