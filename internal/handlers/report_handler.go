package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/cache"
	"ecobazaarx/internal/models"
	"ecobazaarx/internal/reports"
)

const reportCacheTTL = time.Minute

// cached sirve la clave desde el caché o la calcula con build
func (h *Handler) cached(c *gin.Context, key string, build func() any) {
	if h.cache != nil {
		if v, found := h.cache.Get(key); found {
			c.JSON(http.StatusOK, v)
			return
		}
	}
	v := build()
	if h.cache != nil {
		h.cache.Set(key, v, reportCacheTTL)
	}
	c.JSON(http.StatusOK, v)
}

// GET /v1/reports/carbon
func (h *Handler) CarbonReport(c *gin.Context) {
	h.cached(c, cache.Key(cache.ReportsPrefix, "carbon"), func() any {
		return reports.BuildCarbonReport(h.state.Orders(), time.Now())
	})
}

// GET /v1/reports/carbon.csv
func (h *Handler) CarbonReportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := reports.WriteCarbonCSV(&buf, h.state.Orders()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="carbon_report.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GET /v1/reports/moderation
func (h *Handler) ModerationReport(c *gin.Context) {
	h.cached(c, cache.Key(cache.ReportsPrefix, "moderation"), func() any {
		return reports.BuildModerationInsights(h.state.Products(models.ProductFilter{}), time.Now())
	})
}

// GET /v1/reports/seller/:id
// Un vendedor sólo puede ver su propio tablero.
func (h *Handler) SellerReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user := sessionUser(c)
	if user.Role != models.RoleAdmin && user.ID != id {
		h.respondError(c, ErrForbidden)
		return
	}

	h.cached(c, cache.Key(cache.ReportsPrefix, "seller", id), func() any {
		return reports.BuildSellerDashboard(h.state.OrdersForSeller(id), h.state.Products(models.ProductFilter{SellerID: id}), id)
	})
}
