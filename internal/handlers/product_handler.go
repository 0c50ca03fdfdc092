package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/cache"
	"ecobazaarx/internal/models"
)

const (
	productCacheTTL = 5 * time.Minute
	listCacheTTL    = 2 * time.Minute

	relatedProductsLimit = 4
)

// ProductDetail agrega los relacionados de la misma categoría
type ProductDetail struct {
	models.Product
	Related []models.Product `json:"related"`
}

type ProductListResponse struct {
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	Products   []models.Product `json:"products"`
}

// GET /v1/products
// El catálogo público sólo muestra productos aprobados.
func (h *Handler) ListProducts(c *gin.Context) {
	filter := buildFilter(c)
	filter.Status = models.StatusApproved
	h.listProducts(c, filter)
}

// GET /v1/admin/products
func (h *Handler) ListAllProducts(c *gin.Context) {
	filter := buildFilter(c)
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseProductStatus(raw)
		if !ok {
			h.badRequest(c, "invalid status")
			return
		}
		filter.Status = status
	}
	h.listProducts(c, filter)
}

// GET /v1/seller/products
func (h *Handler) ListSellerProducts(c *gin.Context) {
	filter := buildFilter(c)
	filter.SellerID = sessionUser(c).ID
	h.listProducts(c, filter)
}

func (h *Handler) listProducts(c *gin.Context, filter models.ProductFilter) {
	page, pageSize := getPaginationParams(c)
	cacheKey := cache.Key(cache.CatalogPrefix, "list", filter.Status, filter.Category, filter.SellerID,
		filter.Query, filter.SortBy, filter.SortOrder, page, pageSize)

	if h.cache != nil {
		if cached, found := h.cache.Get(cacheKey); found {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	products := h.state.Products(filter)
	response := ProductListResponse{
		Page:       page,
		PageSize:   pageSize,
		Total:      len(products),
		TotalPages: totalPages(len(products), pageSize),
		Products:   paginate(products, page, pageSize),
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, response, listCacheTTL)
	}
	c.JSON(http.StatusOK, response)
}

// GET /v1/products/:id
// Un producto no aprobado sólo lo ven su vendedor y los administradores.
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cacheKey := cache.Key(cache.CatalogPrefix, "product", id)

	var product models.Product
	found := false
	if h.cache != nil {
		if cached, hit := h.cache.Get(cacheKey); hit {
			product, found = cached.(models.Product)
		}
	}
	if !found {
		product, found = h.state.Product(id)
		if !found {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
			return
		}
		if h.cache != nil {
			h.cache.Set(cacheKey, product, productCacheTTL)
		}
	}

	if product.Status != models.StatusApproved && !h.canManage(product) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return
	}

	related, err := h.state.RelatedProducts(id, relatedProductsLimit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProductDetail{Product: product, Related: related})
}

// POST /v1/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var draft models.ProductDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	// Un vendedor siempre publica a su nombre
	user := sessionUser(c)
	if user.Role == models.RoleSeller {
		draft.SellerID = user.ID
		draft.SellerName = user.Name
	}

	product, err := h.state.AddProduct(c.Request.Context(), draft)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidate()
	c.JSON(http.StatusCreated, product)
}

// PATCH /v1/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	if update.Empty() {
		h.badRequest(c, "no valid fields to update")
		return
	}

	if !h.ownsProduct(c, id) {
		return
	}

	product, err := h.state.ApplyProductUpdate(c.Request.Context(), id, update)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidate()
	c.JSON(http.StatusOK, product)
}

// DELETE /v1/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !h.ownsProduct(c, id) {
		return
	}

	if err := h.state.RemoveProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidate()
	c.JSON(http.StatusOK, SuccessResponse{Message: "product deleted"})
}

// ownsProduct responde 404/403 si el usuario no puede modificar el producto
func (h *Handler) ownsProduct(c *gin.Context, id int64) bool {
	product, found := h.state.Product(id)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "product not found"})
		return false
	}
	user := sessionUser(c)
	if user.Role != models.RoleAdmin && product.SellerID != user.ID {
		h.respondError(c, ErrForbidden)
		return false
	}
	return true
}

func (h *Handler) canManage(p models.Product) bool {
	user, ok := h.state.CurrentUser()
	if !ok {
		return false
	}
	return user.Role == models.RoleAdmin || (user.Role == models.RoleSeller && user.ID == p.SellerID)
}

// buildFilter arma el filtro a partir de los query params
func buildFilter(c *gin.Context) models.ProductFilter {
	filter := models.ProductFilter{
		Category:  c.Query("category"),
		Query:     c.Query("q"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if seller, err := strconv.ParseInt(c.Query("seller_id"), 10, 64); err == nil && seller > 0 {
		filter.SellerID = seller
	}
	return filter
}
