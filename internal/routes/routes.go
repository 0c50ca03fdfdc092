package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobazaarx/internal/handlers"
	"ecobazaarx/internal/models"
)

func RegisterRoutes(router *gin.Engine, h *handlers.Handler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authenticated := h.RequireRole()
	sellers := h.RequireRole(models.RoleSeller, models.RoleAdmin)
	admins := h.RequireRole(models.RoleAdmin)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", authenticated, h.Me)

		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.POST("/products", sellers, h.CreateProduct)
		v1.PATCH("/products/:id", sellers, h.UpdateProduct)
		v1.DELETE("/products/:id", sellers, h.DeleteProduct)
		v1.GET("/seller/products", sellers, h.ListSellerProducts)

		v1.GET("/cart", h.GetCart)
		v1.POST("/cart/items", h.AddCartItem)
		v1.PATCH("/cart/items/:productId", h.UpdateCartItem)
		v1.DELETE("/cart/items/:productId", h.RemoveCartItem)
		v1.DELETE("/cart", h.ClearCart)

		v1.POST("/checkout", h.Checkout)
		v1.POST("/orders", h.BuyNow)
		v1.GET("/orders", sellers, h.ListOrders)
		v1.GET("/orders/mine", authenticated, h.MyOrders)

		admin := v1.Group("/admin", admins)
		admin.GET("/products", h.ListAllProducts)
		admin.POST("/products/:id/approve", h.ApproveProduct)
		admin.POST("/products/:id/reject", h.RejectProduct)
		admin.POST("/products/:id/verify-footprint", h.VerifyFootprint)
		admin.GET("/products/:id/footprint-suggestion", h.SuggestFootprint)
		admin.GET("/users", h.ListUsers)
		admin.PATCH("/users/:id", h.UpdateUser)

		v1.GET("/reports/carbon", admins, h.CarbonReport)
		v1.GET("/reports/carbon.csv", admins, h.CarbonReportCSV)
		v1.GET("/reports/moderation", admins, h.ModerationReport)
		v1.GET("/reports/seller/:id", sellers, h.SellerReport)
	}
}
