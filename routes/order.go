package routes

import (
	"github.com/gin-gonic/gin"

	"tienda-api/controller"
	"tienda-api/middleware"
)

// OrderRoute registers checkout (public), tracking (public) and the admin
// order surface.
func OrderRoute(router *gin.Engine) {
	router.POST("/orders", controller.CreateOrder)
	// Public tracking by codigo, no account needed.
	router.GET("/track/:codigo", controller.GetOrderByCodigo)

	admin := router.Group("/orders")
	admin.Use(middleware.RequireAuth)
	{
		admin.GET("/", controller.GetOrders)
		admin.GET("/:id", controller.GetOrderByID)
		admin.PUT("/:id/estado", controller.UpdateOrderStatus)
		admin.DELETE("/:id", controller.DeleteOrder)
	}
}
