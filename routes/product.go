package routes

import (
	"github.com/gin-gonic/gin"

	"tienda-api/controller"
	"tienda-api/middleware"
)

// ProductRoute registers the public catalog and the admin product CRUD.
func ProductRoute(router *gin.Engine) {
	public := router.Group("/products")
	{
		public.GET("/", controller.GetProducts)
		// :id also accepts the slug.
		public.GET("/:id", controller.GetProduct)
	}
	router.GET("/categorias", controller.GetCategorias)

	admin := router.Group("/products")
	admin.Use(middleware.RequireAuth)
	{
		admin.POST("/", controller.CreateProduct)
		admin.PUT("/:id", controller.UpdateProduct)
		admin.DELETE("/:id", controller.DeleteProduct)
	}
}
