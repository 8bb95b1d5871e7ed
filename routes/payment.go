package routes

import (
	"github.com/gin-gonic/gin"

	"tienda-api/controller"
)

// PaymentRoute registers the PayPal endpoints used by the storefront during
// checkout.
func PaymentRoute(router *gin.Engine) {
	pagos := router.Group("/pagos/paypal")
	{
		pagos.POST("/orden", controller.CreatePayPalOrder)
		pagos.POST("/captura", controller.CapturePayPalOrder)
	}
}
