package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"tienda-api/config"
	"tienda-api/controller"
	"tienda-api/middleware"
	"tienda-api/notify"
	"tienda-api/orders"
	"tienda-api/payment"
	"tienda-api/routes"
	"tienda-api/store"
	"tienda-api/utils"
)

func main() {
	config.Connection()
	config.InitRedis()

	msgSender, mailSender := notify.SendersFromEnv()
	utils.Mailer = mailSender
	dispatcher := notify.NewDispatcher(msgSender, mailSender)

	var events orders.EventPublisher
	if config.RedisClient != nil {
		events = notify.NewRedisPublisher(config.RedisClient, "order_events")
	}

	controller.Orders = orders.NewService(store.NewGorm(config.DB), dispatcher, events, controller.NewProductCache())
	if pp := payment.NewPayPalFromEnv(); pp != nil {
		controller.Pagos = pp
	}

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	routes.UserRoute(router)
	routes.ProductRoute(router)
	routes.OrderRoute(router)
	routes.PaymentRoute(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	router.Run(":" + port)
}
