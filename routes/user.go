package routes

import (
	"github.com/gin-gonic/gin"

	"tienda-api/controller"
	"tienda-api/middleware"
)

// UserRoute registers the admin account endpoints. Login and the password
// flows sit behind the rate limiter.
func UserRoute(router *gin.Engine) {
	router.POST("/login", middleware.RateLimiter(), controller.Login)
	router.POST("/register", middleware.RateLimiter(), controller.CreateUser)
	router.POST("/forgot-password", middleware.RateLimiter(), controller.ForgotPassword)
	router.POST("/reset-password", middleware.RateLimiter(), controller.ResetPassword)
}
