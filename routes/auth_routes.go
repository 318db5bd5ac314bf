package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialape/backend/controllers"
	"github.com/socialape/backend/middleware"
)

// RegisterAuthRoutes sets up signup, login and logout
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client) {
	authController := controllers.NewAuthController(db)

	e.POST("/signup", authController.Signup)
	e.POST("/login", authController.Login)
	e.POST("/logout", authController.Logout, middleware.JWTMiddleware())
}
