package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialape/backend/controllers"
	"github.com/socialape/backend/middleware"
	"github.com/socialape/backend/repositories"
	"github.com/socialape/backend/websocket"
)

// RegisterUserRoutes sets up the user profile and notification endpoints
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	userRepo := repositories.NewUserRepository(db)
	userController := controllers.NewUserController(db, userRepo)
	notificationController := controllers.NewNotificationController(db)
	wsHandler := websocket.NewHandler(hub, db)
	authenticated := []echo.MiddlewareFunc{middleware.JWTMiddleware(), middleware.LoadIdentity(userRepo)}

	e.GET("/user/:handle", userController.GetUserDetails)
	e.GET("/user/:handle/qrcode", userController.GetProfileQRCode)

	e.GET("/user", userController.GetAuthenticatedUser, authenticated...)
	e.POST("/user", userController.AddUserDetails, authenticated...)
	e.POST("/user/image", userController.UploadImage, authenticated...)
	e.POST("/user/fcm-token", userController.UpdateFCMToken, authenticated...)

	e.GET("/notifications", notificationController.GetNotifications, authenticated...)
	e.POST("/notifications", notificationController.MarkNotificationsRead, authenticated...)
	e.GET("/notifications/stream", wsHandler.HandleConnection)
}
