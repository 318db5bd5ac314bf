package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialape/backend/controllers"
	"github.com/socialape/backend/middleware"
	"github.com/socialape/backend/repositories"
)

// RegisterPostRoutes sets up the post, comment and like endpoints
func RegisterPostRoutes(e *echo.Echo, db *mongo.Client) {
	postController := controllers.NewPostController(db)
	userRepo := repositories.NewUserRepository(db)
	authenticated := []echo.MiddlewareFunc{middleware.JWTMiddleware(), middleware.LoadIdentity(userRepo)}

	e.GET("/posts", postController.GetAllPosts)
	e.GET("/post/:postId", postController.GetPost)

	e.POST("/post", postController.CreatePost, authenticated...)
	e.POST("/post/:postId/comment", postController.CommentOnPost, authenticated...)
	e.GET("/post/:postId/like", postController.LikePost, authenticated...)
	e.GET("/post/:postId/unlike", postController.UnlikePost, authenticated...)
	e.DELETE("/post/:postId", postController.DeletePost, authenticated...)
}
