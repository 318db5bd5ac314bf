package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/socialape/backend/config"
	"github.com/socialape/backend/middleware"
	"github.com/socialape/backend/routes"
	"github.com/socialape/backend/services"
	"github.com/socialape/backend/utils"
	"github.com/socialape/backend/websocket"
)

// CustomValidator wraps the validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the provided struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitFirebase()
	config.ConnectRedis()
	defer config.CloseRedis()

	db := config.ConnectDB()
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from database: %v", err)
		}
	}()

	if err := os.MkdirAll(filepath.Join(utils.UploadBaseDir, "profiles"), 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	fanout := services.NewFanoutService(db, hub)
	go fanout.Run(context.Background())

	go middleware.CleanupBlacklist()

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter()
	e.Use(rateLimiter.RateLimit())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	e.Static("/uploads", utils.UploadBaseDir)

	routes.RegisterAuthRoutes(e, db)
	routes.RegisterPostRoutes(e, db)
	routes.RegisterUserRoutes(e, db, hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
