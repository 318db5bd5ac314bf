// controllers/auth_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialape/backend/config"
	"github.com/socialape/backend/middleware"
	"github.com/socialape/backend/models"
	"github.com/socialape/backend/utils"
)

// AuthController contains signup/login/logout logic
type AuthController struct {
	DB *mongo.Client
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{DB: db}
}

// Signup registers a new user and returns a token. Handle and email
// uniqueness are guaranteed by unique indexes; the friendly pre-check only
// improves the common-case error message.
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"general": "Invalid request body"})
	}

	if errors, valid := utils.ValidateSignupData(req); !valid {
		return c.JSON(http.StatusBadRequest, errors)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	usersCollection := config.GetCollection(ac.DB, "users")

	count, err := usersCollection.CountDocuments(ctx, bson.M{"handle": req.Handle})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"handle": "This username is already taken."})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	newUser := models.User{
		ID:        primitive.NewObjectID(),
		UserID:    uuid.New().String(),
		Handle:    req.Handle,
		Email:     req.Email,
		Password:  string(hashedPassword),
		CreatedAt: time.Now(),
	}

	if _, err := usersCollection.InsertOne(ctx, newUser); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Two unique indexes can fire here; tell the caller which field
			// collided.
			if strings.Contains(err.Error(), "handle") {
				return c.JSON(http.StatusBadRequest, map[string]string{"handle": "This username is already taken."})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"email": "Email is already in use"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	token, err := middleware.GenerateJWT(newUser.UserID, newUser.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	go func() {
		if err := utils.SendWelcomeEmail(newUser.Email, newUser.Handle); err != nil {
			log.Printf("Welcome email for %s failed: %v", newUser.Handle, err)
		}
	}()

	return c.JSON(http.StatusCreated, map[string]string{"token": token})
}

// Login verifies credentials and returns a token
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"general": "Invalid request body"})
	}

	if errors, valid := utils.ValidateLoginData(req); !valid {
		return c.JSON(http.StatusBadRequest, errors)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	usersCollection := config.GetCollection(ac.DB, "users")

	var user models.User
	err := usersCollection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusForbidden, map[string]string{"general": "Wrong credentials, please try again"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"general": "Wrong credentials, please try again"})
	}

	token, err := middleware.GenerateJWT(user.UserID, user.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// Logout invalidates the presented token until its natural expiry
func (ac *AuthController) Logout(c echo.Context) error {
	token, err := middleware.ExtractBearerToken(c)
	if err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	middleware.BlacklistToken(token, time.Now().Add(72*time.Hour))

	if userID, err := middleware.ExtractUserID(c); err == nil {
		middleware.InvalidateIdentity(c.Request().Context(), userID)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}
