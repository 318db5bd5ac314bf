// controllers/user_controller.go
package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialape/backend/config"
	"github.com/socialape/backend/middleware"
	"github.com/socialape/backend/models"
	"github.com/socialape/backend/repositories"
	"github.com/socialape/backend/utils"
)

type UserController struct {
	db       *mongo.Client
	userRepo *repositories.UserRepository
}

func NewUserController(db *mongo.Client, userRepo *repositories.UserRepository) *UserController {
	return &UserController{db: db, userRepo: userRepo}
}

// AddUserDetails replaces the caller's bio/website/location. Fields left
// empty in the request clear the stored values.
func (uc *UserController) AddUserDetails(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	var req models.UserDetailsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	details := utils.ReduceUserDetails(req)
	if err := uc.userRepo.UpdateDetails(ctx, identity.UID, details); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Details added successfully"})
}

// GetAuthenticatedUser returns the caller's credentials, likes, and most
// recent notifications.
func (uc *UserController) GetAuthenticatedUser(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := uc.userRepo.FindByUserID(ctx, identity.UID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	likesCollection := config.GetCollection(uc.db, "likes")
	likesCursor, err := likesCollection.Find(ctx, bson.M{"userHandle": user.Handle})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer likesCursor.Close(ctx)

	likes := []models.Like{}
	if err := likesCursor.All(ctx, &likes); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	notificationsCollection := config.GetCollection(uc.db, "notifications")
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(10)
	notifCursor, err := notificationsCollection.Find(ctx, bson.M{"recipient": user.Handle}, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer notifCursor.Close(ctx)

	notifications := []models.Notification{}
	if err := notifCursor.All(ctx, &notifications); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"credentials":   user,
		"likes":         likes,
		"notifications": notifications,
	})
}

// GetUserDetails returns a public profile with its posts
func (uc *UserController) GetUserDetails(c echo.Context) error {
	handle := c.Param("handle")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	user, err := uc.userRepo.FindByHandle(ctx, handle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	postsCollection := config.GetCollection(uc.db, "posts")
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := postsCollection.Find(ctx, bson.M{"userHandle": handle}, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":  user,
		"posts": posts,
	})
}

// UploadImage stores a new profile image for the caller. Only jpeg and png
// are accepted; larger images are downscaled before saving. The userImage
// copies on the caller's posts are refreshed by the fan-out worker.
func (uc *UserController) UploadImage(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Image is required"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if err := utils.ValidateImageType(file.Filename); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Wrong file type submitted"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read uploaded file"})
	}
	defer src.Close()

	fileData, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read file data"})
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	imageURL, err := utils.SaveProfileImage(fileData, filepath.Join(utils.UploadBaseDir, "profiles"), filename)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := uc.userRepo.UpdateProfileImage(ctx, identity.UID, imageURL); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	middleware.InvalidateIdentity(c.Request().Context(), identity.UID)

	return c.JSON(http.StatusOK, map[string]string{"message": "Image uploaded successfully"})
}

// UpdateFCMToken registers the caller's device token for push delivery
func (uc *UserController) UpdateFCMToken(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	var req models.FCMTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "FCM token is required",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := uc.userRepo.UpdateFCMToken(ctx, identity.UID, req.FCMToken); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update FCM token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "FCM token updated successfully",
	})
}

// GetProfileQRCode returns a QR code image linking to a public profile
func (uc *UserController) GetProfileQRCode(c echo.Context) error {
	handle := c.Param("handle")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := uc.userRepo.FindByHandle(ctx, handle); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "https://socialape.app"
	}

	qrCode, err := utils.GenerateProfileQRCode(fmt.Sprintf("%s/user/%s", appURL, handle))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QR code generated successfully",
		Data:    map[string]string{"qrCode": qrCode},
	})
}
