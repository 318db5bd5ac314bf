package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialape/backend/config"
	"github.com/socialape/backend/middleware"
	"github.com/socialape/backend/models"
)

type NotificationController struct {
	db *mongo.Client
}

func NewNotificationController(db *mongo.Client) *NotificationController {
	return &NotificationController{db: db}
}

// MarkNotificationsRead marks the given notification ids as read. Only the
// caller's own notifications match; foreign ids are silently ignored.
func (nc *NotificationController) MarkNotificationsRead(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	var ids []string
	if err := c.Bind(&ids); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objID)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(nc.db, "notifications")
	_, err := collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": objectIDs}, "recipient": identity.Handle},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Notifications marked read"})
}

// GetNotifications lists the caller's notifications, newest first
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(nc.db, "notifications")
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"recipient": identity.Handle}, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, notifications)
}
