package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
)

// Notification is a derived document maintained by the fan-out worker. Its
// id equals the id of the like or comment that triggered it, so redelivered
// events upsert the same document and deleting the source finds it directly.
type Notification struct {
	ID        primitive.ObjectID `json:"notificationId" bson:"_id"`
	Recipient string             `json:"recipient" bson:"recipient"`
	Sender    string             `json:"sender" bson:"sender"`
	Type      string             `json:"type" bson:"type"`
	PostID    primitive.ObjectID `json:"postId" bson:"postId"`
	Read      bool               `json:"read" bson:"read"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
