package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialape/backend/config"
	"github.com/socialape/backend/models"
)

// NotificationText builds the push title and body for a notification.
func NotificationText(n models.Notification) (string, string) {
	switch n.Type {
	case models.NotificationTypeComment:
		return "New comment", fmt.Sprintf("%s commented on your post", n.Sender)
	default:
		return "New like", fmt.Sprintf("%s liked your post", n.Sender)
	}
}

// SendFCMNotification sends a Firebase Cloud Messaging push for a stored
// notification to its recipient, if the recipient registered a device token.
func SendFCMNotification(db *mongo.Client, n models.Notification) error {
	collection := config.GetCollection(db, "users")
	var user models.User
	err := collection.FindOne(context.Background(), bson.M{"handle": n.Recipient}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.FCMToken == "" {
		return nil
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		log.Printf("Error getting messaging client: %v", err)
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	title, body := NotificationText(n)
	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":           n.Type,
			"notificationId": n.ID.Hex(),
			"postId":         n.PostID.Hex(),
			"sender":         n.Sender,
			"timestamp":      time.Now().Format(time.RFC3339),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "socialape_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
					Badge: func() *int { v := 1; return &v }(),
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		log.Printf("Error sending FCM notification: %v", err)
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM notification sent to %s: %s", n.Recipient, response)
	return nil
}
