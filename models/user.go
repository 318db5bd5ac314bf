package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the application user record. Handle is the human-chosen unique
// username and never changes after signup; UserID links the record to the
// auth identity carried in the token subject.
type User struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	Handle    string             `json:"handle" bson:"handle"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Bio       string             `json:"bio,omitempty" bson:"bio,omitempty"`
	Website   string             `json:"website,omitempty" bson:"website,omitempty"`
	Location  string             `json:"location,omitempty" bson:"location,omitempty"`
	ImageURL  string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	FCMToken  string             `json:"-" bson:"fcmToken,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Identity is the authenticated caller attached to the request context by
// the auth middleware.
type Identity struct {
	UID      string `json:"uid"`
	Handle   string `json:"handle"`
	ImageURL string `json:"imageUrl"`
}

// UserDetails holds the optional profile fields. Updating details is a
// whole-document replace of all three fields, never a partial patch.
type UserDetails struct {
	Bio      string `json:"bio" bson:"bio"`
	Website  string `json:"website" bson:"website"`
	Location string `json:"location" bson:"location"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
