package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post model. UserImage is a denormalized copy of the author's current
// profile image, refreshed by the fan-out worker when the author changes it.
type Post struct {
	ID           primitive.ObjectID `json:"postId" bson:"_id,omitempty"`
	Body         string             `json:"body" bson:"body"`
	UserHandle   string             `json:"userHandle" bson:"userHandle"`
	UserImage    string             `json:"userImage,omitempty" bson:"userImage,omitempty"`
	LikeCount    int64              `json:"likeCount" bson:"likeCount"`
	CommentCount int64              `json:"commentCount" bson:"commentCount"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// PostSummary is the projection returned by the feed listing. Counters and
// the author image are intentionally left out of the list view.
type PostSummary struct {
	PostID     primitive.ObjectID `json:"postId" bson:"_id"`
	Body       string             `json:"body" bson:"body"`
	UserHandle string             `json:"userHandle" bson:"userHandle"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// PostWithComments is the single-post view.
type PostWithComments struct {
	Post
	Comments []Comment `json:"comments"`
}

// Comment references its post by id only; there is no enforced foreign key.
type Comment struct {
	ID         primitive.ObjectID `json:"commentId" bson:"_id,omitempty"`
	PostID     primitive.ObjectID `json:"postId" bson:"postId"`
	Body       string             `json:"body" bson:"body"`
	UserHandle string             `json:"userHandle" bson:"userHandle"`
	UserImage  string             `json:"userImage,omitempty" bson:"userImage,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// Like is unique per (postId, userHandle), enforced by an index.
type Like struct {
	ID         primitive.ObjectID `json:"likeId" bson:"_id,omitempty"`
	PostID     primitive.ObjectID `json:"postId" bson:"postId"`
	UserHandle string             `json:"userHandle" bson:"userHandle"`
}
