// controllers/post_controller.go
package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
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

type PostController struct {
	db *mongo.Client
}

func NewPostController(db *mongo.Client) *PostController {
	return &PostController{db: db}
}

// GetAllPosts returns every post, newest first, in the summary projection.
func (pc *PostController) GetAllPosts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	postsCollection := config.GetCollection(pc.db, "posts")

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"body": 1, "userHandle": 1, "createdAt": 1})

	cursor, err := postsCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer cursor.Close(ctx)

	posts := []models.PostSummary{}
	if err := cursor.All(ctx, &posts); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, posts)
}

// CreatePost stores a new post for the authenticated user
func (pc *PostController) CreatePost(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	var req models.PostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"body": "Invalid request body"})
	}

	if strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"body": "Body must not be empty"})
	}

	newPost := models.Post{
		ID:           primitive.NewObjectID(),
		Body:         req.Body,
		UserHandle:   identity.Handle,
		UserImage:    identity.ImageURL,
		LikeCount:    0,
		CommentCount: 0,
		CreatedAt:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	postsCollection := config.GetCollection(pc.db, "posts")
	if _, err := postsCollection.InsertOne(ctx, newPost); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "something went wrong"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Document %s created successfully", newPost.ID.Hex()),
	})
}

// GetPost returns one post with its comments, newest comment first
func (pc *PostController) GetPost(c echo.Context) error {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	postsCollection := config.GetCollection(pc.db, "posts")

	var post models.Post
	if err := postsCollection.FindOne(ctx, bson.M{"_id": postID}).Decode(&post); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	commentsCollection := config.GetCollection(pc.db, "comments")
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := commentsCollection.Find(ctx, bson.M{"postId": postID}, findOptions)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, models.PostWithComments{Post: post, Comments: comments})
}

// CommentOnPost increments the post's comment counter atomically and stores
// the comment. The counter update doubles as the existence check.
func (pc *PostController) CommentOnPost(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	var req models.PostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Must not be empty"})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	postsCollection := config.GetCollection(pc.db, "posts")
	err = postsCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"commentCount": 1}},
	).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
	}

	newComment := models.Comment{
		ID:         primitive.NewObjectID(),
		PostID:     postID,
		Body:       req.Body,
		UserHandle: identity.Handle,
		UserImage:  identity.ImageURL,
		CreatedAt:  time.Now(),
	}

	commentsCollection := config.GetCollection(pc.db, "comments")
	if _, err := commentsCollection.InsertOne(ctx, newComment); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
	}

	return c.JSON(http.StatusOK, newComment)
}

// LikePost inserts a like and bumps the counter. The unique index on
// (postId, userHandle) makes the insert the duplicate check, so concurrent
// likes cannot slip past it.
func (pc *PostController) LikePost(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	newLike := models.Like{
		ID:         primitive.NewObjectID(),
		PostID:     postID,
		UserHandle: identity.Handle,
	}

	likesCollection := config.GetCollection(pc.db, "likes")
	if _, err := likesCollection.InsertOne(ctx, newLike); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Post already liked"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	postsCollection := config.GetCollection(pc.db, "posts")
	var post models.Post
	err = postsCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$inc": bson.M{"likeCount": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// The post vanished between the like insert and the counter
			// update; undo the like so no orphan remains.
			likesCollection.DeleteOne(ctx, bson.M{"_id": newLike.ID})
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, post)
}

// UnlikePost removes the caller's like and decrements the counter, never
// below zero.
func (pc *PostController) UnlikePost(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	likesCollection := config.GetCollection(pc.db, "likes")
	err = likesCollection.FindOneAndDelete(ctx,
		bson.M{"postId": postID, "userHandle": identity.Handle},
	).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Post not liked"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	// Pipeline update floors the counter at zero in a single atomic write.
	decrement := bson.A{bson.M{
		"$set": bson.M{
			"likeCount": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$likeCount", 1}}}},
		},
	}}

	postsCollection := config.GetCollection(pc.db, "posts")
	var post models.Post
	err = postsCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		decrement,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post owned by the caller. Comments, likes and
// notifications referencing it are cleaned up by the fan-out worker.
func (pc *PostController) DeletePost(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized"})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	postsCollection := config.GetCollection(pc.db, "posts")

	var post models.Post
	if err := postsCollection.FindOne(ctx, bson.M{"_id": postID}).Decode(&post); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Post not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if post.UserHandle != identity.Handle {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "User unauthorized"})
	}

	if _, err := postsCollection.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"success": "Post deleted"})
}
