package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/socialape/backend/models"
)

// Database-path behavior over mtest's mock deployment: the duplicate-like
// conflict, the unlike-without-like conflict, missing posts and the owner
// check, none of which are reachable before a database round trip.

func TestLikePostDuplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate like returns conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: socialape.likes index: postId_1_userHandle_1",
		}))

		pc := NewPostController(mt.Client)
		c, rec := newPostContext(mt.T, http.MethodGet, "/post/x/like", "")
		withIdentity(c)
		c.SetParamNames("postId")
		c.SetParamValues(primitive.NewObjectID().Hex())

		require.NoError(mt.T, pc.LikePost(c))

		assert.Equal(mt.T, http.StatusBadRequest, rec.Code)
		assert.Equal(mt.T, "Post already liked", decodeBody(mt.T, rec)["error"])
	})
}

func TestLikePostReturnsUpdatedPost(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("like response carries the incremented counter", func(mt *mtest.T) {
		postID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: postID},
				{Key: "body", Value: "hello"},
				{Key: "userHandle", Value: "author"},
				{Key: "likeCount", Value: int64(5)},
				{Key: "commentCount", Value: int64(2)},
			}}),
		)

		pc := NewPostController(mt.Client)
		c, rec := newPostContext(mt.T, http.MethodGet, "/post/x/like", "")
		withIdentity(c)
		c.SetParamNames("postId")
		c.SetParamValues(postID.Hex())

		require.NoError(mt.T, pc.LikePost(c))
		require.Equal(mt.T, http.StatusOK, rec.Code)

		var post models.Post
		require.NoError(mt.T, json.Unmarshal(rec.Body.Bytes(), &post))
		assert.Equal(mt.T, postID, post.ID)
		assert.Equal(mt.T, int64(5), post.LikeCount)
	})
}

func TestUnlikePostNeverLiked(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unlike without a like returns conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		pc := NewPostController(mt.Client)
		c, rec := newPostContext(mt.T, http.MethodGet, "/post/x/unlike", "")
		withIdentity(c)
		c.SetParamNames("postId")
		c.SetParamValues(primitive.NewObjectID().Hex())

		require.NoError(mt.T, pc.UnlikePost(c))

		assert.Equal(mt.T, http.StatusBadRequest, rec.Code)
		assert.Equal(mt.T, "Post not liked", decodeBody(mt.T, rec)["error"])
	})
}

func TestCommentOnMissingPost(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("comment on a deleted post returns not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		pc := NewPostController(mt.Client)
		c, rec := newPostContext(mt.T, http.MethodPost, "/post/x/comment", `{"body":"nice"}`)
		withIdentity(c)
		c.SetParamNames("postId")
		c.SetParamValues(primitive.NewObjectID().Hex())

		require.NoError(mt.T, pc.CommentOnPost(c))

		assert.Equal(mt.T, http.StatusNotFound, rec.Code)
		assert.Equal(mt.T, "Post not found", decodeBody(mt.T, rec)["error"])
	})
}

func TestDeletePostNotOwner(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleting someone else's post is forbidden", func(mt *mtest.T) {
		postID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "socialape.posts", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: postID},
			{Key: "body", Value: "not yours"},
			{Key: "userHandle", Value: "someoneelse"},
		}))

		pc := NewPostController(mt.Client)
		c, rec := newPostContext(mt.T, http.MethodDelete, "/post/x", "")
		withIdentity(c)
		c.SetParamNames("postId")
		c.SetParamValues(postID.Hex())

		require.NoError(mt.T, pc.DeletePost(c))

		assert.Equal(mt.T, http.StatusForbidden, rec.Code)
		assert.Equal(mt.T, "User unauthorized", decodeBody(mt.T, rec)["error"])
	})
}

func TestDeletePostMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleting a missing post returns not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "socialape.posts", mtest.FirstBatch))

		pc := NewPostController(mt.Client)
		c, rec := newPostContext(mt.T, http.MethodDelete, "/post/x", "")
		withIdentity(c)
		c.SetParamNames("postId")
		c.SetParamValues(primitive.NewObjectID().Hex())

		require.NoError(mt.T, pc.DeletePost(c))

		assert.Equal(mt.T, http.StatusNotFound, rec.Code)
	})
}
