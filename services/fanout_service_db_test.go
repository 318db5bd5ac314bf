package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/socialape/backend/models"
)

// The like/comment counters belong to the request handlers alone; the worker
// must not issue any counter write of its own. These tests record the
// commands each event handler sends against a mock deployment.

func commandNames(mt *mtest.T) []string {
	names := []string{}
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestOnLikeInsertWritesNotificationOnly(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("post lookup then notification upsert", func(mt *mtest.T) {
		postID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "socialape.posts", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: postID},
				{Key: "body", Value: "hello"},
				{Key: "userHandle", Value: "author"},
			}),
			mtest.CreateSuccessResponse(),
		)

		s := NewFanoutService(mt.Client, nil)
		s.onLikeInsert(context.Background(), models.Like{
			ID:         primitive.NewObjectID(),
			PostID:     postID,
			UserHandle: "liker",
		})

		assert.Equal(mt.T, []string{"find", "update"}, commandNames(mt))
	})
}

func TestOnLikeInsertSelfLikeSkipsNotification(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("own like produces no notification write", func(mt *mtest.T) {
		postID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "socialape.posts", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: postID},
			{Key: "body", Value: "hello"},
			{Key: "userHandle", Value: "author"},
		}))

		s := NewFanoutService(mt.Client, nil)
		s.onLikeInsert(context.Background(), models.Like{
			ID:         primitive.NewObjectID(),
			PostID:     postID,
			UserHandle: "author",
		})

		assert.Equal(mt.T, []string{"find"}, commandNames(mt))
	})
}

func TestOnLikeDeleteRemovesNotificationOnly(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("single notification delete, no counter write", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s := NewFanoutService(mt.Client, nil)
		s.onLikeDelete(context.Background(), primitive.NewObjectID())

		assert.Equal(mt.T, []string{"delete"}, commandNames(mt))
	})
}

func TestOnUserImageChangeRefreshesPostsAndComments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("one update per denormalized collection", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		s := NewFanoutService(mt.Client, nil)
		s.onUserImageChange(context.Background(), models.User{
			Handle:   "testape",
			ImageURL: "/uploads/profiles/new.jpg",
		})

		require.Equal(mt.T, []string{"update", "update"}, commandNames(mt))
	})
}
