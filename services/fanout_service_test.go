package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/socialape/backend/models"
)

func TestShouldNotify(t *testing.T) {
	assert.True(t, shouldNotify("liker", "author"))
	assert.False(t, shouldNotify("author", "author"))
	assert.False(t, shouldNotify("liker", ""))
}

func TestNewNotification(t *testing.T) {
	sourceID := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	n := newNotification(sourceID, "author", "liker", models.NotificationTypeLike, postID)

	assert.Equal(t, sourceID, n.ID)
	assert.Equal(t, "author", n.Recipient)
	assert.Equal(t, "liker", n.Sender)
	assert.Equal(t, models.NotificationTypeLike, n.Type)
	assert.Equal(t, postID, n.PostID)
	assert.False(t, n.Read)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestImageURLChanged(t *testing.T) {
	changed, err := bson.Marshal(bson.M{"imageUrl": "/uploads/profiles/new.jpg"})
	require.NoError(t, err)
	assert.True(t, imageURLChanged(changed))

	other, err := bson.Marshal(bson.M{"bio": "new bio"})
	require.NoError(t, err)
	assert.False(t, imageURLChanged(other))

	assert.False(t, imageURLChanged(nil))
}

func TestChangeEventDecoding(t *testing.T) {
	likeID := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	raw, err := bson.Marshal(bson.M{
		"operationType": "insert",
		"documentKey":   bson.M{"_id": likeID},
		"fullDocument": bson.M{
			"_id":        likeID,
			"postId":     postID,
			"userHandle": "liker",
		},
	})
	require.NoError(t, err)

	var event changeEvent
	require.NoError(t, bson.Unmarshal(raw, &event))
	assert.Equal(t, "insert", event.OperationType)
	assert.Equal(t, likeID, event.DocumentKey.ID)

	var like models.Like
	require.NoError(t, bson.Unmarshal(event.FullDocument, &like))
	assert.Equal(t, postID, like.PostID)
	assert.Equal(t, "liker", like.UserHandle)
}
