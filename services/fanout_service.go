package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialape/backend/config"
	"github.com/socialape/backend/models"
	"github.com/socialape/backend/utils"
	"github.com/socialape/backend/websocket"
)

const watchRetryDelay = 5 * time.Second

// FanoutService consumes change streams on the likes, comments, posts and
// users collections and maintains the documents derived from them:
// notifications, cascading deletes and the author image copied onto posts
// and comments. The like and comment counters are owned exclusively by the
// request handlers' atomic updates; the worker never writes them. Handlers
// are idempotent, so a redelivered event after a resume produces the same
// state.
type FanoutService struct {
	db  *mongo.Client
	hub *websocket.Hub
}

// NewFanoutService creates the fan-out worker
func NewFanoutService(db *mongo.Client, hub *websocket.Hub) *FanoutService {
	return &FanoutService{db: db, hub: hub}
}

// Run starts one watcher per collection and blocks until ctx is cancelled
func (s *FanoutService) Run(ctx context.Context) {
	go s.watch(ctx, "likes", s.likesPipeline(), options.ChangeStream(), s.handleLikeEvent)
	go s.watch(ctx, "comments", s.commentsPipeline(), options.ChangeStream(), s.handleCommentEvent)
	go s.watch(ctx, "posts", s.postsPipeline(), options.ChangeStream(), s.handlePostEvent)
	go s.watch(ctx, "users", s.usersPipeline(), s.userOpts(), s.handleUserEvent)
	<-ctx.Done()
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument      bson.Raw `bson:"fullDocument"`
	UpdateDescription struct {
		UpdatedFields bson.Raw `bson:"updatedFields"`
	} `bson:"updateDescription"`
}

// watch opens a change stream and dispatches its events, reopening the
// stream after errors so a dropped cursor does not stop the worker.
func (s *FanoutService) watch(ctx context.Context, name string, pipeline mongo.Pipeline, opts *options.ChangeStreamOptions, handle func(context.Context, changeEvent)) {
	coll := config.GetCollection(s.db, name)
	for {
		stream, err := coll.Watch(ctx, pipeline, opts)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("fanout: watch %s failed: %v", name, err)
			select {
			case <-time.After(watchRetryDelay):
				continue
			case <-ctx.Done():
				return
			}
		}

		for stream.Next(ctx) {
			var event changeEvent
			if err := stream.Decode(&event); err != nil {
				log.Printf("fanout: decode %s event failed: %v", name, err)
				continue
			}
			handle(ctx, event)
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Printf("fanout: %s stream closed: %v", name, err)
		}
		stream.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *FanoutService) likesPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": bson.A{"insert", "delete"}}}}},
	}
}

func (s *FanoutService) commentsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": "insert"}}},
	}
}

func (s *FanoutService) postsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": "delete"}}},
	}
}

func (s *FanoutService) usersPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": "update"}}},
	}
}

func (s *FanoutService) userOpts() *options.ChangeStreamOptions {
	return options.ChangeStream().SetFullDocument(options.UpdateLookup)
}

func (s *FanoutService) handleLikeEvent(ctx context.Context, event changeEvent) {
	switch event.OperationType {
	case "insert":
		var like models.Like
		if err := bson.Unmarshal(event.FullDocument, &like); err != nil {
			log.Printf("fanout: unmarshal like failed: %v", err)
			return
		}
		s.onLikeInsert(ctx, like)
	case "delete":
		s.onLikeDelete(ctx, event.DocumentKey.ID)
	}
}

func (s *FanoutService) handleCommentEvent(ctx context.Context, event changeEvent) {
	if event.OperationType != "insert" {
		return
	}
	var comment models.Comment
	if err := bson.Unmarshal(event.FullDocument, &comment); err != nil {
		log.Printf("fanout: unmarshal comment failed: %v", err)
		return
	}
	s.onCommentInsert(ctx, comment)
}

func (s *FanoutService) handlePostEvent(ctx context.Context, event changeEvent) {
	if event.OperationType != "delete" {
		return
	}
	s.onPostDelete(ctx, event.DocumentKey.ID)
}

func (s *FanoutService) handleUserEvent(ctx context.Context, event changeEvent) {
	if event.OperationType != "update" {
		return
	}
	if !imageURLChanged(event.UpdateDescription.UpdatedFields) {
		return
	}
	var user models.User
	if err := bson.Unmarshal(event.FullDocument, &user); err != nil {
		log.Printf("fanout: unmarshal user failed: %v", err)
		return
	}
	s.onUserImageChange(ctx, user)
}

// onLikeInsert creates the notification for a new like and pushes it to the
// recipient.
func (s *FanoutService) onLikeInsert(ctx context.Context, like models.Like) {
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	postsColl := config.GetCollection(s.db, "posts")
	var post models.Post
	err := postsColl.FindOne(sctx, bson.M{"_id": like.PostID}).Decode(&post)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Printf("fanout: post lookup for like %s failed: %v", like.ID.Hex(), err)
		}
		return
	}

	if !shouldNotify(like.UserHandle, post.UserHandle) {
		return
	}
	notification := newNotification(like.ID, post.UserHandle, like.UserHandle, models.NotificationTypeLike, like.PostID)
	s.deliver(sctx, notification)
}

// onLikeDelete removes the notification derived from the like. The counter
// was already decremented by the unlike handler.
func (s *FanoutService) onLikeDelete(ctx context.Context, likeID primitive.ObjectID) {
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	notifColl := config.GetCollection(s.db, "notifications")
	if _, err := notifColl.DeleteOne(sctx, bson.M{"_id": likeID}); err != nil {
		log.Printf("fanout: delete notification %s failed: %v", likeID.Hex(), err)
	}
}

func (s *FanoutService) onCommentInsert(ctx context.Context, comment models.Comment) {
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	postsColl := config.GetCollection(s.db, "posts")
	var post models.Post
	err := postsColl.FindOne(sctx, bson.M{"_id": comment.PostID}).Decode(&post)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Printf("fanout: post lookup for comment %s failed: %v", comment.ID.Hex(), err)
		}
		return
	}

	if !shouldNotify(comment.UserHandle, post.UserHandle) {
		return
	}
	notification := newNotification(comment.ID, post.UserHandle, comment.UserHandle, models.NotificationTypeComment, comment.PostID)
	s.deliver(sctx, notification)
}

// onPostDelete cascades the delete to the post's comments, likes and
// notifications. The like deletions feed back through the likes stream,
// where the notification cleanup finds nothing left to do.
func (s *FanoutService) onPostDelete(ctx context.Context, postID primitive.ObjectID) {
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"postId": postID}
	for _, name := range []string{"comments", "likes", "notifications"} {
		if _, err := config.GetCollection(s.db, name).DeleteMany(sctx, filter); err != nil {
			log.Printf("fanout: cascade delete %s for post %s failed: %v", name, postID.Hex(), err)
		}
	}
}

// onUserImageChange refreshes the denormalized author image on the user's
// posts and comments.
func (s *FanoutService) onUserImageChange(ctx context.Context, user models.User) {
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"userHandle": user.Handle}
	update := bson.M{"$set": bson.M{"userImage": user.ImageURL}}
	for _, name := range []string{"posts", "comments"} {
		if _, err := config.GetCollection(s.db, name).UpdateMany(sctx, filter, update); err != nil {
			log.Printf("fanout: refresh author image on %s for %s failed: %v", name, user.Handle, err)
		}
	}
}

// deliver upserts the notification and pushes it to the recipient. The
// upsert is keyed by the source document id, so a redelivered event never
// creates a duplicate.
func (s *FanoutService) deliver(ctx context.Context, notification models.Notification) {
	notifColl := config.GetCollection(s.db, "notifications")
	_, err := notifColl.ReplaceOne(ctx,
		bson.M{"_id": notification.ID},
		notification,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		log.Printf("fanout: upsert notification %s failed: %v", notification.ID.Hex(), err)
		return
	}

	if s.hub != nil {
		s.hub.SendToHandle(notification.Recipient, websocket.Event{
			Type: "notification",
			Data: notification,
		})
	}
	if config.FirebaseApp != nil {
		go utils.SendFCMNotification(s.db, notification)
	}
}

// shouldNotify reports whether a like or comment by sender on recipient's
// post warrants a notification. Users are not notified about their own
// activity.
func shouldNotify(sender, recipient string) bool {
	return recipient != "" && sender != recipient
}

// newNotification builds the notification derived from a like or comment.
// Its id is the source document's id.
func newNotification(sourceID primitive.ObjectID, recipient, sender, notifType string, postID primitive.ObjectID) models.Notification {
	return models.Notification{
		ID:        sourceID,
		Recipient: recipient,
		Sender:    sender,
		Type:      notifType,
		PostID:    postID,
		Read:      false,
		CreatedAt: time.Now(),
	}
}

// imageURLChanged reports whether an update touched the imageUrl field
func imageURLChanged(updatedFields bson.Raw) bool {
	if len(updatedFields) == 0 {
		return false
	}
	_, err := updatedFields.LookupErr("imageUrl")
	return err == nil
}
