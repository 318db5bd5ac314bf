package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialape/backend/config"
	"github.com/socialape/backend/models"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Client) *UserRepository {
	return &UserRepository{
		collection: config.GetCollection(db, "users"),
	}
}

// FindByUserID looks up a user by auth identity id (the token subject).
func (r *UserRepository) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByHandle looks up a user by handle.
func (r *UserRepository) FindByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"handle": handle}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfileImage stores a new profile image URL for the user.
func (r *UserRepository) UpdateProfileImage(ctx context.Context, userID, imageURL string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"imageUrl": imageURL}},
	)
	return err
}

// UpdateDetails replaces the bio/website/location fields wholesale.
func (r *UserRepository) UpdateDetails(ctx context.Context, userID string, details models.UserDetails) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": details},
	)
	return err
}

// UpdateFCMToken stores the device token used for push delivery.
func (r *UserRepository) UpdateFCMToken(ctx context.Context, userID, token string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"fcmToken": token}},
	)
	return err
}
