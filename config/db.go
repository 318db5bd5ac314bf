// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://localhost:27017"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// DatabaseName returns the configured database name
func DatabaseName() string {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "socialape"
	}
	return dbName
}

// GetCollection returns MongoDB collection
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	return client.Database(DatabaseName()).Collection(collectionName)
}

// setupCollections ensures all necessary collections and indexes exist
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(DatabaseName())

	collections := []string{"users", "posts", "comments", "likes", "notifications"}
	for _, collName := range collections {
		db.CreateCollection(ctx, collName)
	}

	// Unique identifiers on users: handle is the primary identifier, email and
	// userId back login and token resolution.
	userColl := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "handle", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := userColl.Indexes().CreateMany(ctx, userIndexes); err != nil {
		log.Printf("Error creating user indexes: %v", err)
	}

	// One like per (postId, userHandle). The unique index is what makes the
	// like handler's insert a conditional write instead of check-then-act.
	likeColl := db.Collection("likes")
	likeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "postId", Value: 1}, {Key: "userHandle", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := likeColl.Indexes().CreateOne(ctx, likeIndex); err != nil {
		log.Printf("Error creating like index: %v", err)
	}

	queryIndexes := map[string]mongo.IndexModel{
		"posts": {
			Keys: bson.D{{Key: "userHandle", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		"comments": {
			Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		"notifications": {
			Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	for collName, model := range queryIndexes {
		if _, err := db.Collection(collName).Indexes().CreateOne(ctx, model); err != nil {
			log.Printf("Error creating %s index: %v", collName, err)
		}
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
