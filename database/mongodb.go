package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aarav-mehta-dev/wellness-backend-go/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var DB *mongo.Database

func ConnectDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoURI := config.GetEnv("MONGODB_URI", "mongodb://localhost:27017")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return err
	}

	// Ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		return err
	}

	DB = client.Database(config.GetEnv("MONGODB_DB", "wellness"))

	if err := ensureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("🗄️ Connected to MongoDB!")
	return nil
}

// ensureIndexes creates the indexes the order reports and lookups rely
// on: orders are queried by owner, status, payment status and creation
// time; orderNumber and user email are unique.
func ensureIndexes(ctx context.Context) error {
	orders := DB.Collection("orders")
	_, err := orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "paymentStatus", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = DB.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = DB.Collection("wishlists").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
