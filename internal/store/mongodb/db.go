package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a MongoDB client and verifies connectivity with a ping.
func Connect(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	return client, client.Database(dbName), nil
}

// Disconnect closes the client with a bounded timeout.
func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes configures the indexes the repositories rely on. Called once
// on startup after Mongo has connected; all statements are idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email").SetUnique(true),
		},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		return err
	}

	// A request pair is unique per direction while pending; the service layer
	// additionally checks the reverse direction before creating.
	requests := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}},
			Options: options.Index().
				SetName("idx_requests_pending_pair").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
		{
			Keys:    bson.D{{Key: "to", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_requests_to_status"),
		},
		{
			Keys:    bson.D{{Key: "from", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_requests_from_status"),
		},
	}
	if _, err := db.Collection("friend_requests").Indexes().CreateMany(ctx, requests); err != nil {
		return err
	}

	groups := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("idx_groups_members"),
		},
	}
	if _, err := db.Collection("groups").Indexes().CreateMany(ctx, groups); err != nil {
		return err
	}

	return nil
}
