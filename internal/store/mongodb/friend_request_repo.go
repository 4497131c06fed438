package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"chatme/internal/domain"
)

type FriendRequestRepo struct {
	col *mongo.Collection
}

func NewFriendRequestRepo(db *mongo.Database) *FriendRequestRepo {
	return &FriendRequestRepo{col: db.Collection("friend_requests")}
}

var _ domain.FriendRequestRepository = (*FriendRequestRepo)(nil)

func (r *FriendRequestRepo) Create(ctx context.Context, fr *domain.FriendRequest) error {
	now := time.Now().UTC()
	fr.CreatedAt = now
	fr.UpdatedAt = now
	if fr.Status == "" {
		fr.Status = domain.RequestPending
	}
	res, err := r.col.InsertOne(ctx, fr)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("friend request already pending: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert friend request: %w", err)
	}
	fr.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *FriendRequestRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FriendRequest, error) {
	var fr domain.FriendRequest
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&fr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find friend request: %w", err)
	}
	return &fr, nil
}

func (r *FriendRequestRepo) FindPendingBetween(ctx context.Context, a, b primitive.ObjectID) (*domain.FriendRequest, error) {
	filter := bson.M{
		"status": domain.RequestPending,
		"$or": []bson.M{
			{"from": a, "to": b},
			{"from": b, "to": a},
		},
	}
	var fr domain.FriendRequest
	err := r.col.FindOne(ctx, filter).Decode(&fr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pending request: %w", err)
	}
	return &fr, nil
}

func (r *FriendRequestRepo) ListPendingTo(ctx context.Context, userID primitive.ObjectID) ([]*domain.FriendRequest, error) {
	return r.findMany(ctx, bson.M{"to": userID, "status": domain.RequestPending})
}

func (r *FriendRequestRepo) ListPendingFrom(ctx context.Context, userID primitive.ObjectID) ([]*domain.FriendRequest, error) {
	return r.findMany(ctx, bson.M{"from": userID, "status": domain.RequestPending})
}

func (r *FriendRequestRepo) ListPendingInvolving(ctx context.Context, userID primitive.ObjectID) ([]*domain.FriendRequest, error) {
	return r.findMany(ctx, bson.M{
		"status": domain.RequestPending,
		"$or":    []bson.M{{"from": userID}, {"to": userID}},
	})
}

func (r *FriendRequestRepo) findMany(ctx context.Context, filter bson.M) ([]*domain.FriendRequest, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find friend requests: %w", err)
	}
	defer cur.Close(ctx)

	var requests []*domain.FriendRequest
	for cur.Next(ctx) {
		var fr domain.FriendRequest
		if err := cur.Decode(&fr); err != nil {
			return nil, fmt.Errorf("decode friend request: %w", err)
		}
		requests = append(requests, &fr)
	}
	return requests, cur.Err()
}

func (r *FriendRequestRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.RequestStatus) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update friend request: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FriendRequestRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
