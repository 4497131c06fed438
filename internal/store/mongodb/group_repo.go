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

type GroupRepo struct {
	col *mongo.Collection
}

func NewGroupRepo(db *mongo.Database) *GroupRepo {
	return &GroupRepo{col: db.Collection("groups")}
}

var _ domain.GroupRepository = (*GroupRepo)(nil)

func (r *GroupRepo) Create(ctx context.Context, g *domain.Group) error {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, g)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	g.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *GroupRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Group, error) {
	var g domain.Group
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find group: %w", err)
	}
	return &g, nil
}

func (r *GroupRepo) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Group, error) {
	cur, err := r.col.Find(ctx, bson.M{"members": userID})
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer cur.Close(ctx)

	var groups []*domain.Group
	for cur.Next(ctx) {
		var g domain.Group
		if err := cur.Decode(&g); err != nil {
			return nil, fmt.Errorf("decode group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, cur.Err()
}

func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{
		"$addToSet": bson.M{"members": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": groupID}, bson.M{
		"$pull": bson.M{"members": userID, "admins": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupRepo) Update(ctx context.Context, g *domain.Group) error {
	g.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GroupRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
