package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection implements Collection over a MongoDB collection keyed by _id.
// Json field names double as bson field names, so Patch maps straight to $set.
type MongoCollection[T Entity] struct {
	collection *mongo.Collection
}

// NewMongoCollection creates a new MongoCollection
func NewMongoCollection[T Entity](db *mongo.Database, name string) *MongoCollection[T] {
	return &MongoCollection[T]{collection: db.Collection(name)}
}

// Get retrieves an entity by ID from MongoDB
func (r *MongoCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	var v T
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// List retrieves every entity, oldest first
func (r *MongoCollection[T]) List(ctx context.Context) ([]T, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new entity in MongoDB
func (r *MongoCollection[T]) Create(ctx context.Context, entity *T) error {
	_, err := r.collection.InsertOne(ctx, entity)
	return err
}

// Patch sets the given fields on an entity
func (r *MongoCollection[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Mutate reads, transforms and replaces a single document
func (r *MongoCollection[T]) Mutate(ctx context.Context, id string, fn func(*T) error) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(current); err != nil {
		return err
	}
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, current)
	if err != nil {
		return fmt.Errorf("replace %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes an entity by ID from MongoDB
func (r *MongoCollection[T]) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteMany deletes all entities with the given IDs
func (r *MongoCollection[T]) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}
