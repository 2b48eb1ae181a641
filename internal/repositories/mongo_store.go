package repositories

import (
	"context"
	"errors"
	"time"

	"rocketshoes-cart/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo storage: one document per key, _id is the key
type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) KeyValueStore {
	return newMongoStoreWithCollection(db.Collection("storage"))
}

func newMongoStoreWithCollection(collection *mongo.Collection) KeyValueStore {
	return &mongoStore{collection: collection}
}

func (r *mongoStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var doc models.StorageDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Value, true, nil
}

func (r *mongoStore) SetItem(ctx context.Context, key, value string) error {
	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{
		"value":      value,
		"updated_at": time.Now(),
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
