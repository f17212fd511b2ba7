package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// kvDoc is one key-value entry in the kv collection. The value is kept as
// the serialized record text, not as a nested document, so the stored
// bytes are identical across backends.
type kvDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoKV stores key-value entries in a MongoDB collection.
type MongoKV struct {
	coll *mongo.Collection
}

func NewMongoKV(db *mongo.Database) *MongoKV {
	return &MongoKV{coll: db.Collection("kv")}
}

// Get retrieves the value stored under key
func (r *MongoKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc kvDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find %s: %w", key, err)
	}
	return []byte(doc.Value), true, nil
}

// Set replaces the entry for key, creating it if absent
func (r *MongoKV) Set(ctx context.Context, key string, value []byte) error {
	doc := kvDoc{Key: key, Value: string(value), UpdatedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}
