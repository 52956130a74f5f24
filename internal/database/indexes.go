package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmstore/internal/storage"
)

// EnsureKVIndexes indexes the kv collection by last update so stale cart
// snapshots can be found and pruned by an operator.
func EnsureKVIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(storage.KVCollection).Indexes()

	updatedAtIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "updatedAt", Value: -1}},
		Options: options.Index().SetName("updatedAt_index"),
	}

	log.Println("EnsureKVIndexes: creating updatedAt_index index")
	_, err := indexes.CreateOne(ctx, updatedAtIndex)
	if err != nil {
		log.Println("EnsureKVIndexes: updatedAt index error:", err)
		return err
	}
	log.Println("EnsureKVIndexes: updatedAt_index index created")
	return nil
}
