package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMessageLogCollection(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("message_log")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "instance", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_message_log_instance_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "chat_jid", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_message_log_chat_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "message_type", Value: 1}},
			Options: options.Index().SetName("idx_message_log_message_type"),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetName("idx_message_log_event_id").SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
