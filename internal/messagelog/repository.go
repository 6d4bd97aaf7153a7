package messagelog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wagate/internal/constants"
)

type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	ListByChat(ctx context.Context, instance, chatJID string, limit int) ([]Entry, error)
	ListByInstance(ctx context.Context, instance string, limit int) ([]Entry, error)
}

type MongoDBRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &MongoDBRepository{
		collection: db.Collection("message_log"),
	}
}

func (r *MongoDBRepository) Insert(ctx context.Context, entry Entry) error {
	_, err := r.collection.InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		// Redelivered event, already logged.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) ListByChat(ctx context.Context, instance, chatJID string, limit int) ([]Entry, error) {
	filter := bson.M{"instance": instance, "chat_jid": chatJID}
	return r.find(ctx, filter, limit)
}

func (r *MongoDBRepository) ListByInstance(ctx context.Context, instance string, limit int) ([]Entry, error) {
	filter := bson.M{"instance": instance}
	return r.find(ctx, filter, limit)
}

func (r *MongoDBRepository) find(ctx context.Context, filter bson.M, limit int) ([]Entry, error) {
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find log entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode log entries: %w", err)
	}

	return entries, nil
}
