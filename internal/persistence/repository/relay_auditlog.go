package repository

import (
	"context"
	"time"

	"github.com/hilthontt/chatrelay/internal/domain"
	"github.com/hilthontt/chatrelay/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type relayAuditLogRepository struct {
	db *mongo.Database
}

func NewRelayAuditLogRepository(database *mongo.Database) domain.RelayAuditRepository {
	return &relayAuditLogRepository{
		db: database,
	}
}

func (r *relayAuditLogRepository) Log(ctx context.Context, entry *domain.RelayAuditLog) error {
	collection := r.db.Collection(db.RelayAuditLogsCollection)

	_, err := collection.InsertOne(ctx, entry)
	return err
}

func (r *relayAuditLogRepository) GetByRoomID(ctx context.Context, roomID string, limit int) ([]domain.RelayAuditLog, error) {
	collection := r.db.Collection(db.RelayAuditLogsCollection)

	filter := bson.M{"room_id": roomID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.RelayAuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *relayAuditLogRepository) GetByEventType(ctx context.Context, eventType domain.RelayEventType, from time.Time, to time.Time) ([]domain.RelayAuditLog, error) {
	collection := r.db.Collection(db.RelayAuditLogsCollection)

	filter := bson.M{
		"event_type": eventType,
		"timestamp": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.RelayAuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *relayAuditLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) error {
	collection := r.db.Collection(db.RelayAuditLogsCollection)

	filter := bson.M{
		"timestamp": bson.M{
			"$lt": before,
		},
	}

	_, err := collection.DeleteMany(ctx, filter)
	return err
}

func (r *relayAuditLogRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.RelayAuditLogsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "room_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(7776000), // 90 days TTL
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
