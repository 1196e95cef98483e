package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mobilekit/auth-service/internal/core/domain"
)

const auditCollection = "auth_events"

type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuthEvent struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"user_id"`
	Email     string `bson:"email,omitempty"`
	Action    string `bson:"action"`
	Provider  string `bson:"provider,omitempty"`
	SourceIP  string `bson:"source_ip,omitempty"`
	Timestamp int64  `bson:"timestamp"`
}

func (r *MongoAuditRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	doc := mongoAuthEvent{
		ID:        event.ID,
		UserID:    event.UserID,
		Email:     event.Email,
		Action:    string(event.Action),
		Provider:  string(event.Provider),
		SourceIP:  event.SourceIP,
		Timestamp: event.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

func (r *MongoAuditRepository) ListByUser(ctx context.Context, userID string, limit int64) ([]domain.AuthEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	defer cur.Close(ctx)

	var events []domain.AuthEvent
	for cur.Next(ctx) {
		var doc mongoAuthEvent
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode auth event: %w", err)
		}
		events = append(events, domain.AuthEvent{
			ID:        doc.ID,
			UserID:    doc.UserID,
			Email:     doc.Email,
			Action:    domain.AuthAction(doc.Action),
			Provider:  domain.AuthProvider(doc.Provider),
			SourceIP:  doc.SourceIP,
			Timestamp: time.Unix(doc.Timestamp, 0).UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	return events, nil
}
