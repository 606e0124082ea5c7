package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userhub/identity-api/internal/core/domain"
)

const auditCollection = "audit_events"

// AuditRepository appends audit trail entries to MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	Action    string    `bson:"action"`
	ActorID   int64     `bson:"actor_id,omitempty"`
	SubjectID int64     `bson:"subject_id,omitempty"`
	Email     string    `bson:"email,omitempty"`
	At        time.Time `bson:"at"`
}

func (r *AuditRepository) Insert(ctx context.Context, event domain.AuditEvent) error {
	doc := auditDoc{
		Action:    event.Action,
		ActorID:   event.ActorID,
		SubjectID: event.SubjectID,
		Email:     event.Email,
		At:        event.At,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
