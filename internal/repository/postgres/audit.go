package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/logger"
	"gamenight-backend/internal/repository"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, event *domain.AuditEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_events (action, actor_id, target_type, target_id, summary, metadata, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	logger.DatabaseCall("INSERT", "audit_events", "action", event.Action, "actor_id", event.ActorID)

	if event.CreatedOn.IsZero() {
		event.CreatedOn = time.Now()
	}
	return r.db.QueryRowContext(ctx, query, event.Action, event.ActorID, event.TargetType, event.TargetID, event.Summary, metadata, event.CreatedOn).Scan(&event.ID)
}
