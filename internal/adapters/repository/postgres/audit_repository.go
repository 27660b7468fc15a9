package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) ports.AuditRepository {
	return &auditRepository{
		db: db,
	}
}

// Append inserts one event. The table is append-only; there is no update or
// delete path.
func (r *auditRepository) Append(ctx context.Context, e *domain.AuditEvent) error {
	meta, err := json.Marshal(e.Meta)
	if err != nil {
		return fmt.Errorf("failed to encode meta: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, event_type, actor_user_id, poll_id, participant_id, meta, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.EventType, e.ActorUserID, e.PollID, e.ParticipantID, meta,
		e.IPAddress, e.UserAgent, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

func (r *auditRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.AuditEvent, error) {
	query := `
		SELECT id, event_type, actor_user_id, poll_id, participant_id, meta, ip_address, user_agent, created_at
		FROM audit_events
		WHERE poll_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var e domain.AuditEvent
		var meta []byte
		if err := rows.Scan(&e.ID, &e.EventType, &e.ActorUserID, &e.PollID, &e.ParticipantID, &meta, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, fmt.Errorf("failed to decode meta: %w", err)
			}
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

func (r *auditRepository) Exists(ctx context.Context, pollID uuid.UUID, eventType domain.AuditEventType, participantID, actorID *uuid.UUID) (bool, error) {
	query := `
		SELECT 1 FROM audit_events
		WHERE poll_id = $1 AND event_type = $2
		  AND ($3::uuid IS NULL OR participant_id = $3)
		  AND ($4::uuid IS NULL OR actor_user_id = $4)
		LIMIT 1
	`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, eventType, participantID, actorID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check audit event: %w", err)
	}
	return true, nil
}
