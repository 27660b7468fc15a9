package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type participantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) ports.ParticipantRepository {
	return &participantRepository{
		db: db,
	}
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (id, poll_id, user_id, email, name, is_user, token, token_used, token_viewed, vote_weight, status, has_voted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.PollID, p.UserID, p.Email, p.Name, p.IsUser, nullString(p.Token),
		p.TokenUsed, p.TokenViewed, p.VoteWeight, p.Status, p.HasVoted, p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateParticipant
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	return r.getOne(ctx, selectParticipant+` WHERE id = $1`, id)
}

func (r *participantRepository) GetByToken(ctx context.Context, pollID uuid.UUID, token string) (*domain.Participant, error) {
	return r.getOne(ctx, selectParticipant+` WHERE poll_id = $1 AND token = $2`, pollID, token)
}

func (r *participantRepository) GetByUser(ctx context.Context, pollID, userID uuid.UUID) (*domain.Participant, error) {
	return r.getOne(ctx, selectParticipant+` WHERE poll_id = $1 AND user_id = $2`, pollID, userID)
}

func (r *participantRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Participant, error) {
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

func (r *participantRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx, selectParticipant+` WHERE poll_id = $1 ORDER BY created_at`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}

func (r *participantRepository) Update(ctx context.Context, p *domain.Participant) error {
	query := `
		UPDATE participants
		SET email = $2, name = $3, token = $4, token_used = $5, token_viewed = $6,
		    token_last_revoked_at = $7, vote_weight = $8, status = $9, last_email_sent_at = $10
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Email, p.Name, nullString(p.Token), p.TokenUsed, p.TokenViewed,
		p.TokenLastRevokedAt, p.VoteWeight, p.Status, p.LastEmailSentAt)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *participantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *participantRepository) SetVoted(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE participants SET has_voted = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to set voted: %w", err)
	}
	return nil
}

// ConsumeToken marks the token used under a compare-and-swap guard so a token
// consumed by a concurrent request cannot be spent twice.
func (r *participantRepository) ConsumeToken(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE participants SET token_used = true WHERE id = $1 AND NOT token_used`, id)
	if err != nil {
		return fmt.Errorf("failed to consume token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTokenUsed
	}
	return nil
}

const selectParticipant = `
	SELECT id, poll_id, user_id, email, name, is_user, COALESCE(token, ''), token_used, token_viewed, token_last_revoked_at, vote_weight, status, has_voted, last_email_sent_at, created_at
	FROM participants
`

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	var p domain.Participant
	err := row.Scan(
		&p.ID, &p.PollID, &p.UserID, &p.Email, &p.Name, &p.IsUser, &p.Token,
		&p.TokenUsed, &p.TokenViewed, &p.TokenLastRevokedAt, &p.VoteWeight,
		&p.Status, &p.HasVoted, &p.LastEmailSentAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
