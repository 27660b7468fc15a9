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

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	settings, ballot, err := marshalPollDocs(poll)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO polls (id, title, description, start_date, end_date, status, manager_id, created_by_id, settings, ballot, will_send_emails, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		poll.ID, poll.Title, poll.Description, poll.StartDate, poll.EndDate,
		poll.Status, poll.ManagerID, poll.CreatedByID, settings, ballot,
		poll.WillSendEmails, poll.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	query := selectPoll + ` WHERE id = $1`
	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return poll, nil
}

func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	settings, ballot, err := marshalPollDocs(poll)
	if err != nil {
		return err
	}

	query := `
		UPDATE polls
		SET title = $2, description = $3, start_date = $4, end_date = $5,
		    status = $6, manager_id = $7, settings = $8, ballot = $9, will_send_emails = $10
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		poll.ID, poll.Title, poll.Description, poll.StartDate, poll.EndDate,
		poll.Status, poll.ManagerID, settings, ballot, poll.WillSendEmails)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

// Delete removes the poll; participants, votes, role assignments and audit
// events go with it through the foreign-key cascade.
func (r *pollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	rows, err := r.db.QueryContext(ctx, selectPoll+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Poll, error) {
	query := selectPoll + `
		WHERE manager_id = $1
		   OR id IN (SELECT poll_id FROM poll_roles WHERE user_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls for user: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

func (r *pollRepository) ListActiveMailable(ctx context.Context) ([]*domain.Poll, error) {
	query := selectPoll + ` WHERE status = 'active' AND will_send_emails`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list mailable polls: %w", err)
	}
	defer rows.Close()

	return scanPolls(rows)
}

const selectPoll = `
	SELECT id, title, description, start_date, end_date, status, manager_id, created_by_id, settings, ballot, will_send_emails, created_at
	FROM polls
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var poll domain.Poll
	var settings, ballot []byte
	err := row.Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.StartDate, &poll.EndDate,
		&poll.Status, &poll.ManagerID, &poll.CreatedByID, &settings, &ballot,
		&poll.WillSendEmails, &poll.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settings, &poll.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := json.Unmarshal(ballot, &poll.Ballot); err != nil {
		return nil, fmt.Errorf("failed to decode ballot: %w", err)
	}
	return &poll, nil
}

func scanPolls(rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	return polls, nil
}

func marshalPollDocs(poll *domain.Poll) ([]byte, []byte, error) {
	settings, err := json.Marshal(poll.Settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	ballot, err := json.Marshal(poll.Ballot)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode ballot: %w", err)
	}
	return settings, ballot, nil
}
