package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
)

type roleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) ports.RoleRepository {
	return &roleRepository{
		db: db,
	}
}

func (r *roleRepository) Add(ctx context.Context, a *domain.PollRoleAssignment) error {
	query := `
		INSERT INTO poll_roles (poll_id, user_id, relation, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, user_id, relation) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, a.PollID, a.UserID, a.Relation, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add role assignment: %w", err)
	}
	return nil
}

func (r *roleRepository) Remove(ctx context.Context, pollID, userID uuid.UUID, relation domain.PollRoleRelation) error {
	query := `DELETE FROM poll_roles WHERE poll_id = $1 AND user_id = $2 AND relation = $3`
	_, err := r.db.ExecContext(ctx, query, pollID, userID, relation)
	if err != nil {
		return fmt.Errorf("failed to remove role assignment: %w", err)
	}
	return nil
}

func (r *roleRepository) Has(ctx context.Context, pollID, userID uuid.UUID, relation domain.PollRoleRelation) (bool, error) {
	query := `SELECT 1 FROM poll_roles WHERE poll_id = $1 AND user_id = $2 AND relation = $3 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, userID, relation).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check role assignment: %w", err)
	}
	return true, nil
}

func (r *roleRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.PollRoleAssignment, error) {
	query := `SELECT poll_id, user_id, relation, created_at FROM poll_roles WHERE poll_id = $1`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*domain.PollRoleAssignment
	for rows.Next() {
		var a domain.PollRoleAssignment
		if err := rows.Scan(&a.PollID, &a.UserID, &a.Relation, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role assignment: %w", err)
		}
		assignments = append(assignments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role assignments: %w", err)
	}
	return assignments, nil
}
