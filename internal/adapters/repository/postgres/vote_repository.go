package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// Replace swaps the participant's vote rows inside a single transaction so a
// concurrent reader never observes a partially replaced set.
func (r *voteRepository) Replace(ctx context.Context, pollID, participantID uuid.UUID, votes []*domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE poll_id = $1 AND participant_id = $2`, pollID, participantID)
	if err != nil {
		return fmt.Errorf("failed to delete prior votes: %w", err)
	}

	queryVote := `
		INSERT INTO votes (id, poll_id, participant_id, question_id, selected_options, vote_weight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := tx.PrepareContext(ctx, queryVote)
	if err != nil {
		return fmt.Errorf("failed to prepare vote statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range votes {
		selected, err := json.Marshal(v.SelectedOptions)
		if err != nil {
			return fmt.Errorf("failed to encode selections: %w", err)
		}
		_, err = stmt.ExecContext(ctx, v.ID, v.PollID, v.ParticipantID, v.QuestionID, selected, v.VoteWeight, v.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *voteRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error) {
	query := selectVote + ` WHERE poll_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	return scanVotes(rows)
}

func (r *voteRepository) ListByParticipant(ctx context.Context, pollID, participantID uuid.UUID) ([]*domain.Vote, error) {
	query := selectVote + ` WHERE poll_id = $1 AND participant_id = $2 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, pollID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participant votes: %w", err)
	}
	defer rows.Close()

	return scanVotes(rows)
}

const selectVote = `
	SELECT id, poll_id, participant_id, question_id, selected_options, vote_weight, created_at
	FROM votes
`

func scanVotes(rows *sql.Rows) ([]*domain.Vote, error) {
	var votes []*domain.Vote
	for rows.Next() {
		var v domain.Vote
		var selected []byte
		if err := rows.Scan(&v.ID, &v.PollID, &v.ParticipantID, &v.QuestionID, &selected, &v.VoteWeight, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		if err := json.Unmarshal(selected, &v.SelectedOptions); err != nil {
			return nil, fmt.Errorf("failed to decode selections: %w", err)
		}
		votes = append(votes, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}
