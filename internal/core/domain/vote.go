package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one participant's selection set for one ballot question. VoteWeight
// is copied from the participant at cast time, not live-joined.
type Vote struct {
	ID              uuid.UUID   `json:"id"`
	PollID          uuid.UUID   `json:"poll_id"`
	ParticipantID   uuid.UUID   `json:"participant_id"`
	QuestionID      uuid.UUID   `json:"question_id"`
	SelectedOptions []uuid.UUID `json:"selected_options"`
	VoteWeight      float64     `json:"vote_weight"`
	CreatedAt       time.Time   `json:"created_at"`
}

// VotePayload maps question ids to the selected option ids of a submission.
type VotePayload map[uuid.UUID][]uuid.UUID
