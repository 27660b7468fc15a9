package services

import "github.com/evoteadm/evote/internal/core/domain"

// ValidateVotePayload checks a submission against the ballot schema, question
// by question in ballot order. It is a pure function: either the whole payload
// validates or the first violation is reported and nothing is persisted.
func ValidateVotePayload(ballot []domain.Question, payload domain.VotePayload) error {
	for _, q := range ballot {
		selected := payload[q.ID]

		if len(selected) < q.MinSelection {
			return &domain.ValidationError{
				QuestionID:    q.ID,
				QuestionTitle: q.Title,
				Reason:        "too few selections",
			}
		}
		if len(selected) > q.MaxSelection {
			return &domain.ValidationError{
				QuestionID:    q.ID,
				QuestionTitle: q.Title,
				Reason:        "too many selections",
			}
		}
		for _, optionID := range selected {
			if !q.HasOption(optionID) {
				return &domain.ValidationError{
					QuestionID:    q.ID,
					QuestionTitle: q.Title,
					Reason:        "invalid option",
				}
			}
		}
	}
	return nil
}
