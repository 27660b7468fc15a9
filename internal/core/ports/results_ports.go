package ports

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
)

type ResultsService interface {
	// Compute tabulates the poll and redacts the output for the given tier.
	// viewer is the requesting participant when tier is participant.
	Compute(ctx context.Context, poll *domain.Poll, tier domain.AccessTier, viewer *domain.Participant) (*domain.ResultsView, error)
}
