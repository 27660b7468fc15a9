package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type resultsService struct {
	participantRepo ports.ParticipantRepository
	voteRepo        ports.VoteRepository
	clock           ports.Clock
	logger          *zap.Logger
}

func NewResultsService(participantRepo ports.ParticipantRepository, voteRepo ports.VoteRepository, clock ports.Clock, logger *zap.Logger) ports.ResultsService {
	return &resultsService{
		participantRepo: participantRepo,
		voteRepo:        voteRepo,
		clock:           clock,
		logger:          logger,
	}
}

func (s *resultsService) Compute(ctx context.Context, poll *domain.Poll, tier domain.AccessTier, viewer *domain.Participant) (*domain.ResultsView, error) {
	participants, err := s.participantRepo.ListByPoll(ctx, poll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	votes, err := s.voteRepo.ListByPoll(ctx, poll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	pollEnded := poll.Ended(s.clock.NowMillis()) || poll.Status == domain.PollStatusCompleted
	privileged := tier == domain.TierAdmin || tier == domain.TierManager || tier == domain.TierAuditor

	// Editors inherit full participant visibility but the same breakdown
	// gating as participants.
	perms := domain.ResultsPermissions{
		ShowVoteCounts:          pollEnded || poll.Settings.ShowVoteCounts || privileged,
		ShowResultsBreakdown:    pollEnded || poll.Settings.ShowResultsBeforeEnd || privileged,
		ShowParticipantNames:    poll.Settings.ShowParticipantNames,
		ShowParticipantInitials: poll.Settings.ShowParticipantInitials,
		ShowVoteWeights:         poll.Settings.ShowVoteWeights,
	}

	view := &domain.ResultsView{
		PollID:       poll.ID,
		Title:        poll.Title,
		Status:       poll.Status,
		PollEnded:    pollEnded,
		Questions:    s.tabulate(poll, votes, perms),
		Participants: projectParticipants(participants, votes, tier, poll.Settings),
		Statistics:   statistics(participants, poll.Settings),
		Permissions:  perms,
	}
	return view, nil
}

// tabulate aggregates raw and weight-summed counts per question and option.
// Percentages are relative to the question's own vote pool, not poll-wide.
func (s *resultsService) tabulate(poll *domain.Poll, votes []*domain.Vote, perms domain.ResultsPermissions) []domain.QuestionResult {
	results := make([]domain.QuestionResult, 0, len(poll.Ballot))
	for _, q := range poll.Ballot {
		qr := domain.QuestionResult{QuestionID: q.ID, Title: q.Title}
		if !perms.ShowResultsBreakdown {
			results = append(results, qr)
			continue
		}

		var qVotes []*domain.Vote
		var totalWeight float64
		for _, v := range votes {
			if v.QuestionID == q.ID {
				qVotes = append(qVotes, v)
				totalWeight += v.VoteWeight
			}
		}

		for _, opt := range q.Options {
			var count int64
			var weighted float64
			for _, v := range qVotes {
				for _, sel := range v.SelectedOptions {
					if sel == opt.ID {
						count++
						weighted += v.VoteWeight
						break
					}
				}
			}

			or := domain.OptionResult{OptionID: opt.ID, Title: opt.Title}
			if len(qVotes) > 0 {
				or.Percentage = round2(float64(count) / float64(len(qVotes)) * 100)
			}
			if totalWeight > 0 {
				or.WeightedPercentage = round2(weighted / totalWeight * 100)
			}
			if perms.ShowVoteCounts {
				or.VoteCount = count
				or.WeightedVoteCount = weighted
			}
			qr.Options = append(qr.Options, or)
		}

		if perms.ShowVoteCounts {
			qr.TotalVotes = int64(len(qVotes))
			qr.TotalWeight = totalWeight
		}
		results = append(results, qr)
	}
	return results
}

// projectParticipants redacts the participant list for the requester tier.
// Admin, manager, auditor and editor see the full roster; participants see
// only voters, with identity and weight fields gated by the poll settings.
func projectParticipants(participants []*domain.Participant, votes []*domain.Vote, tier domain.AccessTier, settings domain.Settings) []domain.ParticipantResult {
	switch tier {
	case domain.TierAdmin, domain.TierManager, domain.TierAuditor, domain.TierEditor:
		out := make([]domain.ParticipantResult, 0, len(participants))
		for _, p := range participants {
			id := p.ID
			weight := p.VoteWeight
			out = append(out, domain.ParticipantResult{
				ID:         &id,
				Name:       p.Name,
				Email:      p.Email,
				IsUser:     p.IsUser,
				VoteWeight: &weight,
				HasVoted:   p.HasVoted,
				LastVoteAt: lastVoteAt(votes, p.ID),
			})
		}
		return out

	case domain.TierParticipant:
		var out []domain.ParticipantResult
		for _, p := range participants {
			if !p.HasVoted {
				continue
			}
			pr := domain.ParticipantResult{HasVoted: true}
			identified := false
			switch {
			case settings.ShowParticipantNames:
				pr.Name = p.Name
				identified = true
			case settings.ShowParticipantInitials:
				pr.Name = p.Initials()
				identified = true
			}
			// Anonymous weights are disclosed only when the poll actually
			// weights votes; an identified weight follows ShowVoteWeights.
			showWeight := settings.ShowVoteWeights
			if !identified {
				showWeight = settings.VoteWeightEnabled
			}
			if showWeight {
				weight := p.VoteWeight
				pr.VoteWeight = &weight
			}
			out = append(out, pr)
		}
		return out
	}
	return nil
}

func statistics(participants []*domain.Participant, settings domain.Settings) domain.Statistics {
	stats := domain.Statistics{TotalParticipants: int64(len(participants))}
	var totalWeight float64
	for _, p := range participants {
		if p.HasVoted {
			stats.VotedParticipants++
		}
		totalWeight += p.VoteWeight
	}
	if stats.TotalParticipants > 0 {
		stats.ParticipationRate = round2(float64(stats.VotedParticipants) / float64(stats.TotalParticipants) * 100)
	}
	if settings.VoteWeightEnabled {
		stats.TotalVoteWeight = &totalWeight
	}
	return stats
}

func lastVoteAt(votes []*domain.Vote, participantID uuid.UUID) *time.Time {
	var last *time.Time
	for _, v := range votes {
		if v.ParticipantID != participantID {
			continue
		}
		if last == nil || v.CreatedAt.After(*last) {
			t := v.CreatedAt
			last = &t
		}
	}
	return last
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
