// Package memory provides mutex-guarded in-memory repositories backing the
// service-level tests; the postgres package is the production counterpart.
package memory

import (
	"sync"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
)

type Store struct {
	mu           sync.RWMutex
	polls        map[uuid.UUID]*domain.Poll
	participants map[uuid.UUID]*domain.Participant
	votes        []*domain.Vote
	roles        []*domain.PollRoleAssignment
	events       []*domain.AuditEvent
	users        map[uuid.UUID]*domain.User
}

func NewStore() *Store {
	return &Store{
		polls:        make(map[uuid.UUID]*domain.Poll),
		participants: make(map[uuid.UUID]*domain.Participant),
		users:        make(map[uuid.UUID]*domain.User),
	}
}

func (s *Store) Polls() ports.PollRepository               { return &pollRepo{s} }
func (s *Store) Participants() ports.ParticipantRepository { return &participantRepo{s} }
func (s *Store) Votes() ports.VoteRepository               { return &voteRepo{s} }
func (s *Store) Roles() ports.RoleRepository               { return &roleRepo{s} }
func (s *Store) Audit() ports.AuditRepository              { return &auditRepo{s} }
func (s *Store) Users() ports.UserRepository               { return &userRepo{s} }

func clonePoll(p *domain.Poll) *domain.Poll {
	cp := *p
	cp.Ballot = append([]domain.Question(nil), p.Ballot...)
	return &cp
}

func cloneParticipant(p *domain.Participant) *domain.Participant {
	cp := *p
	return &cp
}

func cloneVote(v *domain.Vote) *domain.Vote {
	cv := *v
	cv.SelectedOptions = append([]uuid.UUID(nil), v.SelectedOptions...)
	return &cv
}
