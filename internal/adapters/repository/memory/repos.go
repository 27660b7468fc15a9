package memory

import (
	"context"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/google/uuid"
)

type pollRepo struct{ s *Store }

func (r *pollRepo) Save(_ context.Context, poll *domain.Poll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.polls[poll.ID] = clonePoll(poll)
	return nil
}

func (r *pollRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	poll, ok := r.s.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (r *pollRepo) Update(_ context.Context, poll *domain.Poll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.polls[poll.ID]; !ok {
		return domain.ErrPollNotFound
	}
	r.s.polls[poll.ID] = clonePoll(poll)
	return nil
}

func (r *pollRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.polls[id]; !ok {
		return domain.ErrPollNotFound
	}
	delete(r.s.polls, id)
	for pid, p := range r.s.participants {
		if p.PollID == id {
			delete(r.s.participants, pid)
		}
	}
	var votes []*domain.Vote
	for _, v := range r.s.votes {
		if v.PollID != id {
			votes = append(votes, v)
		}
	}
	r.s.votes = votes
	var roles []*domain.PollRoleAssignment
	for _, a := range r.s.roles {
		if a.PollID != id {
			roles = append(roles, a)
		}
	}
	r.s.roles = roles
	return nil
}

func (r *pollRepo) GetAll(_ context.Context) ([]*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var polls []*domain.Poll
	for _, p := range r.s.polls {
		polls = append(polls, clonePoll(p))
	}
	return polls, nil
}

func (r *pollRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	assigned := make(map[uuid.UUID]bool)
	for _, a := range r.s.roles {
		if a.UserID == userID {
			assigned[a.PollID] = true
		}
	}
	var polls []*domain.Poll
	for _, p := range r.s.polls {
		if p.ManagerID == userID || assigned[p.ID] {
			polls = append(polls, clonePoll(p))
		}
	}
	return polls, nil
}

func (r *pollRepo) ListActiveMailable(_ context.Context) ([]*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var polls []*domain.Poll
	for _, p := range r.s.polls {
		if p.Status == domain.PollStatusActive && p.WillSendEmails {
			polls = append(polls, clonePoll(p))
		}
	}
	return polls, nil
}

type participantRepo struct{ s *Store }

func (r *participantRepo) Create(_ context.Context, p *domain.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.participants {
		if existing.PollID == p.PollID && existing.Email == p.Email {
			return domain.ErrDuplicateParticipant
		}
	}
	r.s.participants[p.ID] = cloneParticipant(p)
	return nil
}

func (r *participantRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.participants[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	return cloneParticipant(p), nil
}

func (r *participantRepo) GetByToken(_ context.Context, pollID uuid.UUID, token string) (*domain.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.participants {
		if p.PollID == pollID && p.Token != "" && p.Token == token {
			return cloneParticipant(p), nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

func (r *participantRepo) GetByUser(_ context.Context, pollID, userID uuid.UUID) (*domain.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.participants {
		if p.PollID == pollID && p.UserID != nil && *p.UserID == userID {
			return cloneParticipant(p), nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

func (r *participantRepo) ListByPoll(_ context.Context, pollID uuid.UUID) ([]*domain.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var participants []*domain.Participant
	for _, p := range r.s.participants {
		if p.PollID == pollID {
			participants = append(participants, cloneParticipant(p))
		}
	}
	return participants, nil
}

func (r *participantRepo) Update(_ context.Context, p *domain.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[p.ID]; !ok {
		return domain.ErrParticipantNotFound
	}
	r.s.participants[p.ID] = cloneParticipant(p)
	return nil
}

func (r *participantRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[id]; !ok {
		return domain.ErrParticipantNotFound
	}
	delete(r.s.participants, id)
	var votes []*domain.Vote
	for _, v := range r.s.votes {
		if v.ParticipantID != id {
			votes = append(votes, v)
		}
	}
	r.s.votes = votes
	return nil
}

func (r *participantRepo) SetVoted(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	p.HasVoted = true
	return nil
}

func (r *participantRepo) ConsumeToken(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	if p.TokenUsed {
		return domain.ErrTokenUsed
	}
	p.TokenUsed = true
	return nil
}

type voteRepo struct{ s *Store }

func (r *voteRepo) Replace(_ context.Context, pollID, participantID uuid.UUID, votes []*domain.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []*domain.Vote
	for _, v := range r.s.votes {
		if !(v.PollID == pollID && v.ParticipantID == participantID) {
			kept = append(kept, v)
		}
	}
	for _, v := range votes {
		kept = append(kept, cloneVote(v))
	}
	r.s.votes = kept
	return nil
}

func (r *voteRepo) ListByPoll(_ context.Context, pollID uuid.UUID) ([]*domain.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var votes []*domain.Vote
	for _, v := range r.s.votes {
		if v.PollID == pollID {
			votes = append(votes, cloneVote(v))
		}
	}
	return votes, nil
}

func (r *voteRepo) ListByParticipant(_ context.Context, pollID, participantID uuid.UUID) ([]*domain.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var votes []*domain.Vote
	for _, v := range r.s.votes {
		if v.PollID == pollID && v.ParticipantID == participantID {
			votes = append(votes, cloneVote(v))
		}
	}
	return votes, nil
}

type roleRepo struct{ s *Store }

func (r *roleRepo) Add(_ context.Context, a *domain.PollRoleAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if existing.PollID == a.PollID && existing.UserID == a.UserID && existing.Relation == a.Relation {
			return nil
		}
	}
	copied := *a
	r.s.roles = append(r.s.roles, &copied)
	return nil
}

func (r *roleRepo) Remove(_ context.Context, pollID, userID uuid.UUID, relation domain.PollRoleRelation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []*domain.PollRoleAssignment
	for _, a := range r.s.roles {
		if !(a.PollID == pollID && a.UserID == userID && a.Relation == relation) {
			kept = append(kept, a)
		}
	}
	r.s.roles = kept
	return nil
}

func (r *roleRepo) Has(_ context.Context, pollID, userID uuid.UUID, relation domain.PollRoleRelation) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.roles {
		if a.PollID == pollID && a.UserID == userID && a.Relation == relation {
			return true, nil
		}
	}
	return false, nil
}

func (r *roleRepo) ListByPoll(_ context.Context, pollID uuid.UUID) ([]*domain.PollRoleAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var assignments []*domain.PollRoleAssignment
	for _, a := range r.s.roles {
		if a.PollID == pollID {
			copied := *a
			assignments = append(assignments, &copied)
		}
	}
	return assignments, nil
}

type auditRepo struct{ s *Store }

func (r *auditRepo) Append(_ context.Context, e *domain.AuditEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *e
	r.s.events = append(r.s.events, &copied)
	return nil
}

func (r *auditRepo) ListByPoll(_ context.Context, pollID uuid.UUID) ([]*domain.AuditEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var events []*domain.AuditEvent
	for _, e := range r.s.events {
		if e.PollID == pollID {
			copied := *e
			events = append(events, &copied)
		}
	}
	return events, nil
}

func (r *auditRepo) Exists(_ context.Context, pollID uuid.UUID, eventType domain.AuditEventType, participantID, actorID *uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.events {
		if e.PollID != pollID || e.EventType != eventType {
			continue
		}
		if participantID != nil && (e.ParticipantID == nil || *e.ParticipantID != *participantID) {
			continue
		}
		if actorID != nil && (e.ActorUserID == nil || *e.ActorUserID != *actorID) {
			continue
		}
		return true, nil
	}
	return false, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}
