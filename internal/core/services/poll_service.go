package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/evoteadm/evote/internal/core/domain"
	"github.com/evoteadm/evote/internal/core/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// editorMutableFields are the only fields an update may touch without
// canManage. Once an active poll has started, the set narrows to settings.
var editorMutableFields = map[string]bool{
	"title":       true,
	"description": true,
	"ballot":      true,
	"settings":    true,
}

type pollService struct {
	pollRepo    ports.PollRepository
	userRepo    ports.UserRepository
	roleRepo    ports.RoleRepository
	permissions ports.PermissionService
	audit       ports.AuditService
	clock       ports.Clock
	logger      *zap.Logger
}

func NewPollService(
	pollRepo ports.PollRepository,
	userRepo ports.UserRepository,
	roleRepo ports.RoleRepository,
	permissions ports.PermissionService,
	audit ports.AuditService,
	clock ports.Clock,
	logger *zap.Logger,
) ports.PollService {
	return &pollService{
		pollRepo:    pollRepo,
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		permissions: permissions,
		audit:       audit,
		clock:       clock,
		logger:      logger,
	}
}

func (s *pollService) Create(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, input ports.CreatePollInput) (*domain.Poll, error) {
	if callerRole != domain.RoleAdmin && callerRole != domain.RoleSubAdmin {
		return nil, domain.ErrPermissionDenied
	}
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	if input.EndDate <= input.StartDate {
		return nil, errors.New("end date must be after start date")
	}

	managerID := callerID
	if input.ManagerID != nil {
		// Only admins may assign another sub-admin as manager.
		if callerRole != domain.RoleAdmin {
			return nil, domain.ErrPermissionDenied
		}
		manager, err := s.userRepo.GetByID(ctx, *input.ManagerID)
		if err != nil {
			return nil, err
		}
		if manager.Role != domain.RoleSubAdmin && manager.Role != domain.RoleAdmin {
			return nil, errors.New("manager must be a sub-admin")
		}
		managerID = manager.ID
	}

	settings := domain.DefaultSettings()
	if input.Settings != nil {
		settings = *input.Settings
	}

	ballot, err := buildBallot(input.Ballot)
	if err != nil {
		return nil, err
	}

	poll := &domain.Poll{
		ID:             uuid.New(),
		Title:          input.Title,
		Description:    input.Description,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Status:         domain.PollStatusDraft,
		ManagerID:      managerID,
		CreatedByID:    callerID,
		Settings:       settings,
		Ballot:         ballot,
		WillSendEmails: input.WillSendEmails,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.pollRepo.Save(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to save poll: %w", err)
	}

	s.logger.Info("poll created",
		zap.String("poll_id", poll.ID.String()),
		zap.String("manager_id", managerID.String()))
	return poll, nil
}

func buildBallot(inputs []ports.CreateQuestionInput) ([]domain.Question, error) {
	var ballot []domain.Question
	for _, qi := range inputs {
		if qi.Title == "" {
			return nil, errors.New("question title is required")
		}
		q := domain.Question{
			ID:           uuid.New(),
			Title:        qi.Title,
			MinSelection: qi.MinSelection,
			MaxSelection: qi.MaxSelection,
		}
		if q.MinSelection == 0 && q.MaxSelection == 0 {
			q.MinSelection, q.MaxSelection = 1, 1
		}
		if q.MinSelection > q.MaxSelection {
			return nil, fmt.Errorf("question %q: min selection exceeds max selection", qi.Title)
		}
		if len(qi.Options) < 2 {
			return nil, fmt.Errorf("question %q: at least two options are required", qi.Title)
		}
		for _, oi := range qi.Options {
			if oi.Title == "" {
				continue
			}
			q.Options = append(q.Options, domain.Option{
				ID:          uuid.New(),
				Title:       oi.Title,
				Description: oi.Description,
				Link:        oi.Link,
				ImageURL:    oi.ImageURL,
			})
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %q: at least two valid options are required", qi.Title)
		}
		ballot = append(ballot, q)
	}
	return ballot, nil
}

func (s *pollService) Get(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) (*domain.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return nil, err
	}
	if !caps.CanView {
		return nil, domain.ErrPermissionDenied
	}
	return poll, nil
}

func (s *pollService) List(ctx context.Context, callerID uuid.UUID, callerRole domain.Role) ([]*domain.Poll, error) {
	if callerRole == domain.RoleAdmin {
		return s.pollRepo.GetAll(ctx)
	}
	return s.pollRepo.ListForUser(ctx, callerID)
}

func (s *pollService) Update(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID, input ports.UpdatePollInput, meta ports.RequestMeta) (*domain.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return nil, err
	}
	if !caps.CanEdit && !caps.CanEditSettings {
		return nil, domain.ErrPermissionDenied
	}

	changed := changedFields(input)
	if len(changed) == 0 {
		return poll, nil
	}

	if err := checkMutationPolicy(poll, caps, changed, s.clock.NowMillis()); err != nil {
		return nil, err
	}

	if input.Status != nil && *input.Status == domain.PollStatusDraft && poll.Status != domain.PollStatusDraft {
		return nil, &domain.ValidationError{Reason: "a poll cannot return to draft"}
	}

	// An invalid ballot rejects the whole update before anything is applied.
	var ballot []domain.Question
	if input.Ballot != nil {
		ballot, err = buildBallot(input.Ballot)
		if err != nil {
			return nil, &domain.ValidationError{Reason: err.Error()}
		}
	}

	before := snapshot(poll)
	applyUpdate(poll, input, ballot)

	if err := s.pollRepo.Update(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to update poll: %w", err)
	}

	s.audit.Record(ctx, poll, domain.AuditEvent{
		EventType:   domain.EventPollUpdated,
		ActorUserID: &callerID,
		Meta: map[string]any{
			"changed_fields": changed,
			"before":         before,
			"after":          snapshot(poll),
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return poll, nil
}

// checkMutationPolicy enforces the update restrictions conjunctively: one
// restricted field in the request rejects the whole update.
func checkMutationPolicy(poll *domain.Poll, caps domain.Capabilities, changed []string, now int64) error {
	started := poll.Status == domain.PollStatusActive && poll.StartDate <= now
	for _, field := range changed {
		if started && !caps.CanManage && field != "settings" {
			return &domain.ValidationError{Reason: fmt.Sprintf("field %q cannot change after an active poll has started", field)}
		}
		if !caps.CanManage && !editorMutableFields[field] {
			return &domain.ValidationError{Reason: fmt.Sprintf("field %q requires manage rights", field)}
		}
	}
	return nil
}

func changedFields(input ports.UpdatePollInput) []string {
	var changed []string
	if input.Title != nil {
		changed = append(changed, "title")
	}
	if input.Description != nil {
		changed = append(changed, "description")
	}
	if input.StartDate != nil {
		changed = append(changed, "startDate")
	}
	if input.EndDate != nil {
		changed = append(changed, "endDate")
	}
	if input.Status != nil {
		changed = append(changed, "status")
	}
	if input.Settings != nil {
		changed = append(changed, "settings")
	}
	if input.Ballot != nil {
		changed = append(changed, "ballot")
	}
	if input.WillSendEmails != nil {
		changed = append(changed, "willSendEmails")
	}
	return changed
}

func applyUpdate(poll *domain.Poll, input ports.UpdatePollInput, ballot []domain.Question) {
	if input.Title != nil {
		poll.Title = *input.Title
	}
	if input.Description != nil {
		poll.Description = *input.Description
	}
	if input.StartDate != nil {
		poll.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		poll.EndDate = *input.EndDate
	}
	if input.Status != nil {
		poll.Status = *input.Status
	}
	if input.Settings != nil {
		poll.Settings = *input.Settings
	}
	if input.Ballot != nil {
		poll.Ballot = ballot
	}
	if input.WillSendEmails != nil {
		poll.WillSendEmails = *input.WillSendEmails
	}
}

func snapshot(poll *domain.Poll) map[string]any {
	return map[string]any{
		"title":       poll.Title,
		"description": poll.Description,
		"startDate":   poll.StartDate,
		"endDate":     poll.EndDate,
		"status":      string(poll.Status),
	}
}

func (s *pollService) Delete(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID uuid.UUID) error {
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return err
	}
	if !caps.CanDelete {
		return domain.ErrPermissionDenied
	}
	return s.pollRepo.Delete(ctx, pollID)
}

func (s *pollService) AssignRole(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID, userID uuid.UUID, relation domain.PollRoleRelation) error {
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return err
	}
	if !caps.CanManage {
		return domain.ErrPermissionDenied
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleSubAdmin {
		return errors.New("poll roles can only be assigned to sub-admins")
	}

	return s.roleRepo.Add(ctx, &domain.PollRoleAssignment{
		PollID:    pollID,
		UserID:    userID,
		Relation:  relation,
		CreatedAt: s.clock.Now(),
	})
}

func (s *pollService) RemoveRole(ctx context.Context, callerID uuid.UUID, callerRole domain.Role, pollID, userID uuid.UUID, relation domain.PollRoleRelation) error {
	caps, err := s.permissions.Resolve(ctx, callerID, callerRole, pollID)
	if err != nil {
		return err
	}
	if !caps.CanManage {
		return domain.ErrPermissionDenied
	}
	return s.roleRepo.Remove(ctx, pollID, userID, relation)
}
