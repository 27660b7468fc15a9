package ports

import "context"

type InvitationService interface {
	// SendPendingInvitations mails every approved participant of active
	// mailable polls that has not been invited yet. Per-participant failures
	// are logged and do not stop the run.
	SendPendingInvitations(ctx context.Context) error
}
