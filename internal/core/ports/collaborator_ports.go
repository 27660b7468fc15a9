package ports

import (
	"context"
	"time"
)

// Clock supplies "now". The core never calls time.Now directly so tests can
// pin the voting window.
type Clock interface {
	Now() time.Time
	NowMillis() int64
}

// TokenSource produces opaque, unguessable participant tokens.
type TokenSource interface {
	NewToken() (string, error)
}

type MailMessage struct {
	To        string
	Subject   string
	Body      string
	Variables map[string]string
}

// Mailer sends one message; consumed only by the invitation-email flow.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// RequestMeta is HTTP transport metadata passed through opaquely into audit
// events.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
