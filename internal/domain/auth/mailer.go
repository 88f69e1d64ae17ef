package auth

import (
	"context"
	"log"
	"net/url"
)

// Mailer delivers one-time auth links.
type Mailer interface {
	SendAuthLink(ctx context.Context, email string, purpose TokenPurpose, link string) error
}

// DevConsoleMailer prints links to the process log instead of sending mail.
type DevConsoleMailer struct {
	enabled bool
}

func NewDevConsoleMailer(enabled bool) *DevConsoleMailer {
	return &DevConsoleMailer{enabled: enabled}
}

func (m *DevConsoleMailer) SendAuthLink(_ context.Context, email string, purpose TokenPurpose, link string) error {
	if m.enabled {
		log.Printf("[DEV-EMAIL] auth link purpose=%s email=%s link=%s", purpose, email, link)
	}
	return nil
}

// linkPath maps a purpose to the client route that consumes it.
func linkPath(purpose TokenPurpose) string {
	switch purpose {
	case PurposeRecovery:
		return "/reset-password"
	case PurposeInvite:
		return "/auth/invite"
	default:
		return "/auth/confirm"
	}
}

func buildLink(baseURL string, purpose TokenPurpose, raw string) string {
	q := url.Values{}
	q.Set("token", raw)
	q.Set("type", string(purpose))
	return baseURL + linkPath(purpose) + "?" + q.Encode()
}
