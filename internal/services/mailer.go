package services

import (
	"context"
	"net/url"

	"github.com/sirupsen/logrus"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// LogMailer writes reset links to the log instead of sending mail. Delivery
// belongs to whatever relay sits in front of it in production.
type LogMailer struct {
	Logger *logrus.Logger
}

// SendPasswordReset logs the request with the token redacted; the usable link
// is only written at debug level.
func (m LogMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	entry := m.Logger.WithField("email", email)
	entry.WithField("link", redactToken(link)).Info("password reset requested")
	entry.WithField("link", link).Debug("password reset link")
	return nil
}

func redactToken(link string) string {
	u, err := url.Parse(link)
	if err != nil || !u.Query().Has("token") {
		return "REDACTED"
	}
	q := u.Query()
	q.Set("token", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}

func resetLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" {
		return base + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
