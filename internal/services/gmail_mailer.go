package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const resetSubject = "Reset your jobbo password"

// GmailMailer sends reset links through the Gmail API as the authorized
// account ("me").
type GmailMailer struct {
	svc  *gmail.Service
	from string
}

func NewGmailMailer(svc *gmail.Service, from string) *GmailMailer {
	return &GmailMailer{svc: svc, from: from}
}

// NewGmailService builds a send-only Gmail client from an OAuth client
// secret file and a previously authorized token file.
func NewGmailService(ctx context.Context, credentialsFile, tokenFile string) (*gmail.Service, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	f, err := os.Open(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read gmail token: %w", err)
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("parse gmail token: %w", err)
	}

	return gmail.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
}

func (m *GmailMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	raw, err := resetMessage(m.from, email, link)
	if err != nil {
		return err
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	_, err = m.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	return err
}

func resetMessage(from, to, link string) ([]byte, error) {
	if strings.ContainsAny(from+to, "\r\n") {
		return nil, errors.New("mail header contains a line break")
	}

	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", resetSubject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	fmt.Fprintf(&b, "Someone asked to reset the password for %s.\r\n\r\n", to)
	fmt.Fprintf(&b, "Open this link to choose a new one:\r\n%s\r\n\r\n", link)
	b.WriteString("If that was not you, ignore this message.\r\n")
	return []byte(b.String()), nil
}
