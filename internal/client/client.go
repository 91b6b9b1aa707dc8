// Package client talks to the jobbo HTTP service. It holds the per-process
// session state a front end needs: the current token, the signed-in identity,
// and live subscriptions for saved jobs and the profile.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/jobbo/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:5001"
	requestTimeout = 20 * time.Second
)

// ErrNotSignedIn is returned, without any network call, by operations that
// need an identity when there is none.
var ErrNotSignedIn = errors.New(models.MsgLoginToSave)

// APIError is a non-2xx answer from any endpoint other than the listings
// proxy.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("jobbo: http %d", e.Status)
	}
	return e.Message
}

type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
	tokens  TokenStore
	notify  Notifier
	log     *logrus.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithTokenStore(s TokenStore) Option   { return func(c *Client) { c.tokens = s } }
func WithNotifier(n Notifier) Option       { return func(c *Client) { c.notify = n } }
func WithLogger(l *logrus.Logger) Option   { return func(c *Client) { c.log = l } }

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		dialer:  websocket.DefaultDialer,
	}
	for _, o := range opts {
		o(c)
	}
	if c.tokens == nil {
		c.tokens = NewMemoryTokenStore("")
	}
	if c.notify == nil {
		c.notify = NopNotifier{}
	}
	if c.log == nil {
		c.log = logrus.New()
		c.log.SetOutput(io.Discard)
	}
	return c
}

func (c *Client) Tokens() TokenStore { return c.tokens }

func (c *Client) signedIn() bool { return c.tokens.Token() != "" }

// do sends one JSON request. A nil out discards the body; any non-2xx
// answer becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("jobbo request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := &APIError{Status: resp.StatusCode}
		var payload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			ae.Code = payload.Code
			ae.Message = payload.Message
		}
		return ae
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// messageOr returns the server-provided message for err, or fallback.
func messageOr(err error, fallback string) string {
	var ae *APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

func (c *Client) wsURL(path string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}
