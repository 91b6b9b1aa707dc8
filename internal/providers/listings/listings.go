package listings

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	DefaultWhat  = "developer"
	DefaultWhere = "new york"
	PageSize     = 20
)

// Query is what the proxy forwards upstream. What and Where fall back to the
// defaults above; zero-valued filters are not sent.
type Query struct {
	What  string
	Where string

	SalaryMin    int
	SalaryMax    int
	FullTime     bool
	Permanent    bool
	SortBy       string
	ExcludeQuery string
	Category     string
	MaxDaysOld   int
	Page         int
}

// Result carries the upstream payload untouched.
type Result struct {
	Status int
	Body   json.RawMessage
}

// UpstreamError is a non-2xx answer from the listings API.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("listings api responded with status %d", e.Status)
}

// Details returns the upstream body as JSON when it is JSON, else as text.
func (e *UpstreamError) Details() any {
	if len(e.Body) > 0 && json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	return string(e.Body)
}

type Provider interface {
	Search(ctx context.Context, q Query) (*Result, error)
}
