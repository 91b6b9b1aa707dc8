package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/jobbo/internal/models"
)

const defaultSearchError = "Failed to fetch jobs"

// SearchParams are the filters a user can set. Zero values are not sent.
type SearchParams struct {
	Query          string
	Location       string
	SalaryMin      int
	SalaryMax      int
	FullTime       bool
	Permanent      bool
	SortBy         string
	ResultsPerPage int
	Page           int
	ExcludeQuery   string
	Category       string
	MaxDaysOld     int
}

// Values renames the present parameters to their wire names.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	str := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	num := func(k string, n int) {
		if n > 0 {
			v.Set(k, strconv.Itoa(n))
		}
	}
	flag := func(k string, b bool) {
		if b {
			v.Set(k, "true")
		}
	}

	str("what", p.Query)
	str("where", p.Location)
	num("salaryMin", p.SalaryMin)
	num("salaryMax", p.SalaryMax)
	flag("fullTime", p.FullTime)
	flag("permanent", p.Permanent)
	str("sortBy", p.SortBy)
	num("resultsPerPage", p.ResultsPerPage)
	num("page", p.Page)
	str("excludeQuery", p.ExcludeQuery)
	str("category", p.Category)
	num("maxDaysOld", p.MaxDaysOld)
	return v
}

// SearchError is the only error SearchJobs returns for a failed search,
// whatever went wrong.
type SearchError struct {
	Status  int
	Message string
	Err     error
}

func (e *SearchError) Error() string { return e.Message }
func (e *SearchError) Unwrap() error { return e.Err }

func (c *Client) SearchJobs(ctx context.Context, p SearchParams) (*models.ListingsResult, error) {
	target := c.baseURL + "/api/jobs"
	if q := p.Values().Encode(); q != "" {
		target += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &SearchError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	c.log.WithField("url", target).Debug("searching jobs")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &SearchError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SearchError{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, searchFailure(resp.StatusCode, raw)
	}

	var out models.ListingsResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &SearchError{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	c.log.WithFields(logrus.Fields{"count": out.Count, "results": len(out.Results)}).Debug("search done")
	return &out, nil
}

// searchFailure builds "<error>: <details as JSON>" from the proxy's error
// body, or the default message when the body says nothing useful.
func searchFailure(status int, raw []byte) *SearchError {
	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	_ = json.Unmarshal(raw, &body)

	msg := body.Error
	if msg == "" {
		msg = defaultSearchError
	}
	if d := body.Details; len(d) > 0 && string(d) != "null" && string(d) != `""` {
		msg += ": " + compactJSON(d)
	}
	return &SearchError{Status: status, Message: msg}
}

func compactJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(b)
}
