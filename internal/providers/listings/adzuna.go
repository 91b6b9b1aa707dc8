package listings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultAdzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"
	DefaultAdzunaCountry = "gb"
	httpTimeout          = 15 * time.Second
)

type AdzunaConfig struct {
	BaseURL string
	Country string
	AppID   string
	AppKey  string
}

// Adzuna forwards searches to the Adzuna jobs API.
type Adzuna struct {
	cfg    AdzunaConfig
	client *http.Client
	log    *logrus.Logger
}

func NewAdzuna(cfg AdzunaConfig, client *http.Client, log *logrus.Logger) *Adzuna {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAdzunaBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Country == "" {
		cfg.Country = DefaultAdzunaCountry
	}
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Adzuna{cfg: cfg, client: client, log: log}
}

func (a *Adzuna) Search(ctx context.Context, q Query) (*Result, error) {
	endpoint := a.endpoint(q.Page)
	params := a.params(q)

	a.log.WithFields(logrus.Fields{
		"url":   endpoint,
		"what":  params.Get("what"),
		"where": params.Get("where"),
	}).Info("listings request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create listings request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send listings request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read listings response: %w", err)
	}

	a.log.WithField("status", resp.StatusCode).Debug("listings response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Warn("listings api error")
		return nil, &UpstreamError{Status: resp.StatusCode, Body: body}
	}
	return &Result{Status: resp.StatusCode, Body: body}, nil
}

func (a *Adzuna) endpoint(page int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("%s/%s/search/%d", a.cfg.BaseURL, url.PathEscape(a.cfg.Country), page)
}

func (a *Adzuna) params(q Query) url.Values {
	what := strings.TrimSpace(q.What)
	if what == "" {
		what = DefaultWhat
	}
	where := strings.TrimSpace(q.Where)
	if where == "" {
		where = DefaultWhere
	}

	v := url.Values{}
	v.Set("app_id", a.cfg.AppID)
	v.Set("app_key", a.cfg.AppKey)
	v.Set("results_per_page", strconv.Itoa(PageSize))
	v.Set("what", what)
	v.Set("where", where)

	if q.SalaryMin > 0 {
		v.Set("salary_min", strconv.Itoa(q.SalaryMin))
	}
	if q.SalaryMax > 0 {
		v.Set("salary_max", strconv.Itoa(q.SalaryMax))
	}
	if q.FullTime {
		v.Set("full_time", "1")
	}
	if q.Permanent {
		v.Set("permanent", "1")
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.ExcludeQuery != "" {
		v.Set("what_exclude", q.ExcludeQuery)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.MaxDaysOld > 0 {
		v.Set("max_days_old", strconv.Itoa(q.MaxDaysOld))
	}
	return v
}
