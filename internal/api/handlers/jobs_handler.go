package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/jobbo/internal/providers/listings"
)

const fetchJobsFailed = "Failed to fetch jobs"

// JobsHandler is the listings proxy. Every path ends in an HTTP response; the
// error body is always {"error", "details"}.
type JobsHandler struct {
	provider listings.Provider
	now      func() time.Time
}

func NewJobsHandler(p listings.Provider) *JobsHandler {
	return &JobsHandler{provider: p, now: time.Now}
}

type proxyError struct {
	Error   string `json:"error"`
	Details any    `json:"details"`
}

func (h *JobsHandler) Search(c *gin.Context) {
	q := parseListingsQuery(c)

	res, err := h.provider.Search(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		var ue *listings.UpstreamError
		if errors.As(err, &ue) {
			c.JSON(proxyStatus(ue.Status), proxyError{Error: fetchJobsFailed, Details: ue.Details()})
			return
		}
		c.JSON(http.StatusInternalServerError, proxyError{Error: fetchJobsFailed, Details: err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", res.Body)
}

func (h *JobsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

// proxyStatus mirrors upstream error statuses. Anything below 400 cannot
// carry the error body, so it becomes 502.
func proxyStatus(upstream int) int {
	if upstream < http.StatusBadRequest {
		return http.StatusBadGateway
	}
	return upstream
}

// parseListingsQuery reads the search filters. A numeric filter that is not a
// non-negative integer is dropped.
func parseListingsQuery(c *gin.Context) listings.Query {
	q := listings.Query{
		What:         c.Query("what"),
		Where:        c.Query("where"),
		SortBy:       c.Query("sortBy"),
		ExcludeQuery: c.Query("excludeQuery"),
		Category:     c.Query("category"),
		FullTime:     truthy(c.Query("fullTime")),
		Permanent:    truthy(c.Query("permanent")),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"salaryMin", &q.SalaryMin},
		{"salaryMax", &q.SalaryMax},
		{"maxDaysOld", &q.MaxDaysOld},
		{"page", &q.Page},
	}
	for _, p := range ints {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			*p.dst = v
		}
	}
	return q
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
