package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/jobbo/internal/models"
	"github.com/yoockh/jobbo/internal/security"
)

type staticRevocations map[string]bool

func (s staticRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	return s[id], nil
}

type denyAll struct{}

func (denyAll) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	return false
}

func newAuthRouter(tokens *security.TokenIssuer, rev RevocationChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWTAuth(tokens, rev), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserID))
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	tokens := security.NewTokenIssuer("secret", "", time.Hour)
	good, claims, err := tokens.Issue(&models.User{ID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	revokedTok, revClaims, err := tokens.Issue(&models.User{ID: "u2"})
	if err != nil {
		t.Fatal(err)
	}
	r := newAuthRouter(tokens, staticRevocations{revClaims.ID: true})

	cases := []struct {
		name   string
		target string
		header string
		want   int
		body   string
	}{
		{"missing", "/me", "", http.StatusUnauthorized, ""},
		{"garbage", "/me", "Bearer nope", http.StatusUnauthorized, ""},
		{"header", "/me", "Bearer " + good, http.StatusOK, claims.Subject},
		{"query param", "/me?token=" + good, "", http.StatusOK, "u1"},
		{"revoked", "/me", "Bearer " + revokedTok, http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Errorf("%s: body = %q, want %q", tc.name, rec.Body.String(), tc.body)
		}
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimit(denyAll{}, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRedisLimiterNilFailsOpen(t *testing.T) {
	var l *RedisLimiter
	if !l.Allow(context.Background(), "k", 1, time.Second) {
		t.Fatal("nil limiter must allow")
	}
}
