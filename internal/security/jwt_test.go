package security

import (
	"testing"
	"time"

	"github.com/yoockh/jobbo/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewTokenIssuer("secret", "jobbo", time.Hour)
	u := &models.User{ID: "u-1", Email: "a@b.co", DisplayName: "Ann", Role: models.RoleUser}

	raw, claims, err := iss.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected token id")
	}

	got, err := iss.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Subject != "u-1" || got.Email != "a@b.co" || got.ID != claims.ID {
		t.Fatalf("unexpected claims %+v", got)
	}
}

func TestParseRejectsWrongSecretAndIssuer(t *testing.T) {
	u := &models.User{ID: "u-1"}
	raw, _, err := NewTokenIssuer("one", "jobbo", time.Hour).Issue(u)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenIssuer("two", "jobbo", time.Hour).Parse(raw); err == nil {
		t.Error("expected signature error")
	}
	if _, err := NewTokenIssuer("one", "other", time.Hour).Parse(raw); err == nil {
		t.Error("expected issuer error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewTokenIssuer("secret", "", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := iss.Issue(&models.User{ID: "u-1"})
	if err != nil {
		t.Fatal(err)
	}
	iss.now = time.Now
	if _, err := iss.Parse(raw); err == nil {
		t.Fatal("expected expiry error")
	}
}
