package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const DefaultPort = "5001"

// AppConfig is everything the HTTP service reads from the environment apart
// from the database connections, which the Init* functions own.
type AppConfig struct {
	Port string

	AdzunaBaseURL string
	AdzunaCountry string
	AdzunaAppID   string
	AdzunaAppKey  string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	GoogleClientID string

	CORSOrigins []string

	PasswordResetTTL time.Duration
	ResetLinkURL     string

	// Reset mail goes through Gmail when a credentials file is set, and to
	// the log otherwise.
	GmailCredentialsFile string
	GmailTokenFile       string
	MailFrom             string
}

// LoadApp reads and validates AppConfig. Missing listings credentials or
// signing secret fail fast.
func LoadApp() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           getenv("PORT", DefaultPort),
		AdzunaBaseURL:  os.Getenv("ADZUNA_BASE_URL"),
		AdzunaCountry:  getenv("ADZUNA_COUNTRY", "gb"),
		AdzunaAppID:    os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:   os.Getenv("ADZUNA_APP_KEY"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      getenv("JWT_ISSUER", "jobbo"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		ResetLinkURL:   getenv("RESET_LINK_URL", "http://localhost:3000/reset-password"),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),

		GmailCredentialsFile: os.Getenv("GMAIL_CREDENTIALS_FILE"),
		GmailTokenFile:       getenv("GMAIL_TOKEN_FILE", "token.json"),
		MailFrom:             os.Getenv("MAIL_FROM"),
	}

	if cfg.AdzunaAppID == "" || cfg.AdzunaAppKey == "" {
		return nil, fmt.Errorf("ADZUNA_APP_ID and ADZUNA_APP_KEY are required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	if cfg.JWTTTL, err = durationEnv("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PasswordResetTTL, err = durationEnv("PASSWORD_RESET_TTL", time.Hour); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
