package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/jobbo/internal/cache"
	"github.com/yoockh/jobbo/internal/live"
	"github.com/yoockh/jobbo/internal/models"
	"github.com/yoockh/jobbo/internal/providers/identity"
	pgrepo "github.com/yoockh/jobbo/internal/repositories/postgres"
	"github.com/yoockh/jobbo/internal/security"
	"github.com/yoockh/jobbo/internal/utils"
	"gorm.io/datatypes"
)

const DefaultResetTTL = time.Hour

type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      models.Identity `json:"user"`
}

// AuthService is the identity provider: it owns accounts, issues identity
// tokens and announces every identity change on the live auth topic.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error)
	Logout(ctx context.Context, claims *security.Claims) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context, userID string) (*models.Identity, error)
	UpdateProfile(ctx context.Context, userID string, upd models.IdentityUpdate) (*models.Identity, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthConfig struct {
	ResetTTL     time.Duration
	ResetLinkURL string
}

type authService struct {
	users  pgrepo.UserRepository
	tokens *security.TokenIssuer
	google identity.Verifier
	cache  cache.Cache
	mailer Mailer
	pub    live.Publisher
	cfg    AuthConfig
	now    func() time.Time
}

func NewAuthService(
	users pgrepo.UserRepository,
	tokens *security.TokenIssuer,
	google identity.Verifier,
	c cache.Cache,
	mailer Mailer,
	pub live.Publisher,
	cfg AuthConfig,
) AuthService {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultResetTTL
	}
	return &authService{
		users:  users,
		tokens: tokens,
		google: google,
		cache:  c,
		mailer: mailer,
		pub:    pub,
		cfg:    cfg,
		now:    time.Now,
	}
}

type resetTicket struct {
	UserID string `json:"user_id"`
}

func revokedKey(tokenID string) string { return "revoked:" + tokenID }
func resetKey(token string) string     { return "pwreset:" + token }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *authService) Register(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	const op = "AuthService.Register"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}
	if len(password) < utils.MinPasswordLength {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Password should be at least 6 characters", nil)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	now := s.now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		Providers:    []string{models.ProviderPassword},
		Role:         models.RoleUser,
		CreatedAt:    now,
		LastSignInAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "The email address is already in use by another account.", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create account", err)
	}
	return s.signIn(ctx, op, u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	const op = "AuthService.Login"

	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, models.MsgLoginFailed, nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load account", err)
	}
	if u.PasswordHash == "" || utils.CheckPassword(u.PasswordHash, password) != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, models.MsgLoginFailed, nil)
	}

	u.LastSignInAt = s.now().UTC()
	if err := s.users.Save(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update account", err)
	}
	return s.signIn(ctx, op, u)
}

func (s *authService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	const op = "AuthService.LoginWithGoogle"

	if strings.TrimSpace(idToken) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "id_token is required", nil)
	}
	if s.google == nil {
		return nil, utils.E(utils.CodeUnavailable, op, models.MsgGoogleLoginFailed, nil)
	}
	fc, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, models.MsgGoogleLoginFailed, err)
	}

	u, err := s.findFederated(ctx, fc)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, models.MsgGoogleLoginFailed, err)
	}

	now := s.now().UTC()
	raw, _ := json.Marshal(fc.Raw)
	u.ProviderData = datatypes.JSON(raw)
	u.LastSignInAt = now
	if u.DisplayName == "" {
		u.DisplayName = fc.Name
	}
	if u.PhotoURL == "" {
		u.PhotoURL = fc.Picture
	}
	if !u.HasProvider(models.ProviderGoogle) {
		u.Providers = append(u.Providers, models.ProviderGoogle)
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
		err = s.users.Create(ctx, u)
	} else {
		err = s.users.Save(ctx, u)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, models.MsgGoogleLoginFailed, err)
	}
	return s.signIn(ctx, op, u)
}

// findFederated resolves the account for a federated sign-in: by subject
// first, then by verified email (linking), else a new unsaved user.
func (s *authService) findFederated(ctx context.Context, fc *identity.FederatedClaims) (*models.User, error) {
	u, err := s.users.GetByGoogleSubject(ctx, fc.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	sub := fc.Subject
	if fc.Email != "" && fc.EmailVerified {
		u, err = s.users.GetByEmail(ctx, normalizeEmail(fc.Email))
		if err == nil {
			u.GoogleSubject = &sub
			return u, nil
		}
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, err
		}
	}
	return &models.User{
		ID:            uuid.NewString(),
		Email:         normalizeEmail(fc.Email),
		GoogleSubject: &sub,
		Role:          models.RoleUser,
	}, nil
}

func (s *authService) signIn(ctx context.Context, op string, u *models.User) (*AuthResult, error) {
	raw, claims, err := s.tokens.Issue(u)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	_ = s.pub.Publish(ctx, u.ID, live.TopicAuth, "login")
	return &AuthResult{
		Token:     raw,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      u.Identity(),
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *security.Claims) error {
	const op = "AuthService.Logout"

	if claims == nil || claims.ID == "" {
		return utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(s.now()); left > 0 {
			ttl = left
		}
	}
	if err := s.cache.SetJSON(ctx, revokedKey(claims.ID), true, ttl); err != nil {
		return utils.E(utils.CodeUnavailable, op, models.MsgLogoutFailed, err)
	}
	_ = s.pub.Publish(ctx, claims.Subject, live.TopicAuth, "logout")
	return nil
}

func (s *authService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	hit, err := s.cache.GetJSON(ctx, revokedKey(tokenID), &revoked)
	if err != nil {
		return false, err
	}
	return hit && revoked, nil
}

// RequestPasswordReset returns nil for unknown addresses too.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "AuthService.RequestPasswordReset"

	email = normalizeEmail(email)
	if email == "" {
		return utils.E(utils.CodeInvalidArgument, op, "email is required", nil)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, utils.ErrNotFound) {
		return nil
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, models.MsgResetFailed, err)
	}

	token := uuid.NewString()
	if err := s.cache.SetJSON(ctx, resetKey(token), resetTicket{UserID: u.ID}, s.cfg.ResetTTL); err != nil {
		return utils.E(utils.CodeUnavailable, op, models.MsgResetFailed, err)
	}
	if err := s.mailer.SendPasswordReset(ctx, u.Email, resetLink(s.cfg.ResetLinkURL, token)); err != nil {
		_ = s.cache.Del(ctx, resetKey(token))
		return utils.E(utils.CodeUnavailable, op, models.MsgResetFailed, err)
	}
	return nil
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	const op = "AuthService.ConfirmPasswordReset"

	if token == "" {
		return utils.E(utils.CodeInvalidArgument, op, "token is required", nil)
	}
	if len(newPassword) < utils.MinPasswordLength {
		return utils.E(utils.CodeInvalidArgument, op, "Password should be at least 6 characters", nil)
	}

	var t resetTicket
	hit, err := s.cache.TakeJSON(ctx, resetKey(token), &t)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to read reset token", err)
	}
	if !hit {
		return utils.E(utils.CodeInvalidArgument, op, "reset link is invalid or has expired", nil)
	}

	u, err := s.users.GetByID(ctx, t.UserID)
	if err != nil {
		return utils.E(utils.CodeNotFound, op, "account not found", err)
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}
	u.PasswordHash = hash
	if !u.HasProvider(models.ProviderPassword) {
		u.Providers = append(u.Providers, models.ProviderPassword)
	}
	if err := s.users.Save(ctx, u); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update password", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*models.Identity, error) {
	const op = "AuthService.Me"

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "account no longer exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load account", err)
	}
	id := u.Identity()
	return &id, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, upd models.IdentityUpdate) (*models.Identity, error) {
	const op = "AuthService.UpdateProfile"

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "account no longer exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, models.MsgProfileFailed, err)
	}
	if upd.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*upd.DisplayName)
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = strings.TrimSpace(*upd.PhotoURL)
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, models.MsgProfileFailed, err)
	}
	_ = s.pub.Publish(ctx, userID, live.TopicAuth, "update")
	id := u.Identity()
	return &id, nil
}
