// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("magicsessions/auth")

// Acknowledgement messages.
const (
	MsgRegistered         = "Registration successful. Please check your email to verify your account."
	MsgLoggedOut          = "Logged out successfully"
	MsgLoggedOutAll       = "All sessions revoked"
	MsgEmailVerified      = "Email verified successfully"
	MsgVerificationResent = "If the account exists and is unverified, a new verification email has been sent."
)

// dummyPasswordHash is verified when the email is unknown so the response
// time matches a real password check. It matches no password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Service is the authentication orchestrator. It holds no state between
// calls; everything lives in the repositories.
type Service struct {
	users         UserRepository
	refreshTokens RefreshTokenRepository
	verifications VerificationTokenRepository
	hasher        PasswordHasher
	issuer        TokenIssuer
	notifier      Notifier
	metrics       MetricsRecorder
	lockout       LockoutPolicy
	blocklist     *EmailDomainBlocklist
	logger        *slog.Logger
	now           func() time.Time
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithLogger sets the logger. Passing nil makes NewService fail.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithNotifier sets the notifier used for verification emails.
// Defaults to a LogNotifier.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithMetrics sets the metrics recorder. Defaults to a no-op recorder.
func WithMetrics(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLockoutPolicy overrides the default lockout policy.
func WithLockoutPolicy(p LockoutPolicy) ServiceOption {
	return func(s *Service) {
		s.lockout = p
	}
}

// WithEmailDomainBlocklist rejects registrations from matching domains.
func WithEmailDomainBlocklist(b *EmailDomainBlocklist) ServiceOption {
	return func(s *Service) {
		s.blocklist = b
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service. Returns an error if any dependency is nil.
func NewService(
	users UserRepository,
	refreshTokens RefreshTokenRepository,
	verifications VerificationTokenRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	opts ...ServiceOption,
) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("users repository is required")
	}
	if refreshTokens == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("refresh token repository is required")
	}
	if verifications == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("verification token repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("password hasher is required")
	}
	if issuer == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("token issuer is required")
	}

	s := &Service{
		users:         users,
		refreshTokens: refreshTokens,
		verifications: verifications,
		hasher:        hasher,
		issuer:        issuer,
		metrics:       nopRecorder{},
		lockout:       DefaultLockoutPolicy(),
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("logger is required")
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.logger)
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s, nil
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterResult describes a newly created account.
type RegisterResult struct {
	ID      ulid.ULID `json:"id"`
	Email   string    `json:"email"`
	Message string    `json:"message"`
}

// LoginInput carries credentials plus caller-supplied request metadata.
type LoginInput struct {
	Email      string
	Password   string
	IPAddress  string
	DeviceInfo string
}

// AuthResult is returned by Login and Refresh.
type AuthResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	User         UserSummary `json:"user"`
}

// Ack is a plain acknowledgement.
type Ack struct {
	Message string `json:"message"`
}

// CurrentUser is the identity derived from validated access token claims.
type CurrentUser struct {
	ID            ulid.ULID `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	EmailVerified bool      `json:"emailVerified"`
}

// Register creates an unverified account and issues a verification token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (result *RegisterResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer func() { s.finish(span, "register", err) }()

	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("email is required")
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check email exists").
			Wrap(err)
	}
	if exists {
		return nil, oops.Code(CodeDuplicateEmail).Errorf("email already registered")
	}

	if err := ValidatePasswordStrength(in.Password); err != nil {
		return nil, err
	}

	if blocked, pattern := s.blocklist.Blocked(email); blocked {
		return nil, oops.Code(CodeEmailDomainBlocked).
			With("pattern", pattern).
			Errorf("email domain is not allowed")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if KindOf(err) == KindValidation {
			return nil, err
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash, in.FirstName, in.LastName)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code(CodeDuplicateEmail).Errorf("email already registered")
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	if err := s.issueVerificationToken(ctx, user); err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "issue verification token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())

	return &RegisterResult{ID: user.ID, Email: user.Email, Message: MsgRegistered}, nil
}

// Login authenticates credentials and issues an access/refresh token pair.
// Checks run in order: lookup, lock, password, verification, active flag.
func (s *Service) Login(ctx context.Context, in LoginInput) (result *AuthResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer func() { s.finish(span, "login", err) }()

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.Verify(in.Password, dummyPasswordHash)
			s.logger.WarnContext(ctx, "login attempt for unknown email")
			return nil, invalidCredentials()
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	now := s.now()
	if user.IsLockedAt(now) {
		s.logger.WarnContext(ctx, "login attempt on locked account", "user_id", user.ID.String())
		return nil, oops.Code(CodeAccountLocked).
			With("locked_until", *user.LockedUntil).
			Errorf("account is temporarily locked, please try again later")
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		if err := s.recordFailedLogin(ctx, user, now); err != nil {
			return nil, err
		}
		return nil, invalidCredentials()
	}

	if !user.EmailVerified {
		return nil, oops.Code(CodeEmailNotVerified).
			Errorf("please verify your email address before logging in")
	}
	if !user.Active {
		return nil, oops.Code(CodeAccountDisabled).Errorf("user account is disabled")
	}

	if err := s.users.ResetFailedLogins(ctx, user.ID); err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "reset failed logins").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil

	loginAt := now.UTC()
	if err := s.users.RecordLogin(ctx, user.ID, loginAt); err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "record login").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	user.LastLoginAt = &loginAt

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradePasswordHash(ctx, user, in.Password)
	}

	result, err = s.issueTokens(ctx, user, in.IPAddress, in.DeviceInfo)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue tokens").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID.String())
	return result, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new access/refresh pair is issued with the same ip/device metadata.
func (s *Service) Refresh(ctx context.Context, rawToken string) (result *AuthResult, err error) {
	ctx, span := tracer.Start(ctx, "auth.refresh")
	defer func() { s.finish(span, "refresh", err) }()

	if strings.TrimSpace(rawToken) == "" {
		return nil, invalidRefreshToken()
	}

	token, owner, err := s.refreshTokens.GetByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "unknown refresh token presented")
			return nil, invalidRefreshToken()
		}
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "get refresh token").
			Wrap(err)
	}
	span.SetAttributes(attribute.String("user.id", owner.ID.String()))

	if !token.IsActiveAt(s.now()) {
		s.logger.WarnContext(ctx, "inactive refresh token presented",
			"user_id", owner.ID.String(),
			"token_id", token.ID.String(),
			"revoked", token.Revoked)
		return nil, invalidRefreshToken()
	}

	if !owner.Active {
		return nil, oops.Code(CodeAccountDisabled).Errorf("user account is disabled")
	}

	revoked, err := s.refreshTokens.RevokeIfActive(ctx, token.ID)
	if err != nil {
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "revoke refresh token").
			With("token_id", token.ID.String()).
			Wrap(err)
	}
	if !revoked {
		s.logger.WarnContext(ctx, "refresh token rotated concurrently",
			"user_id", owner.ID.String(),
			"token_id", token.ID.String())
		return nil, invalidRefreshToken()
	}

	result, err = s.issueTokens(ctx, owner, token.IPAddress, token.DeviceInfo)
	if err != nil {
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "issue tokens").
			With("user_id", owner.ID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "token refreshed", "user_id", owner.ID.String())
	return result, nil
}

// Logout revokes the refresh token. Unknown and already revoked tokens
// succeed.
func (s *Service) Logout(ctx context.Context, rawToken string) (ack *Ack, err error) {
	ctx, span := tracer.Start(ctx, "auth.logout")
	defer func() { s.finish(span, "logout", err) }()

	if strings.TrimSpace(rawToken) == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("refresh token is required")
	}

	if err := s.refreshTokens.RevokeByTokenHash(ctx, HashToken(rawToken)); err != nil {
		return nil, oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "revoke refresh token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user logged out")
	return &Ack{Message: MsgLoggedOut}, nil
}

// LogoutAll revokes every refresh token of a user and returns the count.
func (s *Service) LogoutAll(ctx context.Context, userID ulid.ULID) (revoked int64, err error) {
	ctx, span := tracer.Start(ctx, "auth.logout_all",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer func() { s.finish(span, "logout_all", err) }()

	revoked, err = s.refreshTokens.RevokeAllByUser(ctx, userID)
	if err != nil {
		return 0, oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "revoke all refresh tokens").
			With("user_id", userID.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "all sessions revoked", "user_id", userID.String(), "count", revoked)
	return revoked, nil
}

// Sessions lists the active refresh tokens of a user, newest first.
func (s *Service) Sessions(ctx context.Context, userID ulid.ULID) ([]SessionInfo, error) {
	tokens, err := s.refreshTokens.ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("AUTH_SESSIONS_FAILED").
			With("operation", "list refresh tokens").
			With("user_id", userID.String()).
			Wrap(err)
	}

	now := s.now()
	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsActiveAt(now) {
			continue
		}
		sessions = append(sessions, SessionInfo{
			ID:         t.ID,
			CreatedAt:  t.CreatedAt,
			ExpiresAt:  t.ExpiresAt,
			IPAddress:  t.IPAddress,
			DeviceInfo: t.DeviceInfo,
		})
	}
	return sessions, nil
}

// VerifyEmail consumes a verification token and marks its owner verified.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) (ack *Ack, err error) {
	ctx, span := tracer.Start(ctx, "auth.verify_email")
	defer func() { s.finish(span, "verify_email", err) }()

	if strings.TrimSpace(rawToken) == "" {
		return nil, invalidVerificationToken()
	}

	token, owner, err := s.verifications.GetByToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidVerificationToken()
		}
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "get verification token").
			Wrap(err)
	}
	if token.IsExpiredAt(s.now()) {
		return nil, invalidVerificationToken()
	}

	if err := s.users.MarkEmailVerified(ctx, owner.ID); err != nil {
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "mark email verified").
			With("user_id", owner.ID.String()).
			Wrap(err)
	}

	if err := s.verifications.Delete(ctx, token.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete consumed verification token",
			"user_id", owner.ID.String(),
			"token_id", token.ID.String(),
			"error", err)
	}

	s.logger.InfoContext(ctx, "email verified", "user_id", owner.ID.String())
	return &Ack{Message: MsgEmailVerified}, nil
}

// ResendVerification issues a fresh verification token for an unverified
// account. The answer is the same whether or not the account exists.
func (s *Service) ResendVerification(ctx context.Context, email string) (ack *Ack, err error) {
	ctx, span := tracer.Start(ctx, "auth.resend_verification")
	defer func() { s.finish(span, "resend_verification", err) }()

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Ack{Message: MsgVerificationResent}, nil
		}
		return nil, oops.Code("AUTH_RESEND_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	if user.EmailVerified {
		return &Ack{Message: MsgVerificationResent}, nil
	}

	if err := s.issueVerificationToken(ctx, user); err != nil {
		return nil, oops.Code("AUTH_RESEND_FAILED").
			With("operation", "issue verification token").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return &Ack{Message: MsgVerificationResent}, nil
}

// CurrentUser builds the caller identity from validated claims.
func (s *Service) CurrentUser(claims *Claims) (*CurrentUser, error) {
	if claims == nil {
		return nil, oops.Code(CodeUnauthenticated).Errorf("authentication required")
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return &CurrentUser{
		ID:            id,
		Email:         claims.Email,
		FirstName:     claims.GivenName,
		LastName:      claims.FamilyName,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// upgradePasswordHash rehashes a legacy digest. The write only applies if
// the stored hash is still the one that was verified, so a password changed
// in the meantime is never overwritten. Failures are logged, not returned.
func (s *Service) upgradePasswordHash(ctx context.Context, user *User, password string) {
	upgraded, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID.String(), "error", err)
		return
	}
	replaced, err := s.users.ReplacePasswordHash(ctx, user.ID, user.PasswordHash, upgraded)
	if err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID.String(), "error", err)
		return
	}
	if replaced {
		user.PasswordHash = upgraded
	}
}

// recordFailedLogin increments the failure counter and locks the account
// once the post-increment count reaches the threshold.
func (s *Service) recordFailedLogin(ctx context.Context, user *User, now time.Time) error {
	failures, err := s.users.IncrementFailedLogins(ctx, user.ID)
	if err != nil {
		return oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "increment failed logins").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	if s.lockout.ShouldLock(failures) {
		until := s.lockout.LockUntil(now).UTC()
		if err := s.users.LockUntil(ctx, user.ID, until); err != nil {
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "lock user").
				With("user_id", user.ID.String()).
				Wrap(err)
		}
		s.metrics.RecordLockout()
		s.logger.WarnContext(ctx, "account locked due to failed attempts",
			"user_id", user.ID.String(),
			"failures", failures,
			"locked_until", until)
	}

	s.logger.WarnContext(ctx, "failed login attempt", "user_id", user.ID.String(), "failures", failures)
	return nil
}

// issueVerificationToken replaces any existing verification tokens for the
// user with a fresh one and hands it to the notifier.
func (s *Service) issueVerificationToken(ctx context.Context, user *User) error {
	if err := s.verifications.DeleteByUser(ctx, user.ID); err != nil {
		return oops.With("operation", "delete stale verification tokens").Wrap(err)
	}

	raw, err := GenerateSecureToken(DefaultTokenBytes)
	if err != nil {
		return err
	}

	token, err := NewEmailVerificationToken(user.ID, raw, s.now().Add(VerificationTokenExpiry).UTC())
	if err != nil {
		return err
	}
	if err := s.verifications.Create(ctx, token); err != nil {
		return oops.With("operation", "create verification token").Wrap(err)
	}

	if err := s.notifier.SendVerification(ctx, user, raw, token.ExpiresAt); err != nil {
		s.logger.WarnContext(ctx, "verification notification failed",
			"user_id", user.ID.String(),
			"error", err)
	}
	return nil
}

// issueTokens mints an access token and a refresh token and persists the
// refresh token hash.
func (s *Service) issueTokens(ctx context.Context, user *User, ipAddress, deviceInfo string) (*AuthResult, error) {
	access, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	raw, err := s.issuer.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	token, err := NewRefreshToken(user.ID, HashToken(raw), s.issuer.RefreshTokenExpiry().UTC(), ipAddress, deviceInfo)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokens.Create(ctx, token); err != nil {
		return nil, oops.With("operation", "persist refresh token").Wrap(err)
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    s.issuer.AccessTokenExpiry().UTC(),
		User:         user.Summary(),
	}, nil
}

// finish records the outcome of an operation on its span and in metrics.
func (s *Service) finish(span trace.Span, operation string, err error) {
	if err != nil {
		reason := ErrorCode(err)
		if reason == "" {
			reason = "internal"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		s.metrics.RecordAuth(operation, OutcomeFailure, reason)
	} else {
		s.metrics.RecordAuth(operation, OutcomeSuccess, "")
	}
	span.End()
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid credentials")
}

func invalidRefreshToken() error {
	return oops.Code(CodeInvalidRefreshToken).Errorf("invalid refresh token")
}

func invalidVerificationToken() error {
	return oops.Code(CodeInvalidOrExpiredToken).Errorf("invalid or expired verification token")
}
