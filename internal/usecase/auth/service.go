// Package auth registers accounts and exchanges credentials for signed access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kailas-cloud/docinsight/internal/domain"
	domuser "github.com/kailas-cloud/docinsight/internal/domain/user"
	"github.com/kailas-cloud/docinsight/internal/logger"
)

// DefaultTokenTTL is the access token lifetime when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: incorrect email or password", domain.ErrUnauthorized)

// Service registers users and issues tokens.
type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// Option configures a Service.
type Option func(*Service)

// WithCost sets the bcrypt cost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock replaces time.Now for token timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an auth service. ttl <= 0 uses DefaultTokenTTL.
func New(users UserStore, secret []byte, ttl time.Duration, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &Service{
		users:  users,
		secret: secret,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("docinsight"), s.cost)
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Register creates an account and returns a token for it.
func (s *Service) Register(ctx context.Context, email, password string) (Token, error) {
	email = domuser.NormalizeEmail(email)
	if err := domuser.ValidateCredentials(email, password); err != nil {
		return Token{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Token{}, fmt.Errorf("hash password: %w", err)
	}

	u := domuser.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Token{}, err
	}

	logger.FromContext(ctx).Info("user registered", zap.String("user_id", u.ID))
	return s.issue(u.ID, u.Email)
}

// Login exchanges an email and password for a token.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	email = domuser.NormalizeEmail(email)
	if email == "" || password == "" {
		return Token{}, ErrInvalidCredentials
	}

	u, err := s.users.ByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return Token{}, ErrInvalidCredentials
	case err != nil:
		return Token{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.FromContext(ctx).Warn("login rejected", zap.String("user_id", u.ID))
		return Token{}, ErrInvalidCredentials
	}
	return s.issue(u.ID, u.Email)
}
