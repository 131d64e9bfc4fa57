package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
	"k8s.io/utils/clock"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrInvalidSession     = errors.New("invalid session")
	ErrInvalidUser        = errors.New("username, password and a valid role are required")
)

const maxLoginAttempts = 5

// Session represents an active user session.
type Session struct {
	UserID    string
	Role      domain.Role
	ExpiresAt time.Time
}

// AuthService implements ports.AuthService with in-memory sessions.
// The user's ID is the ownerId for everything the engine stores.
type AuthService struct {
	repo          ports.UserRepository
	clock         clock.Clock
	sessions      map[string]Session
	loginAttempts map[string]int
	mu            sync.RWMutex
	sessionTTL    time.Duration
}

// NewAuthService creates a new authentication service instance.
func NewAuthService(repo ports.UserRepository, clk clock.Clock) *AuthService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &AuthService{
		repo:          repo,
		clock:         clk,
		sessions:      make(map[string]Session),
		loginAttempts: make(map[string]int),
		sessionTTL:    24 * time.Hour,
	}
}

// Login validates user credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if err := s.checkRateLimit(creds.Username); err != nil {
		return "", err
	}

	user, err := s.repo.GetByUsername(ctx, creds.Username)
	if err != nil {
		s.incrementAttempts(creds.Username)
		return "", ErrInvalidCredentials // generic to avoid enumeration
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.incrementAttempts(creds.Username)
		return "", ErrInvalidCredentials
	}

	s.resetAttempts(creds.Username)
	return s.createSession(user), nil
}

// ValidateToken verifies a session token and returns the associated user.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.Logout(ctx, token)
		return nil, ErrTokenExpired
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// Logout invalidates a session token.
func (s *AuthService) Logout(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// CreateUser provisions a user with a hashed password.
func (s *AuthService) CreateUser(ctx context.Context, user domain.User, password string) error {
	if strings.TrimSpace(user.Username) == "" || password == "" || !user.Role.IsValid() {
		return ErrInvalidUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.CreatedAt = s.clock.Now()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	return s.repo.SaveUser(ctx, user)
}

// EnsureUser creates the user unless the username is already taken.
func (s *AuthService) EnsureUser(ctx context.Context, user domain.User, password string) (bool, error) {
	_, err := s.repo.GetByUsername(ctx, user.Username)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ports.ErrUserNotFound):
		return false, fmt.Errorf("lookup user %q: %w", user.Username, err)
	}
	if err := s.CreateUser(ctx, user, password); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) checkRateLimit(username string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loginAttempts[username] >= maxLoginAttempts {
		return ErrRateLimitExceeded
	}
	return nil
}

func (s *AuthService) incrementAttempts(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginAttempts[username]++
}

func (s *AuthService) resetAttempts(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loginAttempts, username)
}

func (s *AuthService) createSession(user *domain.User) string {
	token := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = Session{
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: s.clock.Now().Add(s.sessionTTL),
	}
	return token
}
