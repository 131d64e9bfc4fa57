package ports

import (
	"context"
	"errors"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

// AuthService resolves callers to owners.
type AuthService interface {
	// Login validates credentials and returns a session token.
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	// ValidateToken checks if a token is valid and returns the associated user.
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	// Logout invalidates a session token.
	Logout(ctx context.Context, token string) error
	// CreateUser registers a new user.
	CreateUser(ctx context.Context, user domain.User, password string) error
}

// ErrUserNotFound is returned by a UserRepository when no user matches.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the persistence layer for users.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}
