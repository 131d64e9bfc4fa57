package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"gorm.io/gorm"
)

var _ ports.UserRepository = (*SQLiteAdapter)(nil)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = ports.ErrUserNotFound

// UserModel is the GORM model for users.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null"`
	CreatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

// SaveUser creates or updates a user.
func (a *SQLiteAdapter) SaveUser(ctx context.Context, user domain.User) error {
	model := toUserModel(user)
	return a.db.WithContext(ctx).Save(&model).Error
}

// GetByUsername retrieves a user by their username.
func (a *SQLiteAdapter) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model UserModel
	if err := a.db.WithContext(ctx).Where("username = ?", username).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(model), nil
}

// GetUserByID retrieves a user by their ID.
func (a *SQLiteAdapter) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var model UserModel
	if err := a.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toDomainUser(model), nil
}
