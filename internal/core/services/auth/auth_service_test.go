package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lcalzada-xor/iotsec/internal/core/domain"
	"github.com/lcalzada-xor/iotsec/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	clocktesting "k8s.io/utils/clock/testing"
)

// MockUserRepository implements ports.UserRepository for testing.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           "u-1",
		Username:     "admin",
		PasswordHash: string(hashed),
		Role:         domain.RoleAdmin,
	}
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo, nil)
	ctx := context.Background()
	user := testUser(t, "secret123")

	mockRepo.On("GetByUsername", ctx, "admin").Return(user, nil)
	token, err := svc.Login(ctx, domain.Credentials{Username: "admin", Password: "secret123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	mockRepo.On("GetByUsername", ctx, "admin_fail").Return(user, nil)
	token, err = svc.Login(ctx, domain.Credentials{Username: "admin_fail", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, token)

	mockRepo.On("GetByUsername", ctx, "ghost").Return(nil, errors.New("not found"))
	token, err = svc.Login(ctx, domain.Credentials{Username: "ghost", Password: "any"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestAuthService_RateLimit(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("GetByUsername", ctx, "brute").Return(nil, errors.New("not found"))
	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(ctx, domain.Credentials{Username: "brute", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, domain.Credentials{Username: "brute", Password: "x"})
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	mockRepo.AssertNumberOfCalls(t, "GetByUsername", maxLoginAttempts)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	clk := clocktesting.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := NewAuthService(mockRepo, clk)
	ctx := context.Background()
	user := testUser(t, "pw")

	mockRepo.On("GetByUsername", ctx, "admin").Return(user, nil)
	mockRepo.On("GetUserByID", ctx, "u-1").Return(user, nil)

	token, err := svc.Login(ctx, domain.Credentials{Username: "admin", Password: "pw"})
	require.NoError(t, err)

	got, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	_, err = svc.ValidateToken(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidSession)

	clk.Step(25 * time.Hour)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// expired sessions are removed
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthService_Logout(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo, nil)
	ctx := context.Background()
	user := testUser(t, "pw")

	mockRepo.On("GetByUsername", ctx, "admin").Return(user, nil)
	token, err := svc.Login(ctx, domain.Credentials{Username: "admin", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthService_CreateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := NewAuthService(mockRepo, clocktesting.NewFakeClock(now))
	ctx := context.Background()

	mockRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Username == "ops" && u.ID != "" && u.CreatedAt.Equal(now) &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")) == nil
	})).Return(nil)

	err := svc.CreateUser(ctx, domain.User{Username: "ops", Role: domain.RoleOperator}, "pw")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	err = svc.CreateUser(ctx, domain.User{Username: "ops", Role: "root"}, "pw")
	assert.ErrorIs(t, err, ErrInvalidUser)
	err = svc.CreateUser(ctx, domain.User{Username: "", Role: domain.RoleViewer}, "pw")
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestAuthService_EnsureUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("GetByUsername", ctx, "admin").Return(testUser(t, "pw"), nil)
	created, err := svc.EnsureUser(ctx, domain.User{Username: "admin", Role: domain.RoleAdmin}, "pw")
	require.NoError(t, err)
	assert.False(t, created)

	mockRepo.On("GetByUsername", ctx, "fresh").Return(nil, ports.ErrUserNotFound)
	mockRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(nil)
	created, err = svc.EnsureUser(ctx, domain.User{Username: "fresh", Role: domain.RoleViewer}, "pw")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestAuthService_EnsureUser_LookupFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo, nil)
	ctx := context.Background()
	dbErr := errors.New("database is locked")

	mockRepo.On("GetByUsername", ctx, "admin").Return(nil, dbErr)
	created, err := svc.EnsureUser(ctx, domain.User{Username: "admin", Role: domain.RoleAdmin}, "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, created)
	mockRepo.AssertNotCalled(t, "SaveUser", mock.Anything, mock.Anything)
}
