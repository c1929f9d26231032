package service

import (
	"context"
	"testing"
	"time"

	"anecdote/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

// memoryUserRepo is a minimal in-memory repository for flow tests.
type memoryUserRepo struct {
	nextID uint
	users  map[string]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1, users: make(map[string]*models.User)}
}

func (m *memoryUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.NewUserNotFoundError()
}

func (m *memoryUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, nil
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.Username]; ok {
		return models.NewConflictError("Username already taken")
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	m.users[user.Username] = user
	return nil
}

func (m *memoryUserRepo) delete(username string) {
	delete(m.users, username)
}

func newTestAuthService(repo *memoryUserRepo) *AuthService {
	return NewAuthService(repo, "test-secret", time.Hour)
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	return appErr.Code
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc := newTestAuthService(newMemoryUserRepo())

		user, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", Email: "alice@example.com"})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alice", user.Username)

		// The stored password is a bcrypt hash of the plaintext, never the
		// plaintext itself.
		assert.NotEqual(t, "secret1", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))
	})

	t.Run("Missing Fields", func(t *testing.T) {
		svc := newTestAuthService(newMemoryUserRepo())

		_, err := svc.Register(ctx, RegisterInput{Username: "", Password: "secret1"})
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))

		_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: ""})
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))
	})

	t.Run("Short Password", func(t *testing.T) {
		svc := newTestAuthService(newMemoryUserRepo())

		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "12345"})
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		svc := newTestAuthService(newMemoryUserRepo())

		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret2"})
		assert.Equal(t, models.CodeConflict, appErrCode(t, err))
	})

	t.Run("Constraint Race Surfaces Conflict", func(t *testing.T) {
		// The pre-check sees no user, but the insert loses the race.
		repo := &userRepoStub{
			getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
			createFn: func(context.Context, *models.User) error {
				return models.NewConflictError("Username already taken")
			},
		}
		svc := NewAuthService(repo, "test-secret", time.Hour)

		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
		assert.Equal(t, models.CodeConflict, appErrCode(t, err))
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	t.Run("Success Issues Verifiable Token", func(t *testing.T) {
		user, token, err := svc.Authenticate(ctx, "alice", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		require.NotEmpty(t, token)

		verified, err := svc.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, verified.ID)
		assert.Equal(t, user.Username, verified.Username)
	})

	t.Run("Missing Fields", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "", "secret1")
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))

		_, _, err = svc.Authenticate(ctx, "alice", "")
		assert.Equal(t, models.CodeValidation, appErrCode(t, err))
	})

	t.Run("Wrong Password And Unknown User Are Indistinguishable", func(t *testing.T) {
		_, _, errWrongPassword := svc.Authenticate(ctx, "alice", "wrong")
		_, _, errUnknownUser := svc.Authenticate(ctx, "nobody", "secret1")

		assert.Equal(t, models.CodeInvalidCredentials, appErrCode(t, errWrongPassword))
		assert.Equal(t, models.CodeInvalidCredentials, appErrCode(t, errUnknownUser))
		assert.Equal(t, errWrongPassword.Error(), errUnknownUser.Error())
	})
}

func TestAuthService_Verify(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	t.Run("Missing Token", func(t *testing.T) {
		_, err := svc.Verify(ctx, "")
		assert.Equal(t, models.CodeMissingToken, appErrCode(t, err))
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, err := svc.Verify(ctx, "garbage")
		assert.Equal(t, models.CodeInvalidToken, appErrCode(t, err))
	})

	t.Run("Expired Token", func(t *testing.T) {
		expiredSvc := NewAuthService(repo, "test-secret", time.Hour)
		expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

		_, token, err := expiredSvc.Authenticate(ctx, "alice", "secret1")
		require.NoError(t, err)

		_, err = svc.Verify(ctx, token)
		assert.Equal(t, models.CodeExpiredToken, appErrCode(t, err))
	})

	t.Run("User Deleted After Issuance", func(t *testing.T) {
		_, token, err := svc.Authenticate(ctx, "alice", "secret1")
		require.NoError(t, err)

		repo.delete("alice")
		defer func() {
			// restore for other subtests
			_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "secret1"})
			require.NoError(t, err)
		}()

		_, err = svc.Verify(ctx, token)
		assert.Equal(t, models.CodeUserNotFound, appErrCode(t, err))
	})
}
