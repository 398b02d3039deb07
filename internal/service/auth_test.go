package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/go-blog/internal/apperror"
	"github.com/sakif/go-blog/internal/auth"
	"github.com/sakif/go-blog/internal/model"
)

// mockUserRepo is an in-memory credential store. It enforces username
// uniqueness the same way the sqlite implementation does — on insert —
// so the service sees the same ErrConflict it would in production.
type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.Conflict(fmt.Sprintf("User %s is already registered.", user.Username))
		}
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "no such user"}
}

func (m *mockUserRepo) delete(id int64) { delete(m.users, id) }

// newTestAuthService wires an AuthService against the mock repo with a
// cheap bcrypt cost and a quiet logger.
func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(4)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthService(repo, tokens, passwords, logger), repo
}

func TestRegister_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "alice", "secret")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "secret", user.PasswordHash, "password must be stored hashed")
}

func TestRegister_EmptyUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)

	// Empty username fails regardless of what the password is.
	for _, password := range []string{"", "anything"} {
		_, err := svc.Register(context.Background(), "", password)
		require.ErrorIs(t, err, apperror.ErrValidation)

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "username", appErr.Field)
		assert.Equal(t, "Username is required.", appErr.Message)
	}
}

func TestRegister_EmptyPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "alice", "")
	require.ErrorIs(t, err, apperror.ErrValidation)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Password is required.", appErr.Message)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)

	first, err := svc.Register(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "other")
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "User alice is already registered.", err.Error())

	// First registration is unaffected: the original password still works.
	_, _, err = svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), "alice", "secret")
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_UnknownUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody", "whatever")
	require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	assert.Equal(t, "Incorrect username.", err.Error())
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice", "not-the-password")
	require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	assert.Equal(t, "Incorrect password.", err.Error())
}

func TestLogin_TokenResolvesToUser(t *testing.T) {
	svc, repo := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "alice", "secret")
	require.NoError(t, err)

	_, token, err := svc.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// The token carries the user id; resolving it against the store
	// yields the logged-in user.
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	userID, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	resolved, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)

	// A deleted user's token still validates, but resolution fails —
	// the request is treated as anonymous, not as an error.
	repo.delete(user.ID)
	_, err = repo.GetByID(context.Background(), userID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}
