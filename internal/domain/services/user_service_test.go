package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resident-directory-service/internal/domain/models"
)

func countUsers(t *testing.T, e *testEnv) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestRegister_CreatesExactlyOneAccount(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user, err := e.users.Register(ctx, "ann", "pw123456", "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.False(t, user.IsStaff)
	assert.True(t, user.IsActive)
	assert.EqualValues(t, 1, countUsers(t, e))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.users.Register(ctx, "ann", "pw", "")
	require.NoError(t, err)

	_, err = e.users.Register(ctx, "ann", "other", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.EqualValues(t, 1, countUsers(t, e))
}

func TestRegister_HashLikePassword(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	hash, err := models.HashPassword("preimage")
	require.NoError(t, err)
	_, err = e.users.Register(ctx, "ann", hash, "")
	require.NoError(t, err)

	_, err = e.users.Authenticate(ctx, "ann", hash)
	assert.NoError(t, err)
	_, err = e.users.Authenticate(ctx, "ann", "preimage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, err := e.users.Register(ctx, "ann", "pw", "")
	require.NoError(t, err)

	user, err := e.users.Authenticate(ctx, "ann", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)

	_, err = e.users.Authenticate(ctx, "ann", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.users.Authenticate(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, e.db.Model(&models.User{}).Where("username = ?", "ann").Update("is_active", false).Error)
	_, err = e.users.Authenticate(ctx, "ann", "pw")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestCreateStaff_CreatesAndPromotes(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	staff, err := e.users.CreateStaff(ctx, "boss", "pw", "boss@example.com")
	require.NoError(t, err)
	assert.True(t, staff.IsStaff)

	_, err = e.users.Register(ctx, "ann", "pw", "")
	require.NoError(t, err)
	promoted, err := e.users.CreateStaff(ctx, "ann", "newpw", "")
	require.NoError(t, err)
	assert.True(t, promoted.IsStaff)

	_, err = e.users.Authenticate(ctx, "ann", "newpw")
	assert.NoError(t, err)
	assert.EqualValues(t, 2, countUsers(t, e))
}

func TestGetUserByID_NotFound(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.users.GetUserByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
