package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resident-directory-service/internal/domain/models"
)

func newJWT(t *testing.T, e *testEnv) InterfaceJWTService {
	t.Helper()
	e.cfg.JWTAccessTTL = 5 * time.Minute
	e.cfg.JWTRefreshTTL = 24 * time.Hour
	return NewJWTService(e.cfg, e.db)
}

func TestLogin_IssuesTypedTokens(t *testing.T) {
	e := newTestEnv(t)
	svc := newJWT(t, e)
	ctx := context.Background()
	user, err := e.users.Register(ctx, "ann", "pw", "")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "ann", "pw")
	require.NoError(t, err)

	claims, err := svc.ParseToken(pair.Access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ann", claims.Username)
	assert.NotEmpty(t, claims.ID)

	_, err = svc.ParseToken(pair.Access, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ParseToken(pair.Refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Login(ctx, "ann", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	e := newTestEnv(t)
	svc := newJWT(t, e)
	ctx := context.Background()
	_, err := e.users.Register(ctx, "ann", "pw", "")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "ann", "pw")
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	_, err = svc.ParseToken(access, TokenTypeAccess)
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken, "access tokens cannot refresh")

	require.NoError(t, e.db.Where("username = ?", "ann").Delete(&models.User{}).Error)
	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "deleted users cannot refresh")
}

func TestParseToken_RejectsExpiredAndForeign(t *testing.T) {
	e := newTestEnv(t)
	svc := newJWT(t, e)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:    1,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte(e.cfg.JWTSecretKey))
	require.NoError(t, err)
	_, err = svc.ParseToken(signed, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{UserID: 1, TokenType: TokenTypeAccess}).
		SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = svc.ParseToken(foreign, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("not.a.token", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
