package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

// memoryDenylist is an in-process TokenDenylist for unit tests.
type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{revoked: make(map[string]time.Duration)}
}

func (d *memoryDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = ttl
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[jti]
	return ok, nil
}

func TestLoginAndValidateToken(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	svc := service.NewAuthService(db, "test-secret", time.Hour, nil)

	user := testhelpers.CreateUser(t, db, "cook")

	token, got, err := svc.Login(ctx, "COOK@example.com", testhelpers.TestPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cook", claims.Username)
	assert.NotEmpty(t, claims.ID)

	_, _, err = svc.Login(ctx, "cook@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsBadTokens(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "cook")

	svc := service.NewAuthService(db, "test-secret", time.Hour, nil)
	other := service.NewAuthService(db, "other-secret", time.Hour, nil)
	expired := service.NewAuthService(db, "test-secret", -time.Minute, nil)

	foreign, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, foreign)
	assert.Error(t, err)

	stale, err := expired.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, stale)
	assert.Error(t, err)

	_, err = svc.ValidateToken(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	denylist := newMemoryDenylist()
	svc := service.NewAuthService(db, "test-secret", time.Hour, denylist)

	user := testhelpers.CreateUser(t, db, "cook")
	token, err := svc.GenerateToken(user)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.InDelta(t, time.Hour.Seconds(), denylist.revoked[claims.ID].Seconds(), 5)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)

	fresh, err := svc.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, fresh)
	assert.NoError(t, err, "other tokens of the same user stay valid")
}

func TestLogoutWithoutDenylistIsNoop(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewAuthService(db, "test-secret", time.Hour, nil)
	assert.NoError(t, svc.Logout(context.Background(), &types.TokenClaims{UserID: uuid.New()}))
}

func TestRegisterUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	svc := service.NewUserService(db)

	req := &types.RegisterRequest{
		Email:     "new@example.com",
		Username:  "new.user",
		FirstName: "New",
		LastName:  "User",
		Password:  "long-enough",
	}
	user, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "long-enough", user.PasswordHash)

	dup := *req
	dup.Username = "another"
	_, err = svc.Register(ctx, &dup)
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)

	bad := *req
	bad.Email = "other@example.com"
	bad.Username = "has space"
	_, err = svc.Register(ctx, &bad)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "username", verr.Field)

	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	_, _, err = auth.Login(ctx, "new@example.com", "long-enough")
	assert.NoError(t, err)
}

func TestUsersListAndSetPassword(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	svc := service.NewUserService(db)

	testhelpers.CreateUser(t, db, "zoe")
	amy := testhelpers.CreateUser(t, db, "amy")
	testhelpers.CreateUser(t, db, "mia")

	users, total, err := svc.ListUsers(ctx, types.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)
	assert.Equal(t, "mia", users[1].Username)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.SetPassword(ctx, amy.ID, &types.SetPasswordRequest{NewPassword: "brand-new-pass", CurrentPassword: "wrong"})
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "current_password", verr.Field)

	require.NoError(t, svc.SetPassword(ctx, amy.ID, &types.SetPasswordRequest{
		NewPassword:     "brand-new-pass",
		CurrentPassword: testhelpers.TestPassword,
	}))
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	_, _, err = auth.Login(ctx, "amy@example.com", "brand-new-pass")
	assert.NoError(t, err)
}
