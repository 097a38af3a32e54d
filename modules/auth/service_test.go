package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/example/beverage-storefront/database"
	"github.com/example/beverage-storefront/domain/apperror"
	domain "github.com/example/beverage-storefront/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupService(t *testing.T) *AuthService {
	t.Helper()

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return NewAuthService(
		NewUserRepository(db),
		NewPasswordHasherWithCost(bcrypt.MinCost),
		NewJWTManager(testJWTConfig()),
	)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", userName: "Ann", email: "ann@example.com", password: "password123"},
		{name: "missing name", userName: "  ", email: "bob@example.com", password: "password123", wantErr: ErrNameRequired},
		{name: "missing @", userName: "Bob", email: "bobexample.com", password: "password123", wantErr: ErrInvalidEmail},
		{name: "display name form", userName: "Bob", email: "Bob <bob@example.com>", password: "password123", wantErr: ErrInvalidEmail},
		{name: "7 characters", userName: "Bob", email: "bob@example.com", password: "1234567", wantErr: ErrWeakPassword},
		{name: "73 characters", userName: "Bob", email: "bob@example.com", password: strings.Repeat("a", 73), wantErr: ErrPasswordTooLong},
		{name: "duplicate email", userName: "Ann", email: "ANN@example.com", password: "password123", wantErr: ErrUserExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.RoleUser, user.Role)
			assert.NotEqual(t, tt.password, user.PasswordHash)
		})
	}
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ann@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tokens, err := svc.Login(ctx, "Ann@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)

	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	refreshed, err := svc.RefreshTokens(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshTokens(ctx, tokens.AccessToken)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	admin, created, err := svc.EnsureAdmin(ctx, "", "root@example.com", "supersecret")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "Administrator", admin.Name)

	user, err := svc.Register(ctx, "Ann", "ann@example.com", "password123")
	require.NoError(t, err)

	promoted, created, err := svc.EnsureAdmin(ctx, "", "ann@example.com", "newpassword")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, promoted.ID)
	assert.Equal(t, "Ann", promoted.Name)

	tokens, err := svc.Login(ctx, "ann@example.com", "newpassword")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestAuthService_ListAndCountUsers(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Register(ctx, "User", email, "password123")
		require.NoError(t, err)
	}

	total, err := svc.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	users, total, p, err := svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, 2, p.Page)
	assert.Len(t, users, 1)

	_, err = svc.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
