package service

import (
	"context"
	"io"
	"testing"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/config"
	"barberia/internal/database"
	"barberia/internal/models"
	"barberia/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthService(t *testing.T, users *mockUserRepo) *AuthService {
	t.Helper()
	logger := zerolog.New(io.Discard)
	cfg := config.AuthConfig{
		JWTSecret:     testSecret,
		LoginAttempts: 3,
		LoginWindow:   time.Minute,
	}
	svc := NewAuthService(users, repository.NewMemoryStore(), cfg, &logger)
	svc.clock = func() time.Time { return fixedNow }
	return svc
}

func adminUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: "u1", Username: "admin", PasswordHash: string(hash), Role: models.RoleAdmin}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := newAuthService(t, users)
		users.On("GetUserByUsername", ctx, "admin").Return(adminUser(t), nil).Once()

		session, err := svc.Login(ctx, " admin ", "secreto123", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, fixedNow.Add(15*time.Minute), session.AccessExpiresAt)
		assert.Equal(t, fixedNow.Add(7*24*time.Hour), session.RefreshExpiresAt)

		claims, err := svc.ParseAccessToken(session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, models.RoleAdmin, claims.Role)

		_, err = svc.ParseAccessToken(session.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := newAuthService(t, users)
		users.On("GetUserByUsername", ctx, "admin").Return(adminUser(t), nil).Once()

		_, err := svc.Login(ctx, "admin", "otra", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("UnknownUser", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := newAuthService(t, users)
		users.On("GetUserByUsername", ctx, "ghost").Return(nil, database.ErrUserNotFound).Once()

		_, err := svc.Login(ctx, "ghost", "whatever", "10.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Throttled", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := newAuthService(t, users)
		user := adminUser(t)
		users.On("GetUserByUsername", ctx, "admin").Return(user, nil)

		for i := 0; i < 3; i++ {
			_, err := svc.Login(ctx, "admin", "mal", "10.0.0.2")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		}
		_, err := svc.Login(ctx, "admin", "secreto123", "10.0.0.2")
		assert.ErrorIs(t, err, ErrTooManyAttempts)

		_, err = svc.Login(ctx, "admin", "secreto123", "10.0.0.3")
		assert.NoError(t, err)
	})

	t.Run("SuccessResetsCounter", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := newAuthService(t, users)
		users.On("GetUserByUsername", ctx, "admin").Return(adminUser(t), nil)

		for i := 0; i < 2; i++ {
			_, _ = svc.Login(ctx, "admin", "mal", "10.0.0.4")
		}
		_, err := svc.Login(ctx, "admin", "secreto123", "10.0.0.4")
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			_, err = svc.Login(ctx, "admin", "mal", "10.0.0.4")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		}
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepo)
	svc := newAuthService(t, users)
	user := adminUser(t)
	users.On("GetUserByUsername", ctx, "admin").Return(user, nil).Once()

	session, err := svc.Login(ctx, "admin", "secreto123", "10.0.0.1")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		users.On("GetUserByID", ctx, "u1").Return(user, nil).Once()
		next, err := svc.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, next.AccessToken)
	})

	t.Run("AccessTokenRejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, session.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("DeletedUser", func(t *testing.T) {
		users.On("GetUserByID", ctx, "u1").Return(nil, database.ErrUserNotFound).Once()
		_, err := svc.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		svc.clock = func() time.Time { return fixedNow.Add(8 * 24 * time.Hour) }
		defer func() { svc.clock = func() time.Time { return fixedNow } }()

		_, err := svc.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ForeignSecret", func(t *testing.T) {
		logger := zerolog.New(io.Discard)
		other := NewAuthService(users, nil, config.AuthConfig{JWTSecret: "another-secret-another-secret-xx"}, &logger)
		other.clock = func() time.Time { return fixedNow }
		_, err := other.ParseAccessToken(session.AccessToken)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := svc.ParseAccessToken("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	cfg := config.AuthConfig{JWTSecret: testSecret, BootstrapUser: "dueno", BootstrapPasswd: "cambiar123"}

	t.Run("EmptyTable", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := NewAuthService(users, nil, cfg, &logger)
		users.On("CountUsers", ctx).Return(0, nil).Once()
		users.On("CreateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Username == "dueno" && u.Role == models.RoleAdmin &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("cambiar123")) == nil
		})).Return(nil).Once()

		require.NoError(t, svc.EnsureBootstrapAdmin(ctx))
		users.AssertExpectations(t)
	})

	t.Run("UsersExist", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := NewAuthService(users, nil, cfg, &logger)
		users.On("CountUsers", ctx).Return(2, nil).Once()

		require.NoError(t, svc.EnsureBootstrapAdmin(ctx))
		users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		users := new(mockUserRepo)
		svc := NewAuthService(users, nil, config.AuthConfig{JWTSecret: testSecret}, &logger)
		require.NoError(t, svc.EnsureBootstrapAdmin(ctx))
		users.AssertNotCalled(t, "CountUsers", mock.Anything)
	})
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("corta")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("suficiente")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("suficiente")))
}
