package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/config"
	"barberia/internal/domain"
	"barberia/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims is the JWT payload of access and refresh tokens.
type Claims struct {
	UserID    string `json:"uid"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Session is the token pair issued on login and refresh.
type Session struct {
	User             *models.User `json:"user"`
	AccessToken      string       `json:"-"`
	RefreshToken     string       `json:"-"`
	AccessExpiresAt  time.Time    `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time    `json:"refreshExpiresAt"`
}

type AuthService struct {
	users   domain.UserRepository
	limiter domain.KeyValueStore
	secret  []byte
	cfg     config.AuthConfig
	clock   func() time.Time
	logger  *zerolog.Logger
}

func NewAuthService(users domain.UserRepository, limiter domain.KeyValueStore, cfg config.AuthConfig, logger *zerolog.Logger) *AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.LoginAttempts <= 0 {
		cfg.LoginAttempts = 5
	}
	if cfg.LoginWindow <= 0 {
		cfg.LoginWindow = 15 * time.Minute
	}
	return &AuthService{
		users:   users,
		limiter: limiter,
		secret:  []byte(cfg.JWTSecret),
		cfg:     cfg,
		clock:   time.Now,
		logger:  logger,
	}
}

// HashPassword returns a bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	if len(plain) < 8 {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hash), err
}

func loginKey(username, clientIP string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(username)) + "|" + clientIP
}

// Login checks the credentials and issues a session. Every attempt counts
// towards the per username and IP limit; a successful login resets it.
func (s *AuthService) Login(ctx context.Context, username, password, clientIP string) (*Session, error) {
	key := loginKey(username, clientIP)
	if s.limiter != nil {
		allowed, err := s.limiter.CheckRateLimit(ctx, key, s.cfg.LoginAttempts, s.cfg.LoginWindow)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable")
		} else if !allowed {
			s.logger.Warn().Str("username", username).Str("ip", clientIP).Msg("Login throttled")
			return nil, ErrTooManyAttempts
		}
	}

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Info().Str("username", user.Username).Str("ip", clientIP).Msg("Login failed")
		return nil, ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Delete(ctx, key); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}
	s.logger.Info().Str("username", user.Username).Msg("User logged in")
	return s.issue(user)
}

// Refresh exchanges a valid refresh token for a new session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.parse(refreshToken, TokenRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.issue(user)
}

// ParseAccessToken validates an access token and returns its claims.
func (s *AuthService) ParseAccessToken(token string) (*Claims, error) {
	return s.parse(token, TokenAccess)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// EnsureBootstrapAdmin creates the configured admin when no user exists yet.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	if s.cfg.BootstrapUser == "" {
		return nil
	}
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := HashPassword(s.cfg.BootstrapPasswd)
	if err != nil {
		return err
	}
	user := &models.User{Username: s.cfg.BootstrapUser, PasswordHash: hash, Role: models.RoleAdmin}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("username", user.Username).Msg("Bootstrap admin created")
	return nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	now := s.clock()
	session := &Session{
		User:             user,
		AccessExpiresAt:  now.Add(s.cfg.AccessTTL),
		RefreshExpiresAt: now.Add(s.cfg.RefreshTTL),
	}

	var err error
	if session.AccessToken, err = s.sign(user, TokenAccess, now, session.AccessExpiresAt); err != nil {
		return nil, err
	}
	if session.RefreshToken, err = s.sign(user, TokenRefresh, now, session.RefreshExpiresAt); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *AuthService) sign(user *models.User, tokenType string, now, expires time.Time) (string, error) {
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) parse(token, tokenType string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock))
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug().Err(err).Msg("rejected token")
		}
		return nil, apperr.Wrap(ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
