// Package auth implements the dashboard login: bcrypt password checks
// against the users table and JWT session tokens. The analytics pipeline is
// deliberately auth-unaware; sessions only exist at the HTTP edge.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/hvaldivia/repuestos-analytics/internal/config"
	"github.com/hvaldivia/repuestos-analytics/internal/domain"
	"github.com/hvaldivia/repuestos-analytics/internal/repository"
)

var (
	// ErrInvalidCredentials covers both unknown users and wrong passwords,
	// so login responses never reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for malformed, forged or expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

const defaultTokenTTL = 8 * time.Hour

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and verifies session tokens.
type Service struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
}

func NewService(users repository.UserRepository, cfg config.AuthConfig) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: AUTH_JWT_SECRET must be set")
	}

	ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	return &Service{
		users:  users,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
	}, nil
}

// Login verifies the credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", domain.Session{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.Session{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, domain.Session{Username: user.Username, ExpiresAt: expiresAt}, nil
}

// Verify parses a session token and returns the session it carries.
func (s *Service) Verify(tokenString string) (*domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &domain.Session{
		Username:  c.Username,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// HashPassword produces the bcrypt hash stored in the users table. Used by
// account provisioning tooling, never during request handling.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
