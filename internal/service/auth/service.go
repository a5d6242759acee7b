package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"portfolio-catalog/internal/config"
	"portfolio-catalog/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAuthDisabled       = errors.New("admin login is not configured")
)

const RoleAdmin = "admin"

type Service interface {
	Login(ctx context.Context, input domain.LoginInput) (*domain.TokenPair, error)
	ValidateAccessToken(token string) (*Claims, error)
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	cfg *config.Config
	now func() time.Time
}

// NewService authenticates the single admin account configured by ADMIN_EMAIL and
// ADMIN_PASSWORD_HASH (bcrypt).
func NewService(cfg *config.Config) Service {
	return &service{cfg: cfg, now: time.Now}
}

func (s *service) Login(ctx context.Context, input domain.LoginInput) (*domain.TokenPair, error) {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPasswordHash == "" || s.cfg.JWTSecret == "" {
		return nil, ErrAuthDisabled
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(s.cfg.AdminEmail))) == 1
	// Always run bcrypt so a wrong email costs as much as a wrong password.
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(input.Password))
	if !emailOK || passwordErr != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateToken(s.cfg.AdminEmail)
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) generateToken(email string) (*domain.TokenPair, error) {
	now := s.now()
	claims := &Claims{
		Email: email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTAccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken: signed,
		ExpiresIn:   int64(s.cfg.JWTAccessExpiry.Seconds()),
	}, nil
}
