package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin login is not configured")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims is the operator session token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService authenticates the honeypot operator. There is a single admin
// account configured through the environment with a bcrypt password hash.
type AuthService struct {
	cfg config.AdminConfig
	now func() time.Time
}

// NewAuthService returns an AuthService for the given admin configuration.
func NewAuthService(cfg config.AdminConfig) *AuthService {
	return &AuthService{cfg: cfg, now: time.Now}
}

// Enabled reports whether operator login is possible.
func (s *AuthService) Enabled() bool {
	return s.cfg.PasswordHash != "" && s.cfg.JWTSecret != ""
}

// Login verifies the credentials and returns a signed session token.
func (s *AuthService) Login(username, password string) (string, error) {
	if !s.Enabled() {
		return "", ErrAdminDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}
	return s.IssueToken(username)
}

// IssueToken signs an admin session token for subject.
func (s *AuthService) IssueToken(subject string) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", ErrAdminDisabled
	}
	now := s.now()
	ttl := s.cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "mirage",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(raw string) (*Claims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrAdminDisabled
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("mirage"),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword produces a bcrypt hash suitable for MIRAGE_ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
