package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"affiliate-market/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	AdminRole    = "admin"
	AdminSubject = "admin"

	DefaultAdminTokenExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService authenticates the single shared admin account
type AuthService interface {
	Login(ctx context.Context, password string) (*LoginResult, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the JWT claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult is handed back to the admin client after a successful login
type LoginResult struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ExpiresIn int64  `json:"expiresIn"`
}

type authService struct {
	passwordHash string
	jwtSecret    string
	expiry       time.Duration
}

// NewAuthService creates a new instance of AuthService from a bcrypt hash of the admin password
func NewAuthService(passwordHash, jwtSecret string, expiry time.Duration) AuthService {
	if expiry <= 0 {
		expiry = DefaultAdminTokenExpiration
	}
	return &authService{
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		expiry:       expiry,
	}
}

// HashPassword hashes a password using bcrypt with BcryptCost
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// AdminPasswordHash prefers the configured hash and otherwise hashes the plain password once at startup.
func AdminPasswordHash(cfg config.AdminConfig) (string, error) {
	if cfg.PasswordHash != "" {
		return cfg.PasswordHash, nil
	}
	if cfg.Password == "" {
		return "", errors.New("admin password is not configured")
	}
	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin password: %w", err)
	}
	return hash, nil
}

// Login verifies the admin password and issues a signed admin token
func (s *authService) Login(ctx context.Context, password string) (*LoginResult, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   AdminSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{
		Token:     tokenString,
		Role:      AdminRole,
		ExpiresIn: int64(s.expiry / time.Second),
	}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
