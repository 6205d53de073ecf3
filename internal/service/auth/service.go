package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Verification is the only thing the watch engine ever learns about a caller.
// Verify never fails: anything that does not parse is an anonymous viewer.
type Verification struct {
	Authenticated bool
	Level         int
}

type Config struct {
	Secret        string
	AdminPassword string
	TokenTTL      time.Duration
}

type service struct {
	cfg    *Config
	logger *slog.Logger
}

func NewService(cfg *Config, logger *slog.Logger) *service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}

	return &service{
		cfg:    cfg,
		logger: logger,
	}
}

// Login checks the operator password and issues a signed access token with
// privilege level 1.
func (s service) Login(password string) (string, error) {
	if password == "" || s.cfg.AdminPassword == "" || password != s.cfg.AdminPassword {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"logged_in": true,
		"level":     1,
		"exp":       time.Now().Add(s.cfg.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (s service) Verify(credential string) Verification {
	anonymous := Verification{Authenticated: false, Level: 0}

	if credential == "" {
		return anonymous
	}

	token, err := jwt.Parse(credential, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return anonymous
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return anonymous
	}

	loggedIn, _ := claims["logged_in"].(bool)
	if !loggedIn {
		return anonymous
	}

	level, _ := claims["level"].(float64)

	return Verification{Authenticated: true, Level: int(level)}
}
