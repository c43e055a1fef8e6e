package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens signs and checks the handles that let a client drive one game.
type Tokens struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

type SessionClaims struct {
	GameID string `json:"game_id"`
	jwt.RegisteredClaims
}

func loadSecret() ([]byte, error) {
	secret, ok := os.LookupEnv("SESSION_TOKEN_SECRET")
	if ok {
		return []byte(secret), nil
	}

	secretFile, ok := os.LookupEnv("SESSION_TOKEN_SECRET_FILE")
	if ok {
		data, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read token secret file: %w", err)
		}
		return []byte(strings.TrimSpace(string(data))), nil
	}

	if !Development() {
		return nil, fmt.Errorf("no SESSION_TOKEN_SECRET or SESSION_TOKEN_SECRET_FILE env variable set")
	}

	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("unable to generate token secret: %w", err)
	}
	return random, nil
}

func NewTokens() (*Tokens, error) {
	secret, err := loadSecret()
	if err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is empty")
	}
	return NewTokensWithSecret(secret, time.Hour*24), nil
}

func NewTokensWithSecret(secret []byte, lifetime time.Duration) *Tokens {
	return &Tokens{
		secret:        secret,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
	}
}

func (t *Tokens) Sign(gameID string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(t.signingMethod, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{t.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.GameID == "" {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
