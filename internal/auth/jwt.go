package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JWTVerifier verifies locally-minted HS256 tokens. It exists for development
// and tests, where standing up the real identity provider is overkill; the
// cmd/devtoken helper mints compatible tokens.
type JWTVerifier struct {
	secret []byte
	logger *zap.Logger
}

func NewJWTVerifier(secret string, logger *zap.Logger) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), logger: logger}
}

// Verify parses and validates the token and returns its sub claim.
func (v *JWTVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			v.logger.Warn("expired jwt", zap.Error(err))
			return "", ErrExpiredToken
		}
		v.logger.Warn("invalid jwt", zap.Error(err))
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		v.logger.Warn("jwt missing sub claim")
		return "", ErrInvalidToken
	}
	return sub, nil
}

var _ Verifier = (*JWTVerifier)(nil)
