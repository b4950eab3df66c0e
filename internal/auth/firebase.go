package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FirebaseVerifier verifies Firebase ID tokens against Firebase Auth.
type FirebaseVerifier struct {
	client *fbauth.Client
	logger *zap.Logger
}

// NewFirebaseVerifier builds a verifier from resolved service-account
// credentials. opts must carry the credential option produced by the loader.
func NewFirebaseVerifier(ctx context.Context, projectID string, logger *zap.Logger, opts ...option.ClientOption) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client, logger: logger}, nil
}

// Verify checks the ID token with Firebase Auth and returns its uid claim.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		switch {
		case fbauth.IsIDTokenExpired(err):
			v.logger.Warn("expired firebase id token", zap.Error(err))
			return "", ErrExpiredToken
		case fbauth.IsIDTokenInvalid(err):
			v.logger.Warn("invalid firebase id token", zap.Error(err))
			return "", ErrInvalidToken
		default:
			v.logger.Error("firebase token verification error", zap.Error(err))
			return "", ErrVerification
		}
	}
	return token.UID, nil
}

var _ Verifier = (*FirebaseVerifier)(nil)
