// Package auth resolves bearer tokens into user identities. Token
// cryptography is delegated entirely to the identity provider; this package
// only dispatches the provider's failure modes into a uniform taxonomy.
package auth

import (
	"context"
	"errors"
)

// Verification failure kinds. All of them surface to the client as 401; they
// are kept distinct so the logs can tell a bad token from a provider outage.
var (
	// ErrInvalidToken means the token failed signature or format checks.
	ErrInvalidToken = errors.New("invalid authentication token")
	// ErrExpiredToken means the token was valid but is past its expiry.
	ErrExpiredToken = errors.New("authentication token has expired")
	// ErrVerification covers every other failure (network, provider fault).
	ErrVerification = errors.New("authentication failed")
)

// Verifier validates a bearer token and returns the stable user id it
// carries.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}
