// Package session maps opaque session IDs to backend access tokens. The
// browser only ever sees the session ID; the token itself stays server-side.
// The package also stores single-use nonces that guard forms against double
// submission.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a session ID or nonce is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store persists session state for the lifetime of a login.
type Store interface {
	// Create stores the access token under a fresh session ID and returns
	// the ID.
	Create(ctx context.Context, token string) (string, error)

	// Get returns the access token for a session ID, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (string, error)

	// Destroy removes a session. Destroying an unknown session is a no-op.
	Destroy(ctx context.Context, sessionID string) error

	// SaveNonce records a single-use form nonce scoped to a session.
	SaveNonce(ctx context.Context, sessionID, nonce string) error

	// ConsumeNonce removes the nonce and reports whether it was present.
	// A second consume of the same nonce returns false, which is how
	// duplicate form submissions are detected.
	ConsumeNonce(ctx context.Context, sessionID, nonce string) (bool, error)
}

// NewID generates a 128-bit random identifier, hex encoded.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
