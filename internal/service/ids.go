package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// inviteKeyLength is the length of generated invite keys.
const inviteKeyLength = 10

// newID returns a new random entity identifier.
func newID() string {
	return uuid.NewString()
}

// newInviteKey returns a URL-safe random key trimmed to length characters.
func newInviteKey(length int) string {
	buf := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a UUID
		// so key generation cannot take the request down.
		return uuid.NewString()[:length]
	}
	s := base64.RawURLEncoding.EncodeToString(buf)
	return s[:length]
}
