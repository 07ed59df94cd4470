package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewInviteCode returns a random 16-character hex token. Uniqueness against
// existing projects is checked by the caller.
func NewInviteCode() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// NewBlobID returns the storage identifier for an uploaded document:
// the owning user's id joined with a random suffix.
func NewBlobID(userID int) string {
	return fmt.Sprintf("%d_%s", userID, uuid.NewString())
}
