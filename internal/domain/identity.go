package domain

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID derives the content fingerprint used as dedup and merge key.
// The digest covers the URL when present, otherwise the title. When both are
// empty a random value is hashed, so such items never deduplicate.
func NewID(url, title string) string {
	key := url
	if key == "" {
		key = title
	}
	if key == "" {
		key = uuid.NewString()
	}

	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
