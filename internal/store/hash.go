package store

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash is the hex SHA-256 of a file's content, used to skip files
// whose exports are already cached.
func ContentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
