// ABOUTME: Secret hashing and comparison for guest credentials
// ABOUTME: bcrypt with a dummy compare to keep missing-guest timing constant

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash of a random string, compared against when
// no guest matches so authentication takes the same time either way.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1J1xGdMyTlQvHz0aXGvVhFOTZ4J3z0K"

// HashSecret hashes a check-in secret with bcrypt at default cost.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing secret: %w", err)
	}
	return string(hash), nil
}

// CompareSecret reports whether the secret matches the stored hash.
func CompareSecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// dummyCompare burns one bcrypt comparison against a fixed hash.
func dummyCompare(secret string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(secret))
}
