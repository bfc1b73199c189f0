// Package auth holds credential verification, federated identity verification
// and the access-control middleware.
package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the cost factor used for previously stored hashes.
const bcryptCost = 8

// HashPassword derives a one-way salted hash from the plaintext password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(plain, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}
