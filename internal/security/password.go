package security

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 12

// HashPassword produces a one-way bcrypt hash of the plaintext secret.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain is the exact secret the hash was
// derived from. It is the only way secrets are ever compared.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
