package auth

import "golang.org/x/crypto/bcrypt"

// hashPassword produces a salted bcrypt hash of the plaintext. Hashing the
// same plaintext twice yields different strings that both verify.
func hashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// verifyPassword reports whether the plaintext matches the stored hash.
// A mismatch is a normal false result, not an error; the comparison is
// constant-time inside bcrypt.
func verifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
