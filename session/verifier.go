package session

import "golang.org/x/crypto/bcrypt"

// BcryptVerifier verifies plaintext passwords against bcrypt hashes.
type BcryptVerifier struct{}

// Verify implements Verifier.
func (BcryptVerifier) Verify(plain, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}

// HashPassword produces a bcrypt hash suitable for storage. Exposed so
// account creation and fixtures hash the same way logins verify.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
