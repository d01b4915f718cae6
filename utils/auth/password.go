package auth

import "golang.org/x/crypto/bcrypt"

// Parent accounts are long-lived and low-volume, so we can afford a cost
// above the bcrypt default.
const (
	bcryptCost        = 12
	MinPasswordLength = 8
)

// HashPassword returns a bcrypt hash of the password. Length is enforced
// by IsPasswordValid at the handler boundary, not here.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword compares a plaintext password against its stored hash.
// Any non-nil error means the credentials are rejected.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// IsPasswordValid reports whether a candidate password meets the policy.
func IsPasswordValid(password string) bool {
	return len(password) >= MinPasswordLength
}
