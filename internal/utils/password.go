package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength matches the hosted identity provider's weak-password rule.
const MinPasswordLength = 6

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
