package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt cost used for stored account passwords.
const PasswordCost = 14

func HashPassword(p string) (string, error) {
	return HashPasswordWithCost(p, PasswordCost)
}

func HashPasswordWithCost(p string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(p), cost)
	return string(bytes), err
}

func CheckPassword(hash, pass string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
	return err == nil
}
