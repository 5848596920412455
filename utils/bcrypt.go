package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost stays at the library default; raise it here if hardware allows.
const bcryptCost = bcrypt.DefaultCost

func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
}

// ComparePassword returns nil only when the password matches the stored hash.
func ComparePassword(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
