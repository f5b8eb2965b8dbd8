package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"math/big"
	"strings"
)

func GenerateRandomToken(size int) (string, error) {
	buffer := make([]byte, size)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// GeneratePIN returns a zero-padded numeric secret of the given length,
// drawn from crypto/rand.
func GeneratePIN(length int) (string, error) {
	if length < 4 {
		length = 4
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	pin := n.String()
	if len(pin) < length {
		pin = strings.Repeat("0", length-len(pin)) + pin
	}
	return pin, nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePIN strips all whitespace from user PIN input.
func NormalizePIN(pin string) string {
	return strings.Join(strings.Fields(pin), "")
}
