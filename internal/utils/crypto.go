// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func GenerateRandomDigits(length int) (string, error) {
	const charset = "0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateOrderNumber produces human-quotable order numbers like
// CM-20260831-4821. Uniqueness is backed by the DB constraint; collisions
// within a day are retried by the caller.
func GenerateOrderNumber() (string, error) {
	suffix, err := GenerateRandomDigits(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CM-%s-%s", time.Now().Format("20060102"), suffix), nil
}
