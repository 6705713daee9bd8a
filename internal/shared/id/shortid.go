// Package id generates the human-facing references stored next to numeric primary keys.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	alphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

	DefaultLength = 10
)

const (
	PrefixPayment = "PAY"
)

// Generate returns a random string of the given length over an unambiguous upper-case alphabet.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// GenerateWithPrefix returns "PREFIX-XXXXXXXXXX".
func GenerateWithPrefix(prefix string, length int) (string, error) {
	s, err := Generate(length)
	if err != nil {
		return "", err
	}
	return prefix + "-" + s, nil
}

// NewPaymentReference returns a reference such as PAY-7KQ2M9XH4D.
func NewPaymentReference() (string, error) {
	return GenerateWithPrefix(PrefixPayment, DefaultLength)
}
