package platform

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const shortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

const (
	keyIDPrefix = "key_"
	keyIDLength = 12
)

// NewID returns a random UUID string.
func NewID() string {
	return uuid.New().String()
}

// NewKeyID returns an API key record ID such as "key_3f9a0c1b7d2e".
func NewKeyID() string {
	return keyIDPrefix + randomShort(keyIDLength)
}

func randomShort(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = shortIDAlphabet[b[i]%byte(len(shortIDAlphabet))]
	}
	return string(b)
}
