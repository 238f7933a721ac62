package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const (
	addressPrefix = "0xPL"
	addressLength = 42
)

// GenerateWalletAddress derives a unique, immutable wallet address for a
// user: a "0xPL"-prefixed, 42-character string built from the SHA3-256
// digest of the user id plus fresh random entropy. The entropy makes
// addresses unguessable; uniqueness is ultimately enforced by the storage
// unique constraint.
func GenerateWalletAddress(userID string) (string, error) {
	entropy := make([]byte, 16)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("generating address entropy: %w", err)
	}

	digest := sha3.Sum256(append([]byte(userID), entropy...))
	return (addressPrefix + hex.EncodeToString(digest[:]))[:addressLength], nil
}
