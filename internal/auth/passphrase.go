package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// passphraseWords is the word list for generated passphrases.
var passphraseWords = []string{
	"amber", "basil", "cedar", "delta", "ember", "fjord", "glade", "harbor",
	"iris", "juniper", "kestrel", "lumen", "maple", "nectar", "onyx", "pebble",
	"quartz", "raven", "sable", "thistle", "umber", "velvet", "willow", "zephyr",
}

// GeneratePassphrase returns a random passphrase of n dash-separated words
// followed by a two-digit number.
func GeneratePassphrase(n int) (string, error) {
	words := make([]string, 0, n+1)
	for range n {
		i, err := rand.Int(rand.Reader, big.NewInt(int64(len(passphraseWords))))
		if err != nil {
			return "", fmt.Errorf("generating passphrase: %w", err)
		}
		words = append(words, passphraseWords[i.Int64()])
	}
	num, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return "", fmt.Errorf("generating passphrase: %w", err)
	}
	words = append(words, fmt.Sprintf("%02d", num.Int64()))
	return strings.Join(words, "-"), nil
}

// HashPassphrase hashes a passphrase with bcrypt.
func HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing passphrase: %w", err)
	}
	return string(hash), nil
}

// CheckPassphrase reports whether passphrase matches hash.
func CheckPassphrase(hash, passphrase string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase)) == nil
}
