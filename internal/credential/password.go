package credential

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultCharset is letters, digits and a handful of symbols.
const DefaultCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// DefaultPasswordLength matches the generator in the management window.
const DefaultPasswordLength = 8

// MaxPasswordLength bounds generated passwords.
const MaxPasswordLength = 256

// GeneratePassword returns a random password of length runes drawn uniformly
// from charset using crypto/rand. Zero values select the defaults.
func GeneratePassword(length int, charset string) (string, error) {
	if length == 0 {
		length = DefaultPasswordLength
	}
	if charset == "" {
		charset = DefaultCharset
	}
	if length < 0 || length > MaxPasswordLength {
		return "", fmt.Errorf("password length must be between 1 and %d", MaxPasswordLength)
	}

	chars := []rune(charset)
	limit := big.NewInt(int64(len(chars)))
	out := make([]rune, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		out[i] = chars[n.Int64()]
	}
	return string(out), nil
}
