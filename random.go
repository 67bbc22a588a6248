package auth

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"

	"github.com/goliatone/go-errors"
)

const (
	lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"
	uppercaseLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits           = "0123456789"
)

// ResetSecretSize is the entropy, in bytes, of generated reset secrets.
const ResetSecretSize = 32

// CharsetOptions selects which character classes GenerateRandomString
// draws from. The zero value selects nothing and is rejected; use
// DefaultCharset for the full alphabet.
type CharsetOptions struct {
	Lowercase bool
	Uppercase bool
	Digits    bool
}

// DefaultCharset enables every character class.
var DefaultCharset = CharsetOptions{Lowercase: true, Uppercase: true, Digits: true}

func (o CharsetOptions) alphabet() string {
	var chars string
	if o.Lowercase {
		chars += lowercaseLetters
	}
	if o.Uppercase {
		chars += uppercaseLetters
	}
	if o.Digits {
		chars += digits
	}
	return chars
}

// GenerateRandomString returns a string of length characters drawn from
// the selected alphabet using a cryptographically secure source. A
// negative length or an empty alphabet is a bad-input error.
func GenerateRandomString(length int, opts CharsetOptions) (string, error) {
	if length < 0 {
		return "", errors.New("length must not be negative", errors.CategoryBadInput).
			WithMetadata(map[string]any{"length": length})
	}

	alphabet := opts.alphabet()
	if alphabet == "" {
		return "", errors.New("at least one character class must be enabled", errors.CategoryBadInput)
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, errors.CategoryInternal, "failed to read random source")
		}
		result[i] = alphabet[n.Int64()]
	}

	return string(result), nil
}

// GenerateResetSecret returns a high-entropy opaque secret: ResetSecretSize
// random bytes, base64url encoded without padding.
func GenerateResetSecret() (string, error) {
	buf := make([]byte, ResetSecretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate reset secret")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
