package values

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
)

// ExampleGenerator produces an example value shown in error reports.
type ExampleGenerator func() string

const (
	asciiAlphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	secretKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*(-_=+)"
	secretKeyLength   = 50
)

// GenBytes returns a generator of n random bytes in the given encoding:
// "hex", "base64" or "base64_urlsafe".
func GenBytes(n int, encoding string) (ExampleGenerator, error) {
	var encode func([]byte) string
	switch encoding {
	case "hex":
		encode = hex.EncodeToString
	case "base64":
		encode = base64.StdEncoding.EncodeToString
	case "base64_urlsafe":
		encode = base64.URLEncoding.EncodeToString
	default:
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrUnknownGenerator, encoding)
	}
	return func() string {
		buf := make([]byte, n)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		return encode(buf)
	}, nil
}

// GenRandomString returns a generator of n characters drawn from alphabet.
// An empty alphabet means ASCII letters and digits.
func GenRandomString(n int, alphabet string) ExampleGenerator {
	if alphabet == "" {
		alphabet = asciiAlphanumeric
	}
	return func() string {
		return randomString(n, alphabet)
	}
}

// GenSecretKey generates a 50 character secret key suitable for signing.
func GenSecretKey() string {
	return randomString(secretKeyLength, secretKeyAlphabet)
}

func randomString(n int, alphabet string) string {
	chars := []rune(alphabet)
	max := big.NewInt(int64(len(chars)))
	out := make([]rune, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		out[i] = chars[idx.Int64()]
	}
	return string(out)
}
