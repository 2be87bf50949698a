package credentials

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// CodeLength is the length of a parent connection code
const CodeLength = 8

// Ambiguous characters (0/O, 1/I/L) are left out so codes can be read aloud
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateConnectionCode generates a random code a second parent enters to
// connect to a child
func GenerateConnectionCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[num.Int64()]
	}
	return string(code), nil
}

// NormalizeCode uppercases a code typed by a user and strips spaces and dashes
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer(" ", "", "-", "").Replace(code)
}
