package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const accessCodeLength = 8

// GenerateAccessCode produces the 8-character code a seller uses to pull up
// an installer-submitted protocol. Uppercase letters and digits only, drawn
// from a cryptographically secure source. Uniqueness is by convention, not
// enforced against the store.
func GenerateAccessCode() string {
	buf := make([]byte, accessCodeLength)
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(fmt.Sprintf("access code generation: %v", err))
		}
		buf[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(buf)
}

// NewDocumentID returns a fresh document ID.
func NewDocumentID() string {
	return uuid.NewString()
}

// ShareLink builds the deep link handed to a seller together with the access
// code. The code in the query string is the only authorization the link has.
func ShareLink(baseURL, kind, docID, code string) string {
	return fmt.Sprintf("%s/uzupelnij/%s/%s?kod=%s", baseURL, kind, docID, code)
}
