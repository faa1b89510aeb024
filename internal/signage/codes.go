package signage

import (
	"math/rand"
)

// codeCharset deliberately omits 0/O and 1/I: registration codes are typed
// by hand on a TV remote.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// codeAttempts bounds the insert-retry loop when generated codes collide
// with ones already pending in the store.
const codeAttempts = 5

func generateRegistrationCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return string(b)
}
