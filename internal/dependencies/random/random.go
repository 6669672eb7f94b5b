package random

import (
	"math/rand/v2"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// MathRandom implements Random using the auto-seeded math/rand/v2 source.
// Room codes and word picks are not secrets, so crypto/rand is not needed.
type MathRandom struct{}

// New creates a new MathRandom
func New() *MathRandom {
	return &MathRandom{}
}

// Intn returns a random int in [0, n), or 0 when n <= 0
func (r *MathRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

// String generates a random string of the given length from the given alphabet
func (r *MathRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(result)
}
