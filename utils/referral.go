// utils/referral.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	referralPrefix   = "RW"
	referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralRandLen  = 6
)

// ReferralCodeGenerator produces unique referral codes: a fixed prefix plus
// six random characters from a 36-symbol alphabet. Uniqueness is checked
// through the injected predicate; after MaxAttempts collisions the generator
// falls back to a timestamp-suffixed code instead of accepting a duplicate.
type ReferralCodeGenerator struct {
	MaxAttempts int
	// Rand returns one random index into the alphabet. Overridable in tests
	// to force collisions.
	Rand func(n int) int
}

func NewReferralCodeGenerator() *ReferralCodeGenerator {
	return &ReferralCodeGenerator{
		MaxAttempts: 5,
		Rand:        secureIntn,
	}
}

func secureIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken;
		// fall back to a time-derived index rather than aborting signup.
		return int(time.Now().UnixNano() % int64(n))
	}
	return int(v.Int64())
}

func (g *ReferralCodeGenerator) randomCode() string {
	var b strings.Builder
	b.WriteString(referralPrefix)
	for i := 0; i < referralRandLen; i++ {
		b.WriteByte(referralAlphabet[g.Rand(len(referralAlphabet))])
	}
	return b.String()
}

// Generate returns a code for which isTaken reported false. If every attempt
// collides, the last candidate gets a monotonic suffix derived from the clock,
// which keeps the uniqueness invariant without an unbounded loop.
func (g *ReferralCodeGenerator) Generate(isTaken func(code string) (bool, error)) (string, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}

	var code string
	for i := 0; i < attempts; i++ {
		code = g.randomCode()
		taken, err := isTaken(code)
		if err != nil {
			return "", fmt.Errorf("referral code uniqueness check failed: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	// All attempts collided. Append a timestamp fragment to the last
	// candidate so the result is still unique.
	suffix := fmt.Sprintf("%04d", time.Now().UnixNano()%10000)
	return code + suffix, nil
}
