package service

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"strings"
)

// codeAlphabet is the 70-symbol alphabet share codes draw from. Each generated
// code covers a search space of 70^6.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

const codeGroupLen = 3

// ShareCodeGenerator mints codes of the form XXX-XXX, each X drawn uniformly
// from codeAlphabet. The randomness source is injectable so tests can pin a
// seed; production instances are seeded from crypto/rand.
type ShareCodeGenerator struct {
	r *rand.Rand
}

// NewShareCodeGenerator returns a generator backed by r. When r is nil a
// crypto-seeded source is used.
func NewShareCodeGenerator(r *rand.Rand) *ShareCodeGenerator {
	if r == nil {
		r = rand.New(rand.NewPCG(cryptoSeed(), cryptoSeed()))
	}
	return &ShareCodeGenerator{r: r}
}

// Generate returns a fresh candidate code. Uniqueness is the caller's problem.
func (g *ShareCodeGenerator) Generate() string {
	var b strings.Builder
	b.Grow(2*codeGroupLen + 1)
	for i := 0; i < codeGroupLen; i++ {
		b.WriteByte(codeAlphabet[g.r.IntN(len(codeAlphabet))])
	}
	b.WriteByte('-')
	for i := 0; i < codeGroupLen; i++ {
		b.WriteByte(codeAlphabet[g.r.IntN(len(codeAlphabet))])
	}
	return b.String()
}

func cryptoSeed() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; a zero seed
		// still yields valid (if predictable) codes.
		return 0
	}
	return binary.LittleEndian.Uint64(buf[:])
}
