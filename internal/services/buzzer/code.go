package buzzer

import (
	"math"
	"math/rand/v2"
)

const (
	DefaultAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultCodeLength = 6
)

// CodeGenerator draws room codes uniformly from an alphabet.
type CodeGenerator struct {
	alphabet string
	length   int
	intn     func(n int) int
}

// NewCodeGenerator returns a generator for codes of the given length.
// A nil intn uses math/rand/v2.
func NewCodeGenerator(alphabet string, length int, intn func(n int) int) *CodeGenerator {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if length <= 0 {
		length = DefaultCodeLength
	}
	if intn == nil {
		intn = rand.IntN
	}
	return &CodeGenerator{alphabet: alphabet, length: length, intn: intn}
}

func (g *CodeGenerator) Generate() string {
	code := make([]byte, g.length)
	for i := range code {
		code[i] = g.alphabet[g.intn(len(g.alphabet))]
	}
	return string(code)
}

// Capacity is the number of distinct codes, capped at math.MaxInt.
func (g *CodeGenerator) Capacity() int {
	total := 1
	for i := 0; i < g.length; i++ {
		if total > math.MaxInt/len(g.alphabet) {
			return math.MaxInt
		}
		total *= len(g.alphabet)
	}
	return total
}
