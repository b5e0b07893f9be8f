package domain

import (
	"fmt"
	"strings"
)

// Generator builds random passwords from a GenerationConfig.
type Generator struct {
	rnd RandomSource
}

// NewGenerator creates a generator. A nil source falls back to crypto/rand.
func NewGenerator(rnd RandomSource) *Generator {
	if rnd == nil {
		rnd = CryptoSource()
	}
	return &Generator{rnd: rnd}
}

// Generate returns a password of exactly cfg.Length characters.
//
// Every selected category contributes one guaranteed character (drawn from its
// alphabet after similar-character exclusion), the remaining positions are
// drawn from the whole pool with replacement, and the result is shuffled so
// the guaranteed characters do not sit at predictable positions.
func (g *Generator) Generate(cfg GenerationConfig) (string, error) {
	if cfg.Length < 1 {
		return "", fmt.Errorf("%w: %d", ErrLengthOutOfRange, cfg.Length)
	}

	active := cfg.Categories.Active()
	if len(active) == 0 {
		return "", ErrEmptySelection
	}

	sets := make([]string, len(active))
	for i, c := range active {
		alphabet := c.Alphabet()
		if cfg.ExcludeSimilar {
			alphabet = removeSimilar(alphabet)
		}
		if alphabet == "" {
			return "", fmt.Errorf("%w: no characters left for %s", ErrEmptySelection, c)
		}
		sets[i] = alphabet
	}

	return g.compose(sets, cfg.Length)
}

// compose seeds one character per set, fills from the union and shuffles.
func (g *Generator) compose(sets []string, length int) (string, error) {
	var pool strings.Builder
	for _, s := range sets {
		if s == "" {
			return "", ErrEmptySelection
		}
		pool.WriteString(s)
	}
	chars := []rune(pool.String())
	if len(chars) == 0 {
		return "", ErrEmptySelection
	}

	out := make([]rune, 0, length)
	for _, s := range sets {
		if len(out) == length {
			break
		}
		ch, err := g.pick([]rune(s))
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}

	for len(out) < length {
		ch, err := g.pick(chars)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}

	if err := g.shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func (g *Generator) pick(from []rune) (rune, error) {
	i, err := g.rnd.Intn(len(from))
	if err != nil {
		return 0, err
	}
	return from[i], nil
}

// shuffle is an in-place Fisher-Yates permutation.
func (g *Generator) shuffle(s []rune) error {
	for i := len(s) - 1; i > 0; i-- {
		j, err := g.rnd.Intn(i + 1)
		if err != nil {
			return err
		}
		s[i], s[j] = s[j], s[i]
	}
	return nil
}
