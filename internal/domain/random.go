package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// RandomSource draws uniformly distributed integers in [0, n).
type RandomSource interface {
	Intn(n int) (int, error)
}

type cryptoSource struct{}

// CryptoSource returns a RandomSource backed by crypto/rand.
func CryptoSource() RandomSource { return cryptoSource{} }

func (cryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid bound %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random number: %w", err)
	}
	return int(v.Int64()), nil
}

type seededSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// SeededSource returns a deterministic RandomSource. Use it in tests only.
func SeededSource(seed uint64) RandomSource {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid bound %d", n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n), nil
}
