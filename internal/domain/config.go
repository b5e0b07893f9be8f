package domain

import "fmt"

const (
	MinLength     = 6
	MaxLength     = 32
	DefaultLength = 12
)

// GenerationConfig is the input of both the generator and the scorer.
type GenerationConfig struct {
	Length         int
	Categories     CategorySet
	ExcludeSimilar bool
}

// DefaultConfig mirrors the widget's initial state: 12 characters,
// upper, lower and digits on, symbols off.
func DefaultConfig() GenerationConfig {
	return GenerationConfig{
		Length:     DefaultLength,
		Categories: NewCategorySet(Upper, Lower, Digit),
	}
}

// Validate checks the length window and that at least one category is set.
func (c GenerationConfig) Validate() error {
	if c.Length < MinLength || c.Length > MaxLength {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrLengthOutOfRange, c.Length, MinLength, MaxLength)
	}
	if c.Categories.IsEmpty() {
		return ErrEmptySelection
	}
	return nil
}

// ClampLength returns n bounded to [MinLength, MaxLength].
func ClampLength(n int) int {
	switch {
	case n < MinLength:
		return MinLength
	case n > MaxLength:
		return MaxLength
	default:
		return n
	}
}
