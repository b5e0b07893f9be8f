package domain

import (
	"fmt"
	"strings"
)

// Category is one of the character classes a caller may opt into.
type Category uint8

const (
	Upper Category = 1 << iota
	Lower
	Digit
	Symbol
)

// Alphabets of each category.
const (
	UpperAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LowerAlphabet  = "abcdefghijklmnopqrstuvwxyz"
	DigitAlphabet  = "0123456789"
	SymbolAlphabet = "!@#$%^&*()_+~`|}{[]:;?><,./-="

	// SimilarCharacters are removed from the pool when ExcludeSimilar is set.
	SimilarCharacters = "l1IO0"
)

// AllCategories lists the categories in canonical order.
// Generation, scoring and suggestions all iterate in this order.
var AllCategories = []Category{Upper, Lower, Digit, Symbol}

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case Upper:
		return "upper"
	case Lower:
		return "lower"
	case Digit:
		return "digit"
	case Symbol:
		return "symbol"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// Label is the human readable name used in suggestions.
func (c Category) Label() string {
	switch c {
	case Upper:
		return "Uppercase"
	case Lower:
		return "Lowercase"
	case Digit:
		return "Numbers"
	case Symbol:
		return "Symbols"
	default:
		return c.String()
	}
}

// Alphabet returns the full alphabet of the category.
func (c Category) Alphabet() string {
	switch c {
	case Upper:
		return UpperAlphabet
	case Lower:
		return LowerAlphabet
	case Digit:
		return DigitAlphabet
	case Symbol:
		return SymbolAlphabet
	default:
		return ""
	}
}

// ParseCategory accepts the wire name and a few common aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upper", "uppercase":
		return Upper, nil
	case "lower", "lowercase":
		return Lower, nil
	case "digit", "digits", "number", "numbers":
		return Digit, nil
	case "symbol", "symbols":
		return Symbol, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// CategorySet is a bit set of categories.
type CategorySet uint8

// NewCategorySet builds a set from the given categories.
func NewCategorySet(cats ...Category) CategorySet {
	var s CategorySet
	for _, c := range cats {
		s = s.With(c)
	}
	return s
}

// With returns a copy of the set including c.
func (s CategorySet) With(c Category) CategorySet { return s | CategorySet(c) }

// Without returns a copy of the set excluding c.
func (s CategorySet) Without(c Category) CategorySet { return s &^ CategorySet(c) }

// Has reports whether c is in the set.
func (s CategorySet) Has(c Category) bool { return s&CategorySet(c) != 0 }

// Active returns the members of the set in canonical order.
func (s CategorySet) Active() []Category {
	out := make([]Category, 0, len(AllCategories))
	for _, c := range AllCategories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of categories in the set.
func (s CategorySet) Len() int { return len(s.Active()) }

// IsEmpty reports whether no category is selected.
func (s CategorySet) IsEmpty() bool { return s.Len() == 0 }

// Names returns the wire names of the members in canonical order.
func (s CategorySet) Names() []string {
	active := s.Active()
	names := make([]string, len(active))
	for i, c := range active {
		names[i] = c.String()
	}
	return names
}

// ParseCategorySet parses a list of category names.
func ParseCategorySet(names []string) (CategorySet, error) {
	var s CategorySet
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return 0, err
		}
		s = s.With(c)
	}
	return s, nil
}

// removeSimilar strips SimilarCharacters from alphabet.
func removeSimilar(alphabet string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(SimilarCharacters, r) {
			return -1
		}
		return r
	}, alphabet)
}
