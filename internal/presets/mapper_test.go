package presets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/passgen/internal/domain"
)

func TestMap(t *testing.T) {
	f := File{Presets: []Entry{
		{Name: " WiFi ", Description: " tv remote ", Length: 20, Categories: []string{"upper", "lower", "digit"}, ExcludeSimilar: true},
		{Name: "pin", Length: 6, Categories: []string{"numbers"}},
		{Name: "", Length: 12, Categories: []string{"lower"}},
		{Name: "emoji", Length: 12, Categories: []string{"emoji"}},
		{Name: "short", Length: 4, Categories: []string{"lower"}},
		{Name: "none", Length: 12},
		{Name: "wifi", Length: 8, Categories: []string{"lower"}},
	}}

	presets, errs := Map(f)

	require.Len(t, presets, 2)
	assert.Equal(t, domain.Preset{
		Name:        "wifi",
		Description: "tv remote",
		Config: domain.GenerationConfig{
			Length:         20,
			Categories:     domain.NewCategorySet(domain.Upper, domain.Lower, domain.Digit),
			ExcludeSimilar: true,
		},
	}, presets[0])
	assert.Equal(t, "pin", presets[1].Name)

	require.Len(t, errs, 5)
	assert.ErrorIs(t, errs[0], ErrMissingName)
	assert.ErrorIs(t, errs[1], domain.ErrUnknownCategory)
	assert.ErrorIs(t, errs[2], domain.ErrLengthOutOfRange)
	assert.ErrorIs(t, errs[3], domain.ErrEmptySelection)
	assert.ErrorIs(t, errs[4], ErrDuplicateName)
}
