package domain

import "errors"

var (
	// ErrEmptySelection is returned when no category is active or exclusion
	// emptied the pool. No password is produced.
	ErrEmptySelection = errors.New("select at least one character category")

	ErrLengthOutOfRange = errors.New("password length out of range")
	ErrIndexOutOfRange  = errors.New("history index out of range")
	ErrEntryNotFound    = errors.New("history entry not found")
	ErrUnknownCategory  = errors.New("unknown character category")
	ErrUnknownPreset    = errors.New("unknown preset")
)

// IsValidationError reports whether err is caused by caller input rather than
// by an internal failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrLengthOutOfRange) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrUnknownPreset)
}
