package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrValueEmpty      = errors.New("core: value is empty")
	ErrValueTooLong    = errors.New("core: value exceeds maximum length")
	ErrValueOutOfRange = errors.New("core: value out of range")
	ErrInvalidURL      = errors.New("core: url failed shape check")
	ErrCounterOverflow = errors.New("core: counter overflow")
)

// CurrentSchemaVersion is stamped into every account record at creation and
// carried through the persisted layout for forward migrations.
const CurrentSchemaVersion uint8 = 1

// RefLen is the fixed byte width of opaque reference hashes (policy and
// lifecycle note references).
const RefLen = 32

// Ref is an opaque 32-byte reference to an off-platform document, typically
// a content hash. A zero Ref means "no reference".
type Ref [RefLen]byte

func (r Ref) IsZero() bool {
	return r == Ref{}
}

func (r Ref) String() string {
	return hex.EncodeToString(r[:])
}

// RefFromBytes copies up to RefLen bytes into a Ref. Longer inputs are
// rejected rather than truncated.
func RefFromBytes(b []byte) (Ref, error) {
	var ref Ref
	if len(b) > RefLen {
		return ref, fmt.Errorf("%w: reference is %d bytes, max %d", ErrValueTooLong, len(b), RefLen)
	}
	copy(ref[:], b)
	return ref, nil
}

func checkedAddU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("%w: u64 add", ErrCounterOverflow)
	}
	return a + b, nil
}

func checkedAddU16(a, b uint16) (uint16, error) {
	if a > math.MaxUint16-b {
		return 0, fmt.Errorf("%w: u16 add", ErrCounterOverflow)
	}
	return a + b, nil
}

func checkedAddU32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("%w: u32 add", ErrCounterOverflow)
	}
	return a + b, nil
}

func checkedSubU32(a, b uint32) (uint32, error) {
	if a < b {
		return 0, fmt.Errorf("%w: u32 subtract", ErrCounterOverflow)
	}
	return a - b, nil
}

func validateRequiredString(field, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrValueEmpty, field)
	}
	return validateOptionalString(field, value, max)
}

func validateOptionalString(field, value string, max int) error {
	if max > 0 && len(value) > max {
		return fmt.Errorf("%w: %s is %d bytes, max %d", ErrValueTooLong, field, len(value), max)
	}
	return nil
}

// validateResourceURL performs the coarse shape check used for repository
// URLs: a scheme separator and at least one dot. Anything stricter is left
// to callers.
func validateResourceURL(field, value string, max int) error {
	if err := validateRequiredString(field, value, max); err != nil {
		return err
	}
	if !strings.Contains(value, "://") || !strings.Contains(value, ".") {
		return fmt.Errorf("%w: %s", ErrInvalidURL, field)
	}
	return nil
}
