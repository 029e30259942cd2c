// Package errs defines the error categories every signer failure falls into.
//
// Domain packages declare their own sentinel errors wrapping one of these
// categories, so callers can classify with errors.Is(err, errs.NotFound)
// while the message still names the concrete failure.
package errs

import (
	"errors"
	"fmt"
)

var (
	// BadInput marks malformed or inconsistent payloads received from outside.
	BadInput = errors.New("bad input data")
	// NotDecodeable marks bytes that fail to decode against their schema.
	NotDecodeable = errors.New("not decodeable")
	// NotFound marks lookups that hit nothing in the local store.
	NotFound = errors.New("not found")
	// Trust marks verifier transitions that would weaken trust.
	Trust = errors.New("verifier trust violation")
	// System marks internal inconsistency of the local store.
	System = errors.New("system error")
)

// Category is one of the sentinels above.
type Category error

// New declares a sentinel error in category cat.
func New(cat Category, msg string) error {
	return fmt.Errorf("%w: %s", cat, msg)
}

// Classify reports the category of err, or nil when err is uncategorized.
func Classify(err error) Category {
	for _, cat := range []Category{BadInput, NotDecodeable, NotFound, Trust, System} {
		if errors.Is(err, cat) {
			return cat
		}
	}
	return nil
}
