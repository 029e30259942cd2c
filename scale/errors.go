// Package scale implements the compact binary codec used by every payload
// and schema the signer handles: little-endian fixed integers, compact
// variable-length integers, length-prefixed byte strings, options and
// one-byte enum tags.
//
// The decoder is strict. Short input, non-minimal compact integers, bad
// option or bool tags, out-of-range enum tags and trailing bytes are all
// errors, and decoding never panics on hostile input.
package scale

import "github.com/tos-network/gsigner/errs"

var (
	ErrShortInput      = errs.New(errs.NotDecodeable, "scale: unexpected end of input")
	ErrSchemaViolation = errs.New(errs.NotDecodeable, "scale: schema violation")
	ErrNonCanonical    = errs.New(errs.NotDecodeable, "scale: non-canonical compact integer")
	ErrOverflow        = errs.New(errs.NotDecodeable, "scale: integer overflow")
	ErrTrailingBytes   = errs.New(errs.NotDecodeable, "scale: trailing bytes")
	ErrInvalidUTF8     = errs.New(errs.NotDecodeable, "scale: invalid utf-8 string")
)
