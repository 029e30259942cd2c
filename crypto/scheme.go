// Package crypto names the signature schemes the signer understands and
// verifies signatures made with them.
package crypto

import (
	"fmt"

	"github.com/tos-network/gsigner/errs"
)

// Scheme is a signature scheme. Its numeric value is the wire tag.
type Scheme uint8

const (
	Ed25519 Scheme = 0x00
	Sr25519 Scheme = 0x01
	Ecdsa   Scheme = 0x02
)

var ErrUnknownScheme = errs.New(errs.BadInput, "crypto: unknown signature scheme")

// ParseScheme maps a wire tag to a Scheme.
func ParseScheme(tag byte) (Scheme, error) {
	s := Scheme(tag)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: tag %#x", ErrUnknownScheme, tag)
	}
	return s, nil
}

// SchemeFromName is the inverse of String.
func SchemeFromName(name string) (Scheme, error) {
	for _, s := range []Scheme{Ed25519, Sr25519, Ecdsa} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

func (s Scheme) Valid() bool { return s <= Ecdsa }

func (s Scheme) String() string {
	switch s {
	case Ed25519:
		return "ed25519"
	case Sr25519:
		return "sr25519"
	case Ecdsa:
		return "ecdsa"
	}
	return fmt.Sprintf("scheme(%d)", uint8(s))
}

// PublicKeyLen is the encoded public key size.
func (s Scheme) PublicKeyLen() int {
	if s == Ecdsa {
		return 33
	}
	return 32
}

// SignatureLen is the encoded signature size.
func (s Scheme) SignatureLen() int {
	if s == Ecdsa {
		return 65
	}
	return 64
}
