// Package common contains small types shared by the signer packages.
package common

import (
	"encoding/hex"
	"errors"
	"strings"
)

// HashLength is the length of a genesis or block hash.
const HashLength = 32

var ErrHashLength = errors.New("common: hash must be 32 bytes")

// Hash is a 32 byte chain hash (genesis hash, block hash).
type Hash [HashLength]byte

// BytesToHash sets b to hash. If b is larger than len(h), b will be cropped from the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash parses a hex string, with or without the 0x prefix, into a hash.
func HexToHash(s string) (Hash, error) {
	b, err := FromHex(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, ErrHashLength
	}
	return BytesToHash(b), nil
}

// SetBytes sets the hash to the value of b.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the lowercase hex form without prefix, which is how hashes
// appear on display cards.
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// FromHex decodes a hex string, tolerating a 0x prefix and surrounding space.
func FromHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

// CopyBytes returns an exact copy of the provided bytes.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cpy := make([]byte, len(b))
	copy(cpy, b)
	return cpy
}
