package crypto

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"
)

var ss58Prefix = []byte("SS58PRE")

var (
	ErrSS58Format   = errors.New("crypto: malformed ss58 address")
	ErrSS58Checksum = errors.New("crypto: ss58 checksum mismatch")
)

// SS58Encode renders an account public key as base58 text with a network
// prefix and a two byte blake2b checksum. Keys longer than 32 bytes
// (ecdsa) are reduced to their blake2b-256 account id first.
func SS58Encode(pub []byte, prefix uint16) string {
	account := pub
	if len(pub) > 32 {
		h := Blake2b256(pub)
		account = h[:]
	}
	var data []byte
	if prefix < 64 {
		data = append(data, byte(prefix))
	} else {
		data = append(data,
			byte((prefix&0x00fc)>>2)|0x40,
			byte(prefix>>8)|byte((prefix&0x0003)<<6),
		)
	}
	data = append(data, account...)
	sum := Blake2b512(ss58Prefix, data)
	return base58.Encode(append(data, sum[:2]...))
}

// SS58Decode parses an address produced by SS58Encode.
func SS58Decode(addr string) ([]byte, uint16, error) {
	raw := base58.Decode(addr)
	if len(raw) < 3 {
		return nil, 0, ErrSS58Format
	}
	var (
		prefix uint16
		skip   int
	)
	switch {
	case raw[0] < 64:
		prefix, skip = uint16(raw[0]), 1
	case raw[0] < 128:
		if len(raw) < 4 {
			return nil, 0, ErrSS58Format
		}
		lower := (raw[0] << 2) | (raw[1] >> 6)
		upper := raw[1] & 0x3f
		prefix, skip = uint16(lower)|uint16(upper)<<8, 2
	default:
		return nil, 0, ErrSS58Format
	}
	body, check := raw[:len(raw)-2], raw[len(raw)-2:]
	sum := Blake2b512(ss58Prefix, body)
	if !bytes.Equal(sum[:2], check) {
		return nil, 0, ErrSS58Checksum
	}
	return body[skip:], prefix, nil
}
