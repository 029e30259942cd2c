package crypto

import "golang.org/x/crypto/blake2b"

// Blake2b256 hashes the concatenation of data.
func Blake2b256(data ...[]byte) [32]byte {
	h, _ := blake2b.New256(nil)
	for _, b := range data {
		h.Write(b)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// Blake2b512 hashes the concatenation of data.
func Blake2b512(data ...[]byte) [64]byte {
	h, _ := blake2b.New512(nil)
	for _, b := range data {
		h.Write(b)
	}
	var out [64]byte
	h.Sum(out[:0])
	return out
}
