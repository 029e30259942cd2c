package kvdb

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Checksum digests the entire store content in key order. Any write or
// delete anywhere in the store changes it; it is the staleness gate of
// the staged-action protocol.
func Checksum(db Iteratee) (uint64, error) {
	var (
		h    = xxhash.New()
		size [4]byte
		it   = db.NewIterator(nil, nil)
	)
	defer it.Release()

	for it.Next() {
		for _, field := range [][]byte{it.Key(), it.Value()} {
			binary.BigEndian.PutUint32(size[:], uint32(len(field)))
			h.Write(size[:])
			h.Write(field)
		}
	}
	if err := it.Error(); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
