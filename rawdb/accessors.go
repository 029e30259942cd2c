package rawdb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/kvdb"
)

var ErrCorruptSchema = errs.New(errs.System, "rawdb: stored schema is corrupt")

// get returns nil, nil for a missing key.
func get(db kvdb.KeyValueReader, key []byte) ([]byte, error) {
	data, err := db.Get(key)
	if errors.Is(err, kvdb.ErrNotFound) {
		return nil, nil
	}
	return data, err
}

// ReadChainSpec returns the encoded chain spec stored under identity, or nil.
func ReadChainSpec(db kvdb.KeyValueReader, identity []byte) ([]byte, error) {
	return get(db, chainSpecKey(identity))
}

func WriteChainSpec(db kvdb.KeyValueWriter, identity, spec []byte) error {
	return db.Put(chainSpecKey(identity), spec)
}

// IterateChainSpecs calls fn with every stored identity and spec in key order.
func IterateChainSpecs(db kvdb.Iteratee, fn func(identity, spec []byte) error) error {
	return iterate(db, chainSpecPrefix, func(key, value []byte) error {
		return fn(key[len(chainSpecPrefix):], value)
	})
}

// ReadMetadata returns the uncompressed schema blob of name at version, or nil.
func ReadMetadata(db kvdb.KeyValueReader, name string, version uint32) ([]byte, error) {
	data, err := get(db, metadataKey(name, version))
	if err != nil || data == nil {
		return nil, err
	}
	blob, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %d: %v", ErrCorruptSchema, name, version, err)
	}
	return blob, nil
}

// WriteMetadata stores a schema blob compressed.
func WriteMetadata(db kvdb.KeyValueWriter, name string, version uint32, blob []byte) error {
	return db.Put(metadataKey(name, version), snappy.Encode(nil, blob))
}

// ReadMetadataVersions lists the stored versions of name in ascending order.
func ReadMetadataVersions(db kvdb.Iteratee, name string) ([]uint32, error) {
	prefix := metadataNamePrefix(name)
	var versions []uint32
	err := iterate(db, prefix, func(key, _ []byte) error {
		if len(key) != len(prefix)+4 {
			return fmt.Errorf("%w: bad metadata key %x", ErrCorruptSchema, key)
		}
		versions = append(versions, binary.BigEndian.Uint32(key[len(prefix):]))
		return nil
	})
	return versions, err
}

func ReadChainVerifier(db kvdb.KeyValueReader, genesis []byte) ([]byte, error) {
	return get(db, verifierKey(genesis))
}

func WriteChainVerifier(db kvdb.KeyValueWriter, genesis, verifier []byte) error {
	return db.Put(verifierKey(genesis), verifier)
}

func ReadGeneralVerifier(db kvdb.KeyValueReader) ([]byte, error) {
	return get(db, generalVerifierKey)
}

func WriteGeneralVerifier(db kvdb.KeyValueWriter, verifier []byte) error {
	return db.Put(generalVerifierKey, verifier)
}

func ReadTypeCatalog(db kvdb.KeyValueReader) ([]byte, error) {
	return get(db, typeCatalogKey)
}

func WriteTypeCatalog(db kvdb.KeyValueWriter, catalog []byte) error {
	return db.Put(typeCatalogKey, catalog)
}

func ReadAddress(db kvdb.KeyValueReader, scheme byte, pub []byte) ([]byte, error) {
	return get(db, addressKey(scheme, pub))
}

func WriteAddress(db kvdb.KeyValueWriter, scheme byte, pub, record []byte) error {
	return db.Put(addressKey(scheme, pub), record)
}

// IterateAddresses calls fn with the scheme, public key and record of every address.
func IterateAddresses(db kvdb.Iteratee, fn func(scheme byte, pub, record []byte) error) error {
	return iterate(db, addressPrefix, func(key, value []byte) error {
		if len(key) < len(addressPrefix)+1 {
			return nil
		}
		return fn(key[len(addressPrefix)], key[len(addressPrefix)+1:], value)
	})
}

func ReadStaged(db kvdb.KeyValueReader, tag byte) ([]byte, error) {
	return get(db, stagedKey(tag))
}

func WriteStaged(db kvdb.KeyValueWriter, tag byte, envelope []byte) error {
	return db.Put(stagedKey(tag), envelope)
}

func DeleteStaged(db kvdb.KeyValueWriter, tag byte) error {
	return db.Delete(stagedKey(tag))
}

// AppendHistory writes entry under the next sequence number. The counter
// read happens against r and both writes go to w, so a batch stays atomic.
func AppendHistory(r kvdb.KeyValueReader, w kvdb.KeyValueWriter, entry []byte) (uint64, error) {
	raw, err := get(r, historySeqKey)
	if err != nil {
		return 0, err
	}
	var seq uint64
	if len(raw) == 8 {
		seq = binary.BigEndian.Uint64(raw)
	}
	if err := w.Put(historyKey(seq), entry); err != nil {
		return 0, err
	}
	return seq, w.Put(historySeqKey, binary.BigEndian.AppendUint64(nil, seq+1))
}

// IterateHistory calls fn for every history entry, oldest first.
func IterateHistory(db kvdb.Iteratee, fn func(seq uint64, entry []byte) error) error {
	return iterate(db, historyPrefix, func(key, value []byte) error {
		if len(key) != len(historyPrefix)+8 {
			return nil
		}
		return fn(binary.BigEndian.Uint64(key[len(historyPrefix):]), value)
	})
}

func iterate(db kvdb.Iteratee, prefix []byte, fn func(key, value []byte) error) error {
	it := db.NewIterator(prefix, nil)
	defer it.Release()

	for it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}
