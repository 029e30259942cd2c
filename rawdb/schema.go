// Package rawdb lays out the signer's named collections on a flat
// key/value store and provides raw accessors for them. Values are opaque
// here; the owning packages encode and decode them.
package rawdb

import (
	"encoding/binary"

	"github.com/tos-network/gsigner/scale"
)

// The collections. Each is a one byte key prefix.
var (
	chainSpecPrefix = []byte("c") // chainSpecPrefix + identity -> encoded chain spec
	metadataPrefix  = []byte("m") // metadataPrefix + name + version (u32 BE) -> compressed schema blob
	verifierPrefix  = []byte("v") // verifierPrefix + genesis hash -> encoded chain verifier
	addressPrefix   = []byte("a") // addressPrefix + scheme + public key -> encoded address record
	stagedPrefix    = []byte("t") // stagedPrefix + slot tag -> staged action envelope
	historyPrefix   = []byte("h") // historyPrefix + sequence (u64 BE) -> history entry

	generalVerifierKey = []byte("s-general-verifier")
	typeCatalogKey     = []byte("s-types")
	historySeqKey      = []byte("s-history-seq")
)

func chainSpecKey(identity []byte) []byte {
	return append(append([]byte{}, chainSpecPrefix...), identity...)
}

// metadataNamePrefix encodes name with its length prefix, so that scanning
// "westend" never matches "westend2".
func metadataNamePrefix(name string) []byte {
	var e scale.Encoder
	e.PutFixed(metadataPrefix)
	e.PutString(name)
	return e.Bytes()
}

func metadataKey(name string, version uint32) []byte {
	return binary.BigEndian.AppendUint32(metadataNamePrefix(name), version)
}

func verifierKey(genesis []byte) []byte {
	return append(append([]byte{}, verifierPrefix...), genesis...)
}

func addressKey(scheme byte, pub []byte) []byte {
	key := append(append([]byte{}, addressPrefix...), scheme)
	return append(key, pub...)
}

func stagedKey(tag byte) []byte {
	return append(append([]byte{}, stagedPrefix...), tag)
}

func historyKey(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(append([]byte{}, historyPrefix...), seq)
}
