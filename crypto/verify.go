package crypto

import (
	"bytes"
	"crypto/ed25519"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// SigningContext is the sr25519 transcript label shared with the chains
// the signer serves.
var SigningContext = []byte("substrate")

// Verify reports whether sig is a valid signature of msg by pub under s.
// Malformed keys or signatures verify as false.
func Verify(s Scheme, pub, msg, sig []byte) bool {
	if len(pub) != s.PublicKeyLen() || len(sig) != s.SignatureLen() {
		return false
	}
	switch s {
	case Ed25519:
		return ed25519.Verify(pub, msg, sig)
	case Sr25519:
		return verifySr25519(pub, msg, sig)
	case Ecdsa:
		return verifyEcdsa(pub, msg, sig)
	}
	return false
}

func verifySr25519(pub, msg, sig []byte) bool {
	var (
		pk  schnorrkel.PublicKey
		s   schnorrkel.Signature
		raw [32]byte
		rs  [64]byte
	)
	copy(raw[:], pub)
	copy(rs[:], sig)
	if err := pk.Decode(raw); err != nil {
		return false
	}
	if err := s.Decode(rs); err != nil {
		return false
	}
	ok, err := pk.Verify(&s, schnorrkel.NewSigningContext(SigningContext, msg))
	return err == nil && ok
}

// verifyEcdsa checks an r‖s‖v signature over the blake2b-256 digest of msg
// by recovering the signer and comparing compressed keys.
func verifyEcdsa(pub, msg, sig []byte) bool {
	if sig[64] > 3 {
		return false
	}
	digest := Blake2b256(msg)
	compact := make([]byte, 65)
	compact[0] = 27 + 4 + sig[64]
	copy(compact[1:], sig[:64])
	recovered, compressed, err := btcecdsa.RecoverCompact(compact, digest[:])
	if err != nil || !compressed {
		return false
	}
	if _, err := btcec.ParsePubKey(pub); err != nil {
		return false
	}
	return bytes.Equal(recovered.SerializeCompressed(), pub)
}

// SignEcdsa produces the r‖s‖v signature Verify accepts, over the
// blake2b-256 digest of msg.
func SignEcdsa(key *btcec.PrivateKey, msg []byte) ([]byte, error) {
	digest := Blake2b256(msg)
	compact, err := btcecdsa.SignCompact(key, digest[:], true)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, 65)
	copy(sig, compact[1:])
	sig[64] = compact[0] - 27 - 4
	return sig, nil
}
