// Package keyring derives signing keys from a recovery phrase.
package keyring

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tyler-smith/go-bip39"
)

var (
	ErrBadMnemonic  = errs.New(errs.BadInput, "keyring: invalid recovery phrase")
	ErrBadPath      = errs.New(errs.BadInput, "keyring: malformed derivation path")
	ErrUnsupported  = errs.New(errs.BadInput, "keyring: scheme not supported")
	ErrMnemonicBits = errs.New(errs.BadInput, "keyring: invalid entropy size")
)

// Signer is the signing capability the executor calls on approval.
type Signer interface {
	Public(scheme crypto.Scheme, path, secret, password string) ([]byte, error)
	Sign(scheme crypto.Scheme, message []byte, path, secret, password string) ([]byte, error)
}

// Keyring derives one key per (phrase, path, password) and signs with it.
type Keyring struct{}

// New returns a Keyring.
func New() *Keyring { return new(Keyring) }

// Generate returns a fresh phrase with the given entropy size.
func Generate(bits int) (string, error) {
	switch bits {
	case 128, 160, 192, 224, 256:
	default:
		return "", fmt.Errorf("%w: %d (allowed: 128,160,192,224,256)", ErrMnemonicBits, bits)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// derive maps the phrase seed and the path to a 32-byte key seed. The
// password salts the phrase seed.
func derive(path, secret, password string) ([32]byte, error) {
	phrase := strings.Join(strings.Fields(secret), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return [32]byte{}, ErrBadMnemonic
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		return [32]byte{}, fmt.Errorf("%w: %q", ErrBadPath, path)
	}
	seed := bip39.NewSeed(phrase, password)
	return crypto.Blake2b256(seed, []byte(path)), nil
}

func (k *Keyring) Public(scheme crypto.Scheme, path, secret, password string) ([]byte, error) {
	seed, err := derive(path, secret, password)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case crypto.Ed25519:
		return ed25519.NewKeyFromSeed(seed[:]).Public().(ed25519.PublicKey), nil
	case crypto.Sr25519:
		sk, err := srKey(seed)
		if err != nil {
			return nil, err
		}
		pub, err := sk.Public()
		if err != nil {
			return nil, err
		}
		enc := pub.Encode()
		return enc[:], nil
	case crypto.Ecdsa:
		priv, _ := btcec.PrivKeyFromBytes(seed[:])
		return priv.PubKey().SerializeCompressed(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupported, scheme)
}

func (k *Keyring) Sign(scheme crypto.Scheme, message []byte, path, secret, password string) ([]byte, error) {
	seed, err := derive(path, secret, password)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case crypto.Ed25519:
		return ed25519.Sign(ed25519.NewKeyFromSeed(seed[:]), message), nil
	case crypto.Sr25519:
		sk, err := srKey(seed)
		if err != nil {
			return nil, err
		}
		sig, err := sk.Sign(schnorrkel.NewSigningContext(crypto.SigningContext, message))
		if err != nil {
			return nil, err
		}
		enc := sig.Encode()
		return enc[:], nil
	case crypto.Ecdsa:
		priv, _ := btcec.PrivKeyFromBytes(seed[:])
		return crypto.SignEcdsa(priv, message)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupported, scheme)
}

func srKey(seed [32]byte) (*schnorrkel.SecretKey, error) {
	msk, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
	if err != nil {
		return nil, err
	}
	return msk.ExpandEd25519(), nil
}
