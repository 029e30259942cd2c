// Package verifier tracks who may vouch for chain updates.
//
// Trust is monotonic: a scope goes from unverified (None) to one fixed key
// and never back or sideways. The general verifier guards the type catalog
// and new-network admission; each chain has its own verifier guarding its
// metadata.
package verifier

import (
	"bytes"
	"fmt"

	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/scale"
)

var (
	ErrVerifierDisappeared = errs.New(errs.Trust, "verifier: update is unsigned but the scope already has a verifier")
	ErrBadVerifier         = errs.New(errs.NotDecodeable, "verifier: record not decodeable")
)

// Verifier is either None (the zero value) or a public key with its scheme.
type Verifier struct {
	Scheme    crypto.Scheme
	PublicKey []byte
}

// None is the unverified state.
var None = Verifier{}

// Signed returns the verifier of a signed update.
func Signed(scheme crypto.Scheme, pub []byte) Verifier {
	return Verifier{Scheme: scheme, PublicKey: append([]byte{}, pub...)}
}

func (v Verifier) IsNone() bool { return len(v.PublicKey) == 0 }

func (v Verifier) Equal(o Verifier) bool {
	if v.IsNone() || o.IsNone() {
		return v.IsNone() == o.IsNone()
	}
	return v.Scheme == o.Scheme && bytes.Equal(v.PublicKey, o.PublicKey)
}

func (v Verifier) String() string {
	if v.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s:%x", v.Scheme, v.PublicKey)
}

// Encode writes tag 0 for None or tag 1, scheme tag and key.
func (v Verifier) Encode() []byte {
	var e scale.Encoder
	if v.IsNone() {
		e.PutByte(0)
		return e.Bytes()
	}
	e.PutByte(1)
	e.PutByte(byte(v.Scheme))
	e.PutFixed(v.PublicKey)
	return e.Bytes()
}

// Decode is the inverse of Encode.
func Decode(raw []byte) (Verifier, error) {
	d := scale.NewDecoder(raw)
	tag, err := d.ReadEnum(2)
	if err != nil {
		return None, fmt.Errorf("%w: %v", ErrBadVerifier, err)
	}
	if tag == 0 {
		if err := d.Finish(); err != nil {
			return None, fmt.Errorf("%w: %v", ErrBadVerifier, err)
		}
		return None, nil
	}
	st, err := d.ReadByte()
	if err != nil {
		return None, fmt.Errorf("%w: %v", ErrBadVerifier, err)
	}
	scheme, err := crypto.ParseScheme(st)
	if err != nil {
		return None, fmt.Errorf("%w: %v", ErrBadVerifier, err)
	}
	pub, err := d.ReadFixed(scheme.PublicKeyLen())
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return None, fmt.Errorf("%w: %v", ErrBadVerifier, err)
	}
	return Signed(scheme, pub), nil
}

// Outcome is the result of admitting an incoming verifier.
type Outcome int

const (
	// Unchanged means the stored verifier already equals the incoming one.
	Unchanged Outcome = iota
	// Upgraded means the scope goes from None to a verifier.
	Upgraded
)

func (o Outcome) String() string {
	if o == Upgraded {
		return "upgraded"
	}
	return "unchanged"
}

// ChangedError is returned when a signed update comes from a key other than
// the one already trusted.
type ChangedError struct {
	Old, New Verifier
}

func (e *ChangedError) Error() string {
	return fmt.Sprintf("%v: verifier changed from %v to %v", errs.Trust, e.Old, e.New)
}

func (e *ChangedError) Unwrap() error { return errs.Trust }

// Admit decides whether an update signed by incoming may touch a scope
// currently held by current. It never mutates anything.
func Admit(current, incoming Verifier) (Outcome, error) {
	switch {
	case current.IsNone() && incoming.IsNone():
		return Unchanged, nil
	case current.IsNone():
		return Upgraded, nil
	case incoming.IsNone():
		return Unchanged, ErrVerifierDisappeared
	case current.Equal(incoming):
		return Unchanged, nil
	default:
		return Unchanged, &ChangedError{Old: current, New: incoming}
	}
}
