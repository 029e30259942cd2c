package staging

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/log"
	"github.com/tos-network/gsigner/rawdb"
	"github.com/tos-network/gsigner/scale"
)

const (
	envelopePrefix  = "GSSTAGE"
	envelopeVersion = uint8(1)
)

var (
	// ErrChecksumMismatch means the store changed after the action was staged.
	ErrChecksumMismatch = errors.New("staging: store changed since the action was staged")
	ErrBadEnvelope      = fmt.Errorf("%w: staged action not decodeable", scale.ErrSchemaViolation)
)

// WrongActionError is returned when the slot does not hold the kind the
// caller approves. Got is empty for an empty slot.
type WrongActionError struct {
	Want, Got cards.ActionKind
}

func (e *WrongActionError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("staging: no %s action staged", e.Want)
	}
	return fmt.Sprintf("staging: approving %s but %s is staged", e.Want, e.Got)
}

type envelope struct {
	Version uint8
	Tag     uint8
	Kind    string
	Body    []byte
}

// Encode wraps an action in its versioned envelope.
func Encode(a Action) ([]byte, error) {
	body, err := rlp.EncodeToBytes(a)
	if err != nil {
		return nil, err
	}
	env, err := rlp.EncodeToBytes(&envelope{Version: envelopeVersion, Tag: a.slot(), Kind: string(a.Kind()), Body: body})
	if err != nil {
		return nil, err
	}
	return append([]byte(envelopePrefix), env...), nil
}

// Decode is the inverse of Encode. It also returns the kind recorded at
// staging time.
func Decode(raw []byte) (Action, cards.ActionKind, error) {
	if !bytes.HasPrefix(raw, []byte(envelopePrefix)) {
		return nil, "", ErrBadEnvelope
	}
	var env envelope
	if err := rlp.DecodeBytes(raw[len(envelopePrefix):], &env); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Version != envelopeVersion {
		return nil, "", fmt.Errorf("%w: version %d", ErrBadEnvelope, env.Version)
	}
	a := newAction(env.Tag)
	if a == nil {
		return nil, "", fmt.Errorf("%w: slot tag %d", ErrBadEnvelope, env.Tag)
	}
	if err := rlp.DecodeBytes(env.Body, a); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	kind, err := cards.ParseActionKind(env.Kind)
	if err != nil || kind != a.Kind() {
		return nil, "", fmt.Errorf("%w: kind %q in slot %d", ErrBadEnvelope, env.Kind, env.Tag)
	}
	return a, kind, nil
}

// Stage writes a into its slot, flushes, and returns the store checksum the
// approval has to present.
func Stage(db kvdb.KeyValueStore, a Action) (uint64, error) {
	raw, err := Encode(a)
	if err != nil {
		return 0, err
	}
	if err := rawdb.WriteStaged(db, a.slot(), raw); err != nil {
		return 0, err
	}
	if err := db.Flush(); err != nil {
		return 0, err
	}
	sum, err := kvdb.Checksum(db)
	if err != nil {
		return 0, err
	}
	log.Debug("Staged action", "kind", a.Kind(), "checksum", sum)
	return sum, nil
}

// Take loads the action of kind if the store still hashes to checksum. It
// does not clear the slot; the executor does that in its commit batch.
func Take(db kvdb.Reader, kind cards.ActionKind, checksum uint64) (Action, error) {
	sum, err := kvdb.Checksum(db)
	if err != nil {
		return nil, err
	}
	if sum != checksum {
		log.Debug("Stale approval", "kind", kind, "have", sum, "want", checksum)
		return nil, ErrChecksumMismatch
	}
	tag, ok := SlotOf(kind)
	if !ok {
		return nil, &WrongActionError{Want: kind}
	}
	raw, err := rawdb.ReadStaged(db, tag)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, &WrongActionError{Want: kind}
	}
	a, staged, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if staged != kind {
		return nil, &WrongActionError{Want: kind, Got: staged}
	}
	return a, nil
}

// ClearSlot deletes the slot of kind on w.
func ClearSlot(w kvdb.KeyValueWriter, kind cards.ActionKind) error {
	tag, ok := SlotOf(kind)
	if !ok {
		return &WrongActionError{Want: kind}
	}
	return rawdb.DeleteStaged(w, tag)
}

// Pending returns the actions currently staged, in slot order.
func Pending(db kvdb.KeyValueReader) ([]Action, error) {
	var out []Action
	for tag := byte(0); tag < slotCount; tag++ {
		raw, err := rawdb.ReadStaged(db, tag)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		a, _, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", tag, err)
		}
		out = append(out, a)
	}
	return out, nil
}
