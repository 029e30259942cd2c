package verifier

import (
	"fmt"

	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/rawdb"
)

var (
	ErrNoGeneralVerifier = errs.New(errs.NotFound, "verifier: general verifier not initialized")
	ErrNoChainVerifier   = errs.New(errs.NotFound, "verifier: no verifier record for this chain")
)

// Ledger reads verifier state. Writes go through WriteGeneral and
// WriteChain so the executor can batch them with the rest of a commit.
type Ledger struct {
	db kvdb.KeyValueReader
}

func NewLedger(db kvdb.KeyValueReader) *Ledger {
	return &Ledger{db: db}
}

// General returns the verifier guarding types and network admission.
func (l *Ledger) General() (Verifier, error) {
	raw, err := rawdb.ReadGeneralVerifier(l.db)
	if err != nil {
		return None, err
	}
	if raw == nil {
		return None, ErrNoGeneralVerifier
	}
	return Decode(raw)
}

// Chain returns the verifier of the chain with the given genesis hash.
func (l *Ledger) Chain(genesis common.Hash) (Verifier, error) {
	v, ok, err := l.ChainIfKnown(genesis)
	if err != nil {
		return None, err
	}
	if !ok {
		return None, fmt.Errorf("%w: %s", ErrNoChainVerifier, genesis)
	}
	return v, nil
}

// ChainIfKnown is Chain without the not-found error.
func (l *Ledger) ChainIfKnown(genesis common.Hash) (Verifier, bool, error) {
	raw, err := rawdb.ReadChainVerifier(l.db, genesis[:])
	if err != nil || raw == nil {
		return None, false, err
	}
	v, err := Decode(raw)
	return v, err == nil, err
}

func WriteGeneral(w kvdb.KeyValueWriter, v Verifier) error {
	return rawdb.WriteGeneralVerifier(w, v.Encode())
}

func WriteChain(w kvdb.KeyValueWriter, genesis common.Hash, v Verifier) error {
	return rawdb.WriteChainVerifier(w, genesis[:], v.Encode())
}
