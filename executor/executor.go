// Package executor commits staged actions once the user approves them.
//
// An approval re-reads the staged action under its checksum, applies it in
// a single batch together with the slot deletion and the history entry, and
// flushes. Any failure before the batch is written leaves the store as it
// was, so the user can retry.
package executor

import (
	"encoding/hex"
	"fmt"

	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/keyring"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/log"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/staging"
	"github.com/tos-network/gsigner/verifier"
)

var (
	ErrPasswordRequired = errs.New(errs.BadInput, "executor: this address needs a password")
	ErrWrongSecret      = errs.New(errs.BadInput, "executor: secret does not produce the staged public key")
)

// Approve executes the action referenced by actionJSON. For a signing
// action it returns the hex of the scheme tag followed by the signature;
// other actions return "".
func Approve(db kvdb.KeyValueStore, signer keyring.Signer, actionJSON, secret, password, comment string) (string, error) {
	ref, err := cards.ParseActionPayload(actionJSON)
	if err != nil {
		return "", err
	}
	a, err := staging.Take(db, ref.Kind, ref.Checksum)
	if err != nil {
		return "", err
	}

	var (
		batch  = db.NewBatch()
		result string
		events = append([]staging.Event{}, a.Events()...)
	)
	switch a := a.(type) {
	case *staging.Sign:
		sig, err := sign(signer, a, secret, password)
		if err != nil {
			return "", err
		}
		result = hex.EncodeToString(append([]byte{byte(a.Scheme)}, sig...))
		events = append(events, staging.NewEvent(staging.EventSigned,
			fmt.Sprintf("%s %x signed %x", a.Scheme, a.PublicKey, a.Message)))
	default:
		applied, err := apply(db, batch, a)
		if err != nil {
			return "", err
		}
		events = append(events, applied...)
	}
	if comment != "" {
		events = append(events, staging.NewEvent(staging.EventUserComment, comment))
	}

	if err := staging.ClearSlot(batch, ref.Kind); err != nil {
		return "", err
	}
	if _, err := staging.AppendHistory(db, batch, events); err != nil {
		return "", err
	}
	if err := batch.Write(); err != nil {
		return "", err
	}
	if err := db.Flush(); err != nil {
		return "", err
	}
	log.Info("Approved action", "kind", ref.Kind, "events", len(events))
	return result, nil
}

// sign produces the signature of a staged transaction and checks it
// against the staged author key.
func sign(signer keyring.Signer, a *staging.Sign, secret, password string) ([]byte, error) {
	if !a.HasPassword {
		password = ""
	} else if password == "" {
		return nil, ErrPasswordRequired
	}
	msg := a.Message
	if len(msg) > params.MaxMessageLength {
		digest := crypto.Blake2b256(msg)
		msg = digest[:]
	}
	sig, err := signer.Sign(a.Scheme, msg, a.Path, secret, password)
	if err != nil {
		return nil, err
	}
	if !crypto.Verify(a.Scheme, a.PublicKey, msg, sig) {
		return nil, fmt.Errorf("%w: %s%s", ErrWrongSecret, a.SeedName, a.Path)
	}
	return sig, nil
}

// apply queues the store mutation of a non-signing action on w. Verifier
// upgrades are re-admitted against the current store first.
func apply(db kvdb.KeyValueStore, w kvdb.KeyValueWriter, a staging.Action) ([]staging.Event, error) {
	ledger := verifier.NewLedger(db)
	switch a := a.(type) {
	case *staging.LoadMetadata:
		events, err := upgradeChain(ledger, w, a.Genesis, a.Verifier, a.ChainUpgrade)
		if err != nil {
			return nil, err
		}
		if a.GeneralUpgrade {
			if err := upgradeGeneral(ledger, w, a.Verifier); err != nil {
				return nil, err
			}
			events = append(events, generalEvent(a.Verifier))
		}
		ev, err := writeSchema(w, a.Blob)
		if err != nil {
			return nil, err
		}
		return append(events, ev), nil

	case *staging.UpdateChainVerifier:
		events, err := upgradeChain(ledger, w, a.Genesis, a.Verifier, true)
		if err != nil {
			return nil, err
		}
		if a.GeneralUpgrade {
			if err := upgradeGeneral(ledger, w, a.Verifier); err != nil {
				return nil, err
			}
			events = append(events, generalEvent(a.Verifier))
		}
		return events, nil

	case *staging.UpdateGeneralVerifier:
		if err := upgradeGeneral(ledger, w, a.Verifier); err != nil {
			return nil, err
		}
		return []staging.Event{generalEvent(a.Verifier)}, nil

	case *staging.LoadTypeCatalog:
		var events []staging.Event
		if a.GeneralUpgrade {
			if err := upgradeGeneral(ledger, w, a.Verifier); err != nil {
				return nil, err
			}
			events = append(events, generalEvent(a.Verifier))
		}
		if err := metadata.WriteTypeCatalog(w, a.Catalog); err != nil {
			return nil, err
		}
		digest := crypto.Blake2b256(a.Catalog)
		return append(events, staging.NewEvent(staging.EventTypesAdded, common.Hash(digest).Hex())), nil

	case *staging.AddChain:
		var events []staging.Event
		if a.GeneralUpgrade {
			if err := upgradeGeneral(ledger, w, a.Verifier); err != nil {
				return nil, err
			}
			events = append(events, generalEvent(a.Verifier))
		}
		if err := network.Insert(w, &a.Spec); err != nil {
			return nil, err
		}
		events = append(events, staging.NewEvent(staging.EventNetworkAdded,
			fmt.Sprintf("%s %s %s", a.Spec.Name, a.Spec.Scheme, a.Spec.GenesisHash)))
		current, known, err := ledger.ChainIfKnown(a.Spec.GenesisHash)
		if err != nil {
			return nil, err
		}
		write := !known
		if known {
			outcome, err := verifier.Admit(current, a.Verifier)
			if err != nil {
				return nil, err
			}
			write = outcome == verifier.Upgraded
		}
		if write {
			if err := verifier.WriteChain(w, a.Spec.GenesisHash, a.Verifier); err != nil {
				return nil, err
			}
			if known {
				events = append(events, staging.NewEvent(staging.EventVerifierSet, fmt.Sprintf("%s %s", a.Spec.GenesisHash, a.Verifier)))
			}
		}
		ev, err := writeSchema(w, a.Blob)
		if err != nil {
			return nil, err
		}
		return append(events, ev), nil
	}
	return nil, fmt.Errorf("%w: no commit for %T", errs.System, a)
}

// upgradeChain admits v for the chain scope and writes it when it raises
// the scope from None.
func upgradeChain(ledger *verifier.Ledger, w kvdb.KeyValueWriter, genesis common.Hash, v verifier.Verifier, upgrade bool) ([]staging.Event, error) {
	current, err := ledger.Chain(genesis)
	if err != nil {
		return nil, err
	}
	outcome, err := verifier.Admit(current, v)
	if err != nil {
		return nil, err
	}
	if !upgrade || outcome != verifier.Upgraded {
		return nil, nil
	}
	if err := verifier.WriteChain(w, genesis, v); err != nil {
		return nil, err
	}
	return []staging.Event{staging.NewEvent(staging.EventVerifierSet, fmt.Sprintf("%s %s", genesis, v))}, nil
}

func upgradeGeneral(ledger *verifier.Ledger, w kvdb.KeyValueWriter, v verifier.Verifier) error {
	current, err := ledger.General()
	if err != nil {
		return err
	}
	if _, err := verifier.Admit(current, v); err != nil {
		return err
	}
	return verifier.WriteGeneral(w, v)
}

func generalEvent(v verifier.Verifier) staging.Event {
	return staging.NewEvent(staging.EventGeneralSet, v.String())
}

func writeSchema(w kvdb.KeyValueWriter, blob []byte) (staging.Event, error) {
	schema, err := metadata.Parse(blob)
	if err != nil {
		return staging.Event{}, err
	}
	if err := metadata.WriteSchema(w, schema, blob); err != nil {
		return staging.Event{}, err
	}
	return staging.NewEvent(staging.EventMetadataAdded, fmt.Sprintf("%s %d", schema.Name(), schema.Version())), nil
}
