package staging

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/uuid"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/rawdb"
)

// Event kinds recorded in history.
const (
	EventWarning       = "warning"
	EventSigned        = "transaction_signed"
	EventMetadataAdded = "metadata_added"
	EventNetworkAdded  = "network_added"
	EventVerifierSet   = "network_verifier_set"
	EventGeneralSet    = "general_verifier_set"
	EventTypesAdded    = "types_added"
	EventUserComment   = "user_comment"
)

// Event is one audit log line.
type Event struct {
	ID     string
	Kind   string
	Detail string
}

// NewEvent stamps a fresh event id.
func NewEvent(kind, detail string) Event {
	return Event{ID: uuid.New().String(), Kind: kind, Detail: detail}
}

func (e Event) String() string { return fmt.Sprintf("%s: %s", e.Kind, e.Detail) }

// Entry is one committed history record.
type Entry struct {
	Seq    uint64 `rlp:"-"`
	Time   uint64
	Events []Event
}

var ErrBadHistory = errs.New(errs.NotDecodeable, "staging: history entry not decodeable")

// AppendHistory queues events as the next history entry on w. The sequence
// counter is read from r.
func AppendHistory(r kvdb.KeyValueReader, w kvdb.KeyValueWriter, events []Event) (uint64, error) {
	raw, err := rlp.EncodeToBytes(&Entry{Time: uint64(time.Now().Unix()), Events: events})
	if err != nil {
		return 0, err
	}
	return rawdb.AppendHistory(r, w, raw)
}

// History returns all committed entries, oldest first.
func History(db kvdb.Iteratee) ([]Entry, error) {
	var out []Entry
	err := rawdb.IterateHistory(db, func(seq uint64, raw []byte) error {
		var e Entry
		if err := rlp.DecodeBytes(raw, &e); err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrBadHistory, seq, err)
		}
		e.Seq = seq
		out = append(out, e)
		return nil
	})
	return out, err
}
