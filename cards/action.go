package cards

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tos-network/gsigner/errs"
)

// ActionKind names what an approval will do.
type ActionKind string

const (
	SignTransaction                   ActionKind = "sign_transaction"
	LoadMetadata                      ActionKind = "load_metadata"
	AddMetadataVerifier               ActionKind = "add_metadata_verifier"
	LoadTypes                         ActionKind = "load_types"
	AddGeneralVerifier                ActionKind = "add_general_verifier"
	AddTwoVerifiers                   ActionKind = "add_two_verifiers"
	LoadMetadataAndAddGeneralVerifier ActionKind = "load_metadata_and_add_general_verifier"
	AddNetwork                        ActionKind = "add_network"
	AddNetworkAndAddGeneralVerifier   ActionKind = "add_network_and_add_general_verifier"
)

var actionKinds = []ActionKind{
	SignTransaction, LoadMetadata, AddMetadataVerifier, LoadTypes, AddGeneralVerifier,
	AddTwoVerifiers, LoadMetadataAndAddGeneralVerifier, AddNetwork, AddNetworkAndAddGeneralVerifier,
}

var ErrBadAction = errs.New(errs.BadInput, "cards: action payload not understood")

// ParseActionKind validates an action kind name.
func ParseActionKind(s string) (ActionKind, error) {
	for _, k := range actionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrBadAction, s)
}

// Action is the reference handed back with a staged action. The checksum
// must be echoed unchanged on approval.
type Action struct {
	Kind     ActionKind
	Checksum uint64
}

type actionPayload struct {
	Type     string `json:"type"`
	Checksum string `json:"checksum"`
}

type actionJSON struct {
	Type    string        `json:"type"`
	Payload actionPayload `json:"payload"`
}

func (a *Action) payload() actionPayload {
	return actionPayload{Type: string(a.Kind), Checksum: strconv.FormatUint(a.Checksum, 10)}
}

// Payload is the JSON the host passes back to approve.
func (a *Action) Payload() string {
	out, _ := json.Marshal(a.payload())
	return string(out)
}

func (a *Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionJSON{Type: string(a.Kind), Payload: a.payload()})
}

// ParseActionPayload is the inverse of Action.Payload.
func ParseActionPayload(raw string) (*Action, error) {
	var p actionPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAction, err)
	}
	kind, err := ParseActionKind(p.Type)
	if err != nil {
		return nil, err
	}
	sum, err := strconv.ParseUint(p.Checksum, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: checksum %q", ErrBadAction, p.Checksum)
	}
	return &Action{Kind: kind, Checksum: sum}, nil
}
