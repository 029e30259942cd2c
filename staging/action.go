// Package staging holds actions between parse and approval.
//
// Each action kind has one slot in the store. Staging overwrites the slot,
// flushes, and hands back a checksum of the whole store; approval must echo
// that checksum, so anything written in between invalidates the action.
package staging

import (
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/verifier"
)

// Slot tags.
const (
	SlotSign byte = iota
	SlotLoadMetadata
	SlotChainVerifier
	SlotGeneralVerifier
	SlotLoadTypes
	SlotAddChain
	slotCount
)

// Action is the closed set of staged actions.
type Action interface {
	// Kind is the exact kind the user approves.
	Kind() cards.ActionKind
	// Events are the audit entries collected while parsing.
	Events() []Event
	slot() byte
}

// Sign is a transaction awaiting a signature.
type Sign struct {
	Scheme      crypto.Scheme
	PublicKey   []byte
	SeedName    string
	Path        string
	HasPassword bool
	Message     []byte
	History     []Event
}

// LoadMetadata stores a new schema blob for a known chain and optionally
// upgrades the chain and general verifiers along with it.
type LoadMetadata struct {
	Genesis        common.Hash
	Blob           []byte
	Verifier       verifier.Verifier // signer of the update
	ChainUpgrade   bool
	GeneralUpgrade bool
	History        []Event
}

// UpdateChainVerifier sets the verifier of a chain whose schema is already
// on record, optionally together with the general verifier.
type UpdateChainVerifier struct {
	Genesis        common.Hash
	Verifier       verifier.Verifier
	GeneralUpgrade bool
	History        []Event
}

// UpdateGeneralVerifier sets the general verifier alone.
type UpdateGeneralVerifier struct {
	Verifier verifier.Verifier
	History  []Event
}

// LoadTypeCatalog replaces the type catalog.
type LoadTypeCatalog struct {
	Catalog        []byte
	Verifier       verifier.Verifier
	GeneralUpgrade bool
	History        []Event
}

// AddChain records a new network with its first schema.
type AddChain struct {
	Spec           network.ChainSpec
	Blob           []byte
	Verifier       verifier.Verifier
	GeneralUpgrade bool
	History        []Event
}

func (a *Sign) Kind() cards.ActionKind { return cards.SignTransaction }
func (a *Sign) Events() []Event        { return a.History }
func (a *Sign) slot() byte             { return SlotSign }

func (a *LoadMetadata) Kind() cards.ActionKind {
	if a.GeneralUpgrade {
		return cards.LoadMetadataAndAddGeneralVerifier
	}
	return cards.LoadMetadata
}
func (a *LoadMetadata) Events() []Event { return a.History }
func (a *LoadMetadata) slot() byte      { return SlotLoadMetadata }

func (a *UpdateChainVerifier) Kind() cards.ActionKind {
	if a.GeneralUpgrade {
		return cards.AddTwoVerifiers
	}
	return cards.AddMetadataVerifier
}
func (a *UpdateChainVerifier) Events() []Event { return a.History }
func (a *UpdateChainVerifier) slot() byte      { return SlotChainVerifier }

func (a *UpdateGeneralVerifier) Kind() cards.ActionKind { return cards.AddGeneralVerifier }
func (a *UpdateGeneralVerifier) Events() []Event        { return a.History }
func (a *UpdateGeneralVerifier) slot() byte             { return SlotGeneralVerifier }

func (a *LoadTypeCatalog) Kind() cards.ActionKind { return cards.LoadTypes }
func (a *LoadTypeCatalog) Events() []Event        { return a.History }
func (a *LoadTypeCatalog) slot() byte             { return SlotLoadTypes }

func (a *AddChain) Kind() cards.ActionKind {
	if a.GeneralUpgrade {
		return cards.AddNetworkAndAddGeneralVerifier
	}
	return cards.AddNetwork
}
func (a *AddChain) Events() []Event { return a.History }
func (a *AddChain) slot() byte      { return SlotAddChain }

// SlotOf returns the slot an action of kind lives in.
func SlotOf(kind cards.ActionKind) (byte, bool) {
	switch kind {
	case cards.SignTransaction:
		return SlotSign, true
	case cards.LoadMetadata, cards.LoadMetadataAndAddGeneralVerifier:
		return SlotLoadMetadata, true
	case cards.AddMetadataVerifier, cards.AddTwoVerifiers:
		return SlotChainVerifier, true
	case cards.AddGeneralVerifier:
		return SlotGeneralVerifier, true
	case cards.LoadTypes:
		return SlotLoadTypes, true
	case cards.AddNetwork, cards.AddNetworkAndAddGeneralVerifier:
		return SlotAddChain, true
	}
	return 0, false
}

func newAction(tag byte) Action {
	switch tag {
	case SlotSign:
		return new(Sign)
	case SlotLoadMetadata:
		return new(LoadMetadata)
	case SlotChainVerifier:
		return new(UpdateChainVerifier)
	case SlotGeneralVerifier:
		return new(UpdateGeneralVerifier)
	case SlotLoadTypes:
		return new(LoadTypeCatalog)
	case SlotAddChain:
		return new(AddChain)
	}
	return nil
}
