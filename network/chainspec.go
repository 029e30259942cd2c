// Package network keeps the registry of chains the signer knows.
//
// A chain is identified by its genesis hash together with the signature
// scheme its accounts use; the same genesis hash may be registered once per
// scheme.
package network

import (
	"fmt"

	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/scale"
)

var (
	ErrNoNetwork          = errs.New(errs.NotFound, "network: no chain spec for this genesis hash and scheme")
	ErrNetworkOtherScheme = errs.New(errs.NotFound, "network: genesis hash is only on record for another signature scheme")
	ErrIdentityMismatch   = errs.New(errs.NotDecodeable, "network: stored chain spec does not match its identity")
	ErrBadChainSpec       = errs.New(errs.NotDecodeable, "network: chain spec not decodeable")
	ErrBadIdentity        = errs.New(errs.NotDecodeable, "network: malformed identity")
	ErrSpecsChanged       = errs.New(errs.BadInput, "network: received chain spec changes important fields of a known network")
)

// IdentityLength is one scheme tag byte plus a genesis hash.
const IdentityLength = 1 + common.HashLength

// Identity is the storage key of a chain: scheme tag followed by genesis hash.
type Identity [IdentityLength]byte

// DeriveIdentity is a pure function of its inputs.
func DeriveIdentity(genesis common.Hash, scheme crypto.Scheme) Identity {
	var id Identity
	id[0] = byte(scheme)
	copy(id[1:], genesis[:])
	return id
}

// ParseIdentity reads an identity from its raw bytes.
func ParseIdentity(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentityLength {
		return id, ErrBadIdentity
	}
	copy(id[:], b)
	if _, err := crypto.ParseScheme(id[0]); err != nil {
		return id, fmt.Errorf("%w: %v", ErrBadIdentity, err)
	}
	return id, nil
}

// Split reverses DeriveIdentity.
func (id Identity) Split() (common.Hash, crypto.Scheme) {
	return common.BytesToHash(id[1:]), crypto.Scheme(id[0])
}

func (id Identity) Bytes() []byte { return id[:] }

func (id Identity) String() string { return fmt.Sprintf("%x", id[:]) }

// ChainSpec describes a chain enough to render and sign its transactions.
type ChainSpec struct {
	Base58Prefix   uint16        `yaml:"base58prefix"`
	Color          string        `yaml:"color"`
	Decimals       uint8         `yaml:"decimals"`
	Scheme         crypto.Scheme `yaml:"-"`
	GenesisHash    common.Hash   `yaml:"-"`
	Logo           string        `yaml:"logo"`
	Name           string        `yaml:"name"`
	PathID         string        `yaml:"path_id"`
	SecondaryColor string        `yaml:"secondary_color"`
	Title          string        `yaml:"title"`
	Unit           string        `yaml:"unit"`
}

// Identity derives the registry key of the spec.
func (s *ChainSpec) Identity() Identity {
	return DeriveIdentity(s.GenesisHash, s.Scheme)
}

// Encode writes the spec in its wire layout, which is also its storage layout.
func (s *ChainSpec) Encode() []byte {
	var e scale.Encoder
	s.EncodeTo(&e)
	return e.Bytes()
}

// EncodeTo appends the spec to e.
func (s *ChainSpec) EncodeTo(e *scale.Encoder) {
	e.PutU16(s.Base58Prefix)
	e.PutString(s.Color)
	e.PutByte(s.Decimals)
	e.PutByte(byte(s.Scheme))
	e.PutFixed(s.GenesisHash[:])
	e.PutString(s.Logo)
	e.PutString(s.Name)
	e.PutString(s.PathID)
	e.PutString(s.SecondaryColor)
	e.PutString(s.Title)
	e.PutString(s.Unit)
}

// ReadChainSpec decodes a spec from d, leaving any following data unread.
func ReadChainSpec(d *scale.Decoder) (*ChainSpec, error) {
	var (
		s   ChainSpec
		err error
	)
	if s.Base58Prefix, err = d.ReadU16(); err != nil {
		return nil, err
	}
	if s.Color, err = d.ReadString(); err != nil {
		return nil, err
	}
	if s.Decimals, err = d.ReadByte(); err != nil {
		return nil, err
	}
	tag, err := d.ReadEnum(int(crypto.Ecdsa) + 1)
	if err != nil {
		return nil, err
	}
	s.Scheme = crypto.Scheme(tag)
	genesis, err := d.ReadFixed(common.HashLength)
	if err != nil {
		return nil, err
	}
	s.GenesisHash = common.BytesToHash(genesis)
	for _, field := range []*string{&s.Logo, &s.Name, &s.PathID, &s.SecondaryColor, &s.Title, &s.Unit} {
		if *field, err = d.ReadString(); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// DecodeChainSpec decodes a stored spec and checks that it re-derives the
// identity it was stored under.
func DecodeChainSpec(id Identity, raw []byte) (*ChainSpec, error) {
	d := scale.NewDecoder(raw)
	spec, err := ReadChainSpec(d)
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadChainSpec, err)
	}
	if spec.Identity() != id {
		return nil, fmt.Errorf("%w: stored under %s, derives %s", ErrIdentityMismatch, id, spec.Identity())
	}
	return spec, nil
}

// ImportantSpecsChanged reports whether next alters a field that existing
// addresses and stored schemas depend on.
func ImportantSpecsChanged(old, next *ChainSpec) bool {
	return old.Base58Prefix != next.Base58Prefix ||
		old.Decimals != next.Decimals ||
		old.Scheme != next.Scheme ||
		old.Name != next.Name ||
		old.Unit != next.Unit
}
