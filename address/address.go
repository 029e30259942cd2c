// Package address keeps the addresses the device can sign for.
//
// Records are written by identity management (the CLI here) and only read
// by the parser, which needs to know who an author is and on which networks
// the address may be used.
package address

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/rawdb"
	"github.com/tos-network/gsigner/scale"
)

var (
	ErrNoAddress  = errs.New(errs.NotFound, "address: public key not on record")
	ErrBadAddress = errs.New(errs.NotDecodeable, "address: record not decodeable")
)

// Record describes one derived key.
type Record struct {
	SeedName    string
	Path        string
	HasPassword bool
	Name        string
	Networks    []network.Identity
}

// AllowedOn reports whether the address may sign for the network id.
func (r *Record) AllowedOn(id network.Identity) bool {
	return r.networkSet().Contains(id)
}

// Allow adds id to the allowed networks, once.
func (r *Record) Allow(id network.Identity) {
	if r.networkSet().Add(id) {
		r.Networks = append(r.Networks, id)
	}
}

func (r *Record) networkSet() mapset.Set {
	set := mapset.NewThreadUnsafeSet()
	for _, id := range r.Networks {
		set.Add(id)
	}
	return set
}

func (r *Record) Encode() []byte {
	var e scale.Encoder
	e.PutString(r.SeedName)
	e.PutString(r.Path)
	e.PutBool(r.HasPassword)
	e.PutString(r.Name)
	e.PutCompact(uint64(len(r.Networks)))
	for _, id := range r.Networks {
		e.PutFixed(id.Bytes())
	}
	return e.Bytes()
}

// Decode is the inverse of Encode.
func Decode(raw []byte) (*Record, error) {
	r, err := decode(scale.NewDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	return r, nil
}

func decode(d *scale.Decoder) (*Record, error) {
	var (
		r   Record
		err error
	)
	if r.SeedName, err = d.ReadString(); err != nil {
		return nil, err
	}
	if r.Path, err = d.ReadString(); err != nil {
		return nil, err
	}
	if r.HasPassword, err = d.ReadBool(); err != nil {
		return nil, err
	}
	if r.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	n, err := d.ReadCompactLen(network.IdentityLength)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		raw, err := d.ReadFixed(network.IdentityLength)
		if err != nil {
			return nil, err
		}
		id, err := network.ParseIdentity(raw)
		if err != nil {
			return nil, err
		}
		r.Networks = append(r.Networks, id)
	}
	return &r, d.Finish()
}

// Registry looks up address records.
type Registry struct {
	db kvdb.Reader
}

func NewRegistry(db kvdb.Reader) *Registry {
	return &Registry{db: db}
}

// Lookup returns the record of pub under scheme.
func (r *Registry) Lookup(pub []byte, scheme crypto.Scheme) (*Record, error) {
	raw, err := rawdb.ReadAddress(r.db, byte(scheme), pub)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s %x", ErrNoAddress, scheme, pub)
	}
	return Decode(raw)
}

// Entry is a record with its key.
type Entry struct {
	Scheme    crypto.Scheme
	PublicKey []byte
	*Record
}

// All lists every record in key order.
func (r *Registry) All() ([]Entry, error) {
	var out []Entry
	err := rawdb.IterateAddresses(r.db, func(scheme byte, pub, raw []byte) error {
		s, err := crypto.ParseScheme(scheme)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadAddress, err)
		}
		rec, err := Decode(raw)
		if err != nil {
			return err
		}
		out = append(out, Entry{Scheme: s, PublicKey: append([]byte{}, pub...), Record: rec})
		return nil
	})
	return out, err
}

// Write stores rec under pub and scheme.
func Write(w kvdb.KeyValueWriter, scheme crypto.Scheme, pub []byte, rec *Record) error {
	if len(pub) != scheme.PublicKeyLen() {
		return fmt.Errorf("%w: %s key of %d bytes", errs.BadInput, scheme, len(pub))
	}
	return rawdb.WriteAddress(w, byte(scheme), pub, rec.Encode())
}
