package network

import (
	"fmt"

	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/rawdb"
)

// Registry resolves chain specs from the store.
type Registry struct {
	db kvdb.Reader
}

func NewRegistry(db kvdb.Reader) *Registry {
	return &Registry{db: db}
}

// Resolve returns the chain spec registered for genesis under scheme.
// It returns ErrNoNetwork if there is none.
func (r *Registry) Resolve(genesis common.Hash, scheme crypto.Scheme) (*ChainSpec, error) {
	id := DeriveIdentity(genesis, scheme)
	raw, err := rawdb.ReadChainSpec(r.db, id.Bytes())
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNoNetwork
	}
	return DecodeChainSpec(id, raw)
}

// ExistsElsewhere reports whether genesis is registered under any scheme
// other than the given one.
func (r *Registry) ExistsElsewhere(genesis common.Hash, scheme crypto.Scheme) (bool, error) {
	specs, err := r.ByGenesis(genesis)
	if err != nil {
		return false, err
	}
	for _, spec := range specs {
		if spec.Scheme != scheme {
			return true, nil
		}
	}
	return false, nil
}

// ByGenesis returns every spec registered for genesis, across schemes.
func (r *Registry) ByGenesis(genesis common.Hash) ([]*ChainSpec, error) {
	var specs []*ChainSpec
	for s := crypto.Ed25519; s <= crypto.Ecdsa; s++ {
		spec, err := r.Resolve(genesis, s)
		if err == ErrNoNetwork {
			continue
		}
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// All returns every registered spec in identity order.
func (r *Registry) All() ([]*ChainSpec, error) {
	var specs []*ChainSpec
	err := rawdb.IterateChainSpecs(r.db, func(key, raw []byte) error {
		id, err := ParseIdentity(key)
		if err != nil {
			return err
		}
		spec, err := DecodeChainSpec(id, raw)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
		return nil
	})
	return specs, err
}

// Insert stores spec under its identity. Name uniqueness across identities
// is not enforced.
func Insert(w kvdb.KeyValueWriter, spec *ChainSpec) error {
	if !spec.Scheme.Valid() {
		return fmt.Errorf("%w: %v", crypto.ErrUnknownScheme, spec.Scheme)
	}
	return rawdb.WriteChainSpec(w, spec.Identity().Bytes(), spec.Encode())
}
