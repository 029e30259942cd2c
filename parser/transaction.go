package parser

import (
	"errors"
	"fmt"

	"github.com/tos-network/gsigner/address"
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/decoder"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/scale"
	"github.com/tos-network/gsigner/staging"
)

var (
	ErrBadTransaction       = errs.New(errs.BadInput, "parser: unable to separate call, extensions and genesis hash")
	ErrGenesisMismatch      = errs.New(errs.BadInput, "parser: genesis hash in extensions differs from the trailing genesis hash")
	ErrImmortalHashMismatch = errs.New(errs.BadInput, "parser: immortal transaction block hash differs from the genesis hash")
)

// txParts is a transaction payload split along its wire boundaries.
type txParts struct {
	author     []byte
	call       []byte
	extensions *decoder.Extensions
	rawExt     []byte
	genesis    common.Hash
}

func splitTransaction(s crypto.Scheme, body []byte) (*txParts, error) {
	var (
		tx  txParts
		d   = scale.NewDecoder(body)
		err error
	)
	if tx.author, err = d.ReadFixed(s.PublicKeyLen()); err != nil {
		return nil, fmt.Errorf("%w: author: %v", ErrBadTransaction, err)
	}
	if tx.call, err = d.ReadBytes(); err != nil {
		return nil, fmt.Errorf("%w: call: %v", ErrBadTransaction, err)
	}
	start := d.Offset()
	if tx.extensions, err = decoder.ReadExtensions(d); err != nil {
		return nil, fmt.Errorf("%w: extensions: %v", ErrBadTransaction, err)
	}
	tx.rawExt = body[start:d.Offset()]
	genesis, err := d.ReadFixed(common.HashLength)
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: genesis: %v", ErrBadTransaction, err)
	}
	tx.genesis = common.BytesToHash(genesis)
	return &tx, nil
}

// message is what gets signed: the bare call followed by the extensions.
func (tx *txParts) message() []byte {
	msg := make([]byte, 0, len(tx.call)+len(tx.rawExt))
	msg = append(msg, tx.call...)
	return append(msg, tx.rawExt...)
}

func (p *parser) transaction(s crypto.Scheme, body []byte) error {
	tx, err := splitTransaction(s, body)
	if err != nil {
		return err
	}
	x := tx.extensions
	if x.GenesisHash != tx.genesis {
		return fmt.Errorf("%w: %s vs %s", ErrGenesisMismatch, x.GenesisHash, tx.genesis)
	}
	if x.Era.Immortal && x.BlockHash != tx.genesis {
		return ErrImmortalHashMismatch
	}

	chain, err := network.NewRegistry(p.db).Resolve(tx.genesis, s)
	if errors.Is(err, network.ErrNoNetwork) {
		return p.unknownNetwork(s, tx)
	}
	if err != nil {
		return err
	}

	base58 := crypto.SS58Encode(tx.author, chain.Base58Prefix)
	rec, err := address.NewRegistry(p.db).Lookup(tx.author, s)
	switch {
	case errors.Is(err, address.ErrNoAddress):
		p.doc.Author = append(p.doc.Author, cards.AuthorPlain(base58))
		p.warn(cards.AuthorNotFound)
		rec = nil
	case err != nil:
		return err
	default:
		p.doc.Author = append(p.doc.Author, cards.Author(cards.AuthorPayload{
			Base58:      base58,
			Seed:        rec.SeedName,
			Path:        rec.Path,
			HasPassword: rec.HasPassword,
			Name:        rec.Name,
		}))
		if !rec.AllowedOn(chain.Identity()) {
			p.warn(cards.NoNetworkID)
			rec = nil
		}
	}

	method, err := p.decodeCall(chain, tx)
	if err != nil {
		if errs.Classify(err) == errs.System {
			return err
		}
		p.doc.Error = append(p.doc.Error, cards.Error(err))
		p.doc.Extrinsics = x.Cards(chain)
		return nil
	}
	p.doc.Method = method
	p.doc.Extrinsics = x.Cards(chain)
	if rec == nil {
		return nil
	}
	return p.stage(&staging.Sign{
		Scheme:      s,
		PublicKey:   tx.author,
		SeedName:    rec.SeedName,
		Path:        rec.Path,
		HasPassword: rec.HasPassword,
		Message:     tx.message(),
		History:     p.history,
	})
}

// decodeCall finds the schema of the declared version and renders the call.
// A newer stored version adds a warning.
func (p *parser) decodeCall(chain *network.ChainSpec, tx *txParts) ([]cards.Card, error) {
	reg := metadata.NewRegistry(p.db)
	schema, latest, err := reg.FindSchema(chain.Name, tx.extensions.SpecVersion)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		p.warn(cards.NewerVersion(tx.extensions.SpecVersion, *latest))
	}
	catalog, err := reg.TypeCatalog()
	if err != nil && !errors.Is(err, metadata.ErrNoTypes) {
		return nil, err
	}
	resolver, err := schema.Resolver(catalog)
	if err != nil {
		return nil, err
	}
	return decoder.DecodeCall(resolver, tx.call, chain)
}

// unknownNetwork renders what can be shown without a chain spec.
func (p *parser) unknownNetwork(s crypto.Scheme, tx *txParts) error {
	p.doc.Author = append(p.doc.Author, cards.AuthorPublicKey(tx.author, s.String()))
	missing := network.ErrNoNetwork
	elsewhere, err := network.NewRegistry(p.db).ExistsElsewhere(tx.genesis, s)
	if err != nil {
		return err
	}
	if elsewhere {
		missing = network.ErrNetworkOtherScheme
	}
	p.doc.Error = append(p.doc.Error, cards.Error(fmt.Errorf("%w: %s", missing, tx.genesis)))
	p.doc.Extrinsics = tx.extensions.PlainCards()
	return nil
}
