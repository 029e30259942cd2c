package decoder

import (
	"github.com/holiman/uint256"
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/scale"
)

// Extensions is the signed suffix of a transaction that follows the call.
type Extensions struct {
	Era         Era
	Nonce       *uint256.Int
	Tip         *uint256.Int
	SpecVersion uint32
	TxVersion   uint32
	GenesisHash common.Hash
	BlockHash   common.Hash
}

// ReadExtensions decodes the suffix fields in wire order.
func ReadExtensions(d *scale.Decoder) (*Extensions, error) {
	var (
		x   Extensions
		err error
	)
	if x.Era, err = ReadEra(d); err != nil {
		return nil, err
	}
	if x.Nonce, err = d.ReadCompact(); err != nil {
		return nil, err
	}
	if x.Tip, err = d.ReadCompact(); err != nil {
		return nil, err
	}
	if x.SpecVersion, err = d.ReadU32(); err != nil {
		return nil, err
	}
	if x.TxVersion, err = d.ReadU32(); err != nil {
		return nil, err
	}
	genesis, err := d.ReadFixed(common.HashLength)
	if err != nil {
		return nil, err
	}
	x.GenesisHash = common.BytesToHash(genesis)
	block, err := d.ReadFixed(common.HashLength)
	if err != nil {
		return nil, err
	}
	x.BlockHash = common.BytesToHash(block)
	return &x, nil
}

func (x *Extensions) eraCard() cards.Card {
	nonce := x.Nonce.ToBig().String()
	if x.Era.Immortal {
		return cards.EraImmortalNonce(nonce)
	}
	return cards.EraMortalNonce(x.Era.Phase, x.Era.Period, nonce)
}

// Cards renders the suffix for a known network: tip in the chain's units
// and the spec version under the chain's name.
func (x *Extensions) Cards(chain *network.ChainSpec) []cards.Card {
	amount, units := FormatBalance(x.Tip, chain.Decimals, chain.Unit)
	return x.render(cards.Tip(amount, units), cards.TxSpec(chain.Name, x.SpecVersion, x.TxVersion))
}

// PlainCards renders the suffix when the network is not known.
func (x *Extensions) PlainCards() []cards.Card {
	return x.render(cards.TipPlain(x.Tip.ToBig().String()), cards.TxSpecPlain(x.GenesisHash.Hex(), x.SpecVersion, x.TxVersion))
}

// An immortal transaction's block hash is the genesis hash and is not shown.
func (x *Extensions) render(tip, spec cards.Card) []cards.Card {
	out := []cards.Card{x.eraCard(), tip}
	if !x.Era.Immortal {
		out = append(out, cards.BlockHash(x.BlockHash.Hex()))
	}
	return append(out, spec)
}
