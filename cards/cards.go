// Package cards is the output projection of a parsed payload: an ordered
// set of typed, indented display cards and at most one action reference.
//
// Cards are only built through the constructors below. Their JSON form,
// including the running index, is produced in one place (Document).
package cards

import (
	"encoding/hex"
	"strconv"
)

// Kind is the type tag of a card.
type Kind string

const (
	KindCall             Kind = "call"
	KindVarname          Kind = "varname"
	KindDefault          Kind = "default"
	KindID               Kind = "Id"
	KindNone             Kind = "none"
	KindBitVec           Kind = "bitvec"
	KindBalance          Kind = "balance"
	KindFieldName        Kind = "field_name"
	KindFieldNumber      Kind = "field_number"
	KindEnumVariantName  Kind = "enum_variant_name"
	KindEraImmortalNonce Kind = "era_immortal_nonce"
	KindEraMortalNonce   Kind = "era_mortal_nonce"
	KindTip              Kind = "tip"
	KindTipPlain         Kind = "tip_plain"
	KindBlockHash        Kind = "block_hash"
	KindTxSpec           Kind = "tx_spec"
	KindTxSpecPlain      Kind = "tx_spec_plain"
	KindAuthor           Kind = "author"
	KindAuthorPlain      Kind = "author_plain"
	KindAuthorPublicKey  Kind = "author_public_key"
	KindVerifier         Kind = "verifier"
	KindMeta             Kind = "meta"
	KindTypesHash        Kind = "types_hash"
	KindNewNetwork       Kind = "new_network"
	KindWarning          Kind = "warning"
	KindError            Kind = "error"
)

// Card is one unit of the rendering. Payload is a string or one of the
// payload structs of this package.
type Card struct {
	Indent  uint32
	Kind    Kind
	Payload interface{}
}

// At returns the card moved to the given indent.
func (c Card) At(indent uint32) Card {
	c.Indent = indent
	return c
}

func text(kind Kind, s string) Card { return Card{Kind: kind, Payload: s} }

// docs are shown hex-encoded so multi-line markdown survives any host.
func docs(s string) string { return hex.EncodeToString([]byte(s)) }

type CallPayload struct {
	Method string `json:"method"`
	Pallet string `json:"pallet"`
	Docs   string `json:"docs"`
}

type NamedPayload struct {
	Name string `json:"name"`
	Docs string `json:"docs"`
}

type NumberPayload struct {
	Number string `json:"number"`
	Docs   string `json:"docs"`
}

type AmountPayload struct {
	Amount string `json:"amount"`
	Units  string `json:"units"`
}

type ImmortalPayload struct {
	Era   string `json:"era"`
	Nonce string `json:"nonce"`
}

type MortalPayload struct {
	Era    string `json:"era"`
	Phase  string `json:"phase"`
	Period string `json:"period"`
	Nonce  string `json:"nonce"`
}

type TxSpecPayload struct {
	Network   string `json:"network"`
	Version   string `json:"version"`
	TxVersion string `json:"tx_version"`
}

type TxSpecPlainPayload struct {
	GenesisHash string `json:"network_genesis_hash"`
	Version     string `json:"version"`
	TxVersion   string `json:"tx_version"`
}

// AuthorPayload describes a known signing address.
type AuthorPayload struct {
	Base58      string `json:"base58"`
	Seed        string `json:"seed"`
	Path        string `json:"derivation_path"`
	HasPassword bool   `json:"has_password"`
	Name        string `json:"name"`
}

type Base58Payload struct {
	Base58 string `json:"base58"`
}

type PublicKeyPayload struct {
	Hex    string `json:"hex"`
	Crypto string `json:"crypto"`
}

type VerifierPayload struct {
	Hex        string `json:"hex"`
	Encryption string `json:"encryption"`
}

type MetaPayload struct {
	SpecName    string `json:"specname"`
	SpecVersion string `json:"spec_version"`
	MetaHash    string `json:"meta_hash"`
}

// NetworkPayload shows a network about to be added.
type NetworkPayload struct {
	SpecName       string          `json:"specname"`
	SpecVersion    string          `json:"spec_version"`
	MetaHash       string          `json:"meta_hash"`
	Base58Prefix   string          `json:"base58prefix"`
	Color          string          `json:"color"`
	Decimals       string          `json:"decimals"`
	Encryption     string          `json:"encryption"`
	GenesisHash    string          `json:"genesis_hash"`
	Logo           string          `json:"logo"`
	Name           string          `json:"name"`
	PathID         string          `json:"path_id"`
	SecondaryColor string          `json:"secondary_color"`
	Title          string          `json:"title"`
	Unit           string          `json:"unit"`
	Verifier       VerifierPayload `json:"verifier"`
}

func Call(pallet, method, doc string) Card {
	return Card{Kind: KindCall, Payload: CallPayload{Method: method, Pallet: pallet, Docs: docs(doc)}}
}

func Varname(name string) Card  { return text(KindVarname, name) }
func Default(value string) Card { return text(KindDefault, value) }
func ID(base58 string) Card     { return text(KindID, base58) }
func None() Card                { return text(KindNone, "") }
func BitVec(bits string) Card   { return text(KindBitVec, bits) }

func Balance(amount, units string) Card {
	return Card{Kind: KindBalance, Payload: AmountPayload{Amount: amount, Units: units}}
}

func FieldName(name, doc string) Card {
	return Card{Kind: KindFieldName, Payload: NamedPayload{Name: name, Docs: docs(doc)}}
}

func FieldNumber(number int, doc string) Card {
	return Card{Kind: KindFieldNumber, Payload: NumberPayload{Number: strconv.Itoa(number), Docs: docs(doc)}}
}

func EnumVariantName(name, doc string) Card {
	return Card{Kind: KindEnumVariantName, Payload: NamedPayload{Name: name, Docs: docs(doc)}}
}

func EraImmortalNonce(nonce string) Card {
	return Card{Kind: KindEraImmortalNonce, Payload: ImmortalPayload{Era: "Immortal", Nonce: nonce}}
}

func EraMortalNonce(phase, period uint64, nonce string) Card {
	return Card{Kind: KindEraMortalNonce, Payload: MortalPayload{
		Era:    "Mortal",
		Phase:  strconv.FormatUint(phase, 10),
		Period: strconv.FormatUint(period, 10),
		Nonce:  nonce,
	}}
}

func Tip(amount, units string) Card {
	return Card{Kind: KindTip, Payload: AmountPayload{Amount: amount, Units: units}}
}

func TipPlain(amount string) Card { return text(KindTipPlain, amount) }
func BlockHash(hash string) Card  { return text(KindBlockHash, hash) }
func TypesHash(hash string) Card  { return text(KindTypesHash, hash) }
func Warn(w Warning) Card         { return text(KindWarning, w.String()) }
func Error(err error) Card        { return text(KindError, err.Error()) }
func AuthorPlain(base58 string) Card {
	return Card{Kind: KindAuthorPlain, Payload: Base58Payload{Base58: base58}}
}

func TxSpec(network string, version, txVersion uint32) Card {
	return Card{Kind: KindTxSpec, Payload: TxSpecPayload{
		Network:   network,
		Version:   strconv.FormatUint(uint64(version), 10),
		TxVersion: strconv.FormatUint(uint64(txVersion), 10),
	}}
}

func TxSpecPlain(genesisHex string, version, txVersion uint32) Card {
	return Card{Kind: KindTxSpecPlain, Payload: TxSpecPlainPayload{
		GenesisHash: genesisHex,
		Version:     strconv.FormatUint(uint64(version), 10),
		TxVersion:   strconv.FormatUint(uint64(txVersion), 10),
	}}
}

func Author(p AuthorPayload) Card { return Card{Kind: KindAuthor, Payload: p} }

func AuthorPublicKey(pub []byte, scheme string) Card {
	return Card{Kind: KindAuthorPublicKey, Payload: PublicKeyPayload{Hex: hex.EncodeToString(pub), Crypto: scheme}}
}

func Verifier(p VerifierPayload) Card  { return Card{Kind: KindVerifier, Payload: p} }
func Meta(p MetaPayload) Card          { return Card{Kind: KindMeta, Payload: p} }
func NewNetwork(p NetworkPayload) Card { return Card{Kind: KindNewNetwork, Payload: p} }
