// Package testutil builds deterministic fixtures shared by package tests:
// a Westend-like chain, schemas describing its balance transfer call in
// both schema families, a type catalog, and payload builders.
package testutil

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/scale"
)

const (
	WestendGenesisHex = "e143f23803ac50e8f6f8e62695d1ce9e4e1d68aa36c1cd2cfd15340213f3423e"
	AlicePubHex       = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	BobPubHex         = "8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"
	AliceAddress      = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	BobAddress        = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"

	// SampleTransaction is a transfer_keep_alive of 0.1 WND from Alice to
	// Bob on westend 9010, nonce 46, mortal era (phase 27, period 64).
	SampleTransaction = "530100" + AlicePubHex +
		"a40403008eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a480700e8764817" +
		"b501b8003223000005000000" + WestendGenesisHex +
		"538a7d7a0ac17eb6dd004578cb8e238c384a10f57c999a3fa1200409cd9b3f33" + WestendGenesisHex

	SampleBlockHashHex = "538a7d7a0ac17eb6dd004578cb8e238c384a10f57c999a3fa1200409cd9b3f33"

	TransferKeepAliveDocs = " Same as the [`transfer`] call, but with a check that the transfer will not kill the\n origin account."
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

var (
	WestendGenesis = common.BytesToHash(mustHex(WestendGenesisHex))
	AlicePub       = mustHex(AlicePubHex)
	BobPub         = mustHex(BobPubHex)
)

// WestendSpec is the sr25519 westend chain spec.
func WestendSpec() *network.ChainSpec {
	return &network.ChainSpec{
		Base58Prefix:   42,
		Color:          "#660D35",
		Decimals:       12,
		Scheme:         crypto.Sr25519,
		GenesisHash:    WestendGenesis,
		Logo:           "westend",
		Name:           "westend",
		PathID:         "//westend",
		SecondaryColor: "#262626",
		Title:          "Westend",
		Unit:           "WND",
	}
}

// Type ids of the westend type graph.
const (
	tyAccountID uint32 = iota
	tyBytes32
	tyU8
	tyU128
	tyCompactU128
	tyMultiAddress
	tyU32
	tyCompactU32
	tyVecU8
	tyBytes20
	tyBalancesCall
	tySystemCall
	tyBool
	tyOptionU32
	tyRuntimeCall
	tyVecRuntimeCall
	tyUtilityCall
)

// BatchDocs documents Utility.batch in both schema families.
const BatchDocs = " Send a batch of dispatch calls."

// WestendNewer is a family 14 schema with System, Balances and Utility calls.
func WestendNewer(version uint32) []byte {
	prim := func(id uint32, p metadata.Primitive) metadata.PortableType {
		return metadata.PortableType{ID: id, Def: metadata.TypeDef{Kind: metadata.KindPrimitive, Primitive: p}}
	}
	ref := func(id uint32) metadata.TypeRef { return metadata.TypeRef{ID: id} }
	dest := metadata.Field{Name: "dest", TypeName: "AccountIdLookupOf<T>", Type: ref(tyMultiAddress)}
	value := metadata.Field{Name: "value", TypeName: "T::Balance", Type: ref(tyCompactU128)}

	types := []metadata.PortableType{
		{ID: tyAccountID, Path: []string{"sp_core", "crypto", "AccountId32"}, Def: metadata.TypeDef{
			Kind:   metadata.KindComposite,
			Fields: []metadata.Field{{TypeName: "[u8; 32]", Type: ref(tyBytes32)}},
		}},
		{ID: tyBytes32, Def: metadata.TypeDef{Kind: metadata.KindArray, Len: 32, Elem: tyU8}},
		prim(tyU8, metadata.U8),
		prim(tyU128, metadata.U128),
		{ID: tyCompactU128, Def: metadata.TypeDef{Kind: metadata.KindCompact, Elem: tyU128}},
		{ID: tyMultiAddress, Path: []string{"sp_runtime", "multiaddress", "MultiAddress"}, Def: metadata.TypeDef{
			Kind: metadata.KindVariant,
			Variants: []metadata.Variant{
				{Name: "Id", Index: 0, Fields: []metadata.Field{{TypeName: "AccountId", Type: ref(tyAccountID)}}},
				{Name: "Index", Index: 1, Fields: []metadata.Field{{TypeName: "AccountIndex", Type: ref(tyCompactU32)}}},
				{Name: "Raw", Index: 2, Fields: []metadata.Field{{TypeName: "Vec<u8>", Type: ref(tyVecU8)}}},
				{Name: "Address32", Index: 3, Fields: []metadata.Field{{TypeName: "[u8; 32]", Type: ref(tyBytes32)}}},
				{Name: "Address20", Index: 4, Fields: []metadata.Field{{TypeName: "[u8; 20]", Type: ref(tyBytes20)}}},
			},
		}},
		prim(tyU32, metadata.U32),
		{ID: tyCompactU32, Def: metadata.TypeDef{Kind: metadata.KindCompact, Elem: tyU32}},
		{ID: tyVecU8, Def: metadata.TypeDef{Kind: metadata.KindSequence, Elem: tyU8}},
		{ID: tyBytes20, Def: metadata.TypeDef{Kind: metadata.KindArray, Len: 20, Elem: tyU8}},
		{ID: tyBalancesCall, Path: []string{"pallet_balances", "pallet", "Call"}, Def: metadata.TypeDef{
			Kind: metadata.KindVariant,
			Variants: []metadata.Variant{
				{Name: "transfer", Index: 0, Fields: []metadata.Field{dest, value}, Docs: " Transfer some liquid free balance to another account."},
				{Name: "set_balance", Index: 1, Fields: []metadata.Field{
					{Name: "who", TypeName: "AccountIdLookupOf<T>", Type: ref(tyMultiAddress)},
					{Name: "new_free", TypeName: "T::Balance", Type: ref(tyCompactU128)},
					{Name: "new_reserved", TypeName: "T::Balance", Type: ref(tyCompactU128)},
				}},
				{Name: "force_transfer", Index: 2, Fields: []metadata.Field{
					{Name: "source", TypeName: "AccountIdLookupOf<T>", Type: ref(tyMultiAddress)}, dest, value,
				}},
				{Name: "transfer_keep_alive", Index: 3, Fields: []metadata.Field{dest, value}, Docs: TransferKeepAliveDocs},
			},
		}},
		{ID: tySystemCall, Path: []string{"frame_system", "pallet", "Call"}, Def: metadata.TypeDef{
			Kind: metadata.KindVariant,
			Variants: []metadata.Variant{
				{Name: "remark", Index: 1, Fields: []metadata.Field{{Name: "remark", TypeName: "Vec<u8>", Type: ref(tyVecU8)}}},
				{Name: "set_flag", Index: 9, Fields: []metadata.Field{
					{Name: "flag", TypeName: "bool", Type: ref(tyBool)},
					{Name: "limit", TypeName: "Option<u32>", Type: ref(tyOptionU32)},
				}},
			},
		}},
		prim(tyBool, metadata.Bool),
		{ID: tyOptionU32, Path: []string{"Option"}, Def: metadata.TypeDef{
			Kind: metadata.KindVariant,
			Variants: []metadata.Variant{
				{Name: "None", Index: 0},
				{Name: "Some", Index: 1, Fields: []metadata.Field{{Type: ref(tyU32)}}},
			},
		}},
		{ID: tyRuntimeCall, Path: []string{"westend_runtime", "RuntimeCall"}, Def: metadata.TypeDef{
			Kind: metadata.KindVariant,
			Variants: []metadata.Variant{
				{Name: "System", Index: 0, Fields: []metadata.Field{{TypeName: "CallableCallFor<System, Runtime>", Type: ref(tySystemCall)}}},
				{Name: "Balances", Index: 4, Fields: []metadata.Field{{TypeName: "CallableCallFor<Balances, Runtime>", Type: ref(tyBalancesCall)}}},
				{Name: "Utility", Index: 16, Fields: []metadata.Field{{TypeName: "CallableCallFor<Utility, Runtime>", Type: ref(tyUtilityCall)}}},
			},
		}},
		{ID: tyVecRuntimeCall, Def: metadata.TypeDef{Kind: metadata.KindSequence, Elem: tyRuntimeCall}},
		{ID: tyUtilityCall, Path: []string{"pallet_utility", "pallet", "Call"}, Def: metadata.TypeDef{
			Kind: metadata.KindVariant,
			Variants: []metadata.Variant{
				{Name: "batch", Index: 0, Fields: []metadata.Field{{Name: "calls", TypeName: "Vec<<T as Config>::RuntimeCall>", Type: ref(tyVecRuntimeCall)}}, Docs: BatchDocs},
			},
		}},
	}
	systemCalls, balancesCalls, utilityCalls := tySystemCall, tyBalancesCall, tyUtilityCall
	pallets := []metadata.Pallet{
		{Name: "System", Index: 0, Calls: &systemCalls},
		{Name: "Timestamp", Index: 2},
		{Name: "Balances", Index: 4, Calls: &balancesCalls},
		{Name: "Utility", Index: 16, Calls: &utilityCalls},
	}
	return metadata.EncodeNewer("westend", version, types, pallets)
}

// WestendOlder is a family 13 schema describing the same calls as
// WestendNewer positionally. It needs WestendCatalog to resolve types.
func WestendOlder(version uint32) []byte {
	dest := metadata.ArgDef{Name: "dest", Type: "<T::Lookup as StaticLookup>::Source"}
	value := metadata.ArgDef{Name: "value", Type: "Compact<T::Balance>"}
	modules := []metadata.Module{
		{Name: "System", Index: 0, Calls: []metadata.CallDef{
			{Name: "fill_block", Args: []metadata.ArgDef{{Name: "ratio", Type: "Perbill"}}},
			{Name: "remark", Args: []metadata.ArgDef{{Name: "remark", Type: "Vec<u8>"}}},
		}},
		{Name: "Timestamp", Index: 2},
		{Name: "Balances", Index: 4, Calls: []metadata.CallDef{
			{Name: "transfer", Args: []metadata.ArgDef{dest, value}, Docs: []string{" Transfer some liquid free balance to another account."}},
			{Name: "set_balance", Args: []metadata.ArgDef{
				{Name: "who", Type: "<T::Lookup as StaticLookup>::Source"},
				{Name: "new_free", Type: "Compact<T::Balance>"},
				{Name: "new_reserved", Type: "Compact<T::Balance>"},
			}},
			{Name: "force_transfer", Args: []metadata.ArgDef{{Name: "source", Type: "<T::Lookup as StaticLookup>::Source"}, dest, value}},
			{Name: "transfer_keep_alive", Args: []metadata.ArgDef{dest, value}, Docs: []string{
				" Same as the [`transfer`] call, but with a check that the transfer will not kill the",
				" origin account.",
			}},
		}},
		{Name: "Utility", Index: 16, Calls: []metadata.CallDef{
			{Name: "batch", Args: []metadata.ArgDef{{Name: "calls", Type: "Vec<<T as Config>::Call>"}}, Docs: []string{BatchDocs}},
		}},
	}
	return metadata.EncodeOlder("westend", version, 13, modules)
}

// WestendCatalog resolves the type names used by WestendOlder.
func WestendCatalog() metadata.Catalog {
	return metadata.Catalog{
		{Name: "Source", Description: metadata.Description{Kind: metadata.DescAlias, Alias: "LookupSource"}},
		{Name: "LookupSource", Description: metadata.Description{Kind: metadata.DescAlias, Alias: "MultiAddress"}},
		{Name: "AccountIndex", Description: metadata.Description{Kind: metadata.DescAlias, Alias: "u32"}},
		{Name: "MultiAddress", Description: metadata.Description{Kind: metadata.DescEnum, Variants: []metadata.EnumVariant{
			{Name: "Id", Kind: metadata.VariantType, Type: "AccountId"},
			{Name: "Index", Kind: metadata.VariantType, Type: "Compact<AccountIndex>"},
			{Name: "Raw", Kind: metadata.VariantType, Type: "Vec<u8>"},
			{Name: "Address32", Kind: metadata.VariantType, Type: "H256"},
			{Name: "Address20", Kind: metadata.VariantType, Type: "H160"},
		}}},
		{Name: "Weight", Description: metadata.Description{Kind: metadata.DescAlias, Alias: "u64"}},
	}
}

// Extrinsics describes the signed extension part of a transaction.
type Extrinsics struct {
	Era         []byte // 0x00 or two mortal bytes
	Nonce       uint64
	Tip         uint64
	SpecVersion uint32
	TxVersion   uint32
	Genesis     common.Hash
	BlockHash   common.Hash
}

// MortalEra returns the era bytes used by SampleTransaction.
func MortalEra() []byte { return []byte{0xb5, 0x01} }

// Encode lays out the extension fields.
func (x *Extrinsics) Encode() []byte {
	var e scale.Encoder
	e.PutFixed(x.Era)
	e.PutCompact(x.Nonce)
	e.PutCompact(x.Tip)
	e.PutU32(x.SpecVersion)
	e.PutU32(x.TxVersion)
	e.PutFixed(x.Genesis[:])
	e.PutFixed(x.BlockHash[:])
	return e.Bytes()
}

// Transaction builds a transaction payload: prelude, author, call,
// extensions and trailing genesis hash.
func Transaction(scheme crypto.Scheme, author, call []byte, x *Extrinsics, trailingGenesis common.Hash) string {
	var e scale.Encoder
	e.PutByte(params.PayloadMarker)
	e.PutByte(byte(scheme))
	e.PutByte(params.PayloadTransaction)
	e.PutFixed(author)
	e.PutBytes(call)
	e.PutFixed(x.Encode())
	e.PutFixed(trailingGenesis[:])
	return hex.EncodeToString(e.Bytes())
}

// TransferKeepAlive is the encoded Balances.transfer_keep_alive call.
func TransferKeepAlive(dest []byte, amount uint64) []byte {
	var e scale.Encoder
	e.PutByte(4)
	e.PutByte(3)
	e.PutByte(0)
	e.PutFixed(dest)
	e.PutCompact(amount)
	return e.Bytes()
}

// Batch is the encoded Utility.batch call wrapping calls.
func Batch(calls ...[]byte) []byte {
	var e scale.Encoder
	e.PutByte(16)
	e.PutByte(0)
	e.PutCompact(uint64(len(calls)))
	for _, c := range calls {
		e.PutFixed(c)
	}
	return e.Bytes()
}

// Verifier is an ed25519 key used to sign update payloads in tests.
type Verifier struct {
	Key ed25519.PrivateKey
}

// NewVerifier derives a verifier key from a one byte seed.
func NewVerifier(seed byte) *Verifier {
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	return &Verifier{Key: ed25519.NewKeyFromSeed(s)}
}

func (v *Verifier) Public() []byte { return v.Key.Public().(ed25519.PublicKey) }

// UpdatePayload frames content as an update of the given type. A nil
// verifier produces an unsigned update.
func UpdatePayload(kind byte, content []byte, v *Verifier) string {
	var e scale.Encoder
	e.PutByte(params.PayloadMarker)
	if v == nil {
		e.PutByte(params.UnsignedScheme)
		e.PutByte(kind)
		e.PutFixed(content)
		return hex.EncodeToString(e.Bytes())
	}
	e.PutByte(byte(crypto.Ed25519))
	e.PutByte(kind)
	e.PutFixed(v.Public())
	e.PutFixed(content)
	e.PutFixed(ed25519.Sign(v.Key, content))
	return hex.EncodeToString(e.Bytes())
}

// AddNetworkContent is the body of an add-network update.
func AddNetworkContent(schema []byte, spec *network.ChainSpec) []byte {
	var e scale.Encoder
	e.PutBytes(schema)
	spec.EncodeTo(&e)
	return e.Bytes()
}

// LoadMetadataContent is the body of a load-metadata update.
func LoadMetadataContent(schema []byte, genesis common.Hash) []byte {
	var e scale.Encoder
	e.PutBytes(schema)
	e.PutFixed(genesis[:])
	return e.Bytes()
}

// LoadTypesContent is the body of a load-types update.
func LoadTypesContent(catalog metadata.Catalog) []byte {
	var e scale.Encoder
	e.PutBytes(catalog.Encode())
	return e.Bytes()
}
