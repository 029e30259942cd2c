package parser

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gsigner/address"
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/common"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/decoder"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/internal/testutil"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/kvdb/memorydb"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/staging"
	"github.com/tos-network/gsigner/verifier"
)

func newStore(t *testing.T, general verifier.Verifier) *memorydb.Database {
	db := memorydb.New()
	require.NoError(t, verifier.WriteGeneral(db, general))
	return db
}

func addWestend(t *testing.T, db kvdb.KeyValueWriter, chain verifier.Verifier, versions ...uint32) {
	spec := testutil.WestendSpec()
	require.NoError(t, network.Insert(db, spec))
	require.NoError(t, verifier.WriteChain(db, spec.GenesisHash, chain))
	for _, v := range versions {
		storeSchema(t, db, testutil.WestendNewer(v))
	}
}

func storeSchema(t *testing.T, db kvdb.KeyValueWriter, blob []byte) {
	schema, err := metadata.ParseSchema(blob)
	require.NoError(t, err)
	require.NoError(t, metadata.WriteSchema(db, schema, blob))
}

func addAlice(t *testing.T, db kvdb.KeyValueWriter, allowed bool) {
	rec := &address.Record{SeedName: "Alice", Path: "//Alice", Name: "Alice_key"}
	if allowed {
		rec.Allow(testutil.WestendSpec().Identity())
	}
	require.NoError(t, address.Write(db, crypto.Sr25519, testutil.AlicePub, rec))
}

func parseErr(db kvdb.KeyValueStore, payload string) error {
	return (&parser{db: db, doc: new(cards.Document)}).parse(payload)
}

func signedBy(v *testutil.Verifier) verifier.Verifier {
	return verifier.Signed(crypto.Ed25519, v.Public())
}

func requireStaged(t *testing.T, db kvdb.KeyValueStore, doc *cards.Document, kind cards.ActionKind) staging.Action {
	t.Helper()
	require.NotNil(t, doc.Action, "no action in %s", doc)
	require.Equal(t, kind, doc.Action.Kind)
	sum, err := kvdb.Checksum(db)
	require.NoError(t, err)
	require.Equal(t, sum, doc.Action.Checksum)
	a, err := staging.Take(db, kind, doc.Action.Checksum)
	require.NoError(t, err)
	return a
}

func transferCards() []cards.Card {
	return []cards.Card{
		cards.Call("Balances", "transfer_keep_alive", testutil.TransferKeepAliveDocs),
		cards.Varname("dest").At(1),
		cards.EnumVariantName("Id", "").At(2),
		cards.ID(testutil.BobAddress).At(3),
		cards.Varname("value").At(1),
		cards.Balance("100.000000000", "mWND").At(2),
	}
}

func sampleExtrinsics() []cards.Card {
	return []cards.Card{
		cards.EraMortalNonce(27, 64, "46"),
		cards.Tip("0", "pWND"),
		cards.BlockHash(testutil.SampleBlockHashHex),
		cards.TxSpec("westend", 9010, 5),
	}
}

func sampleParts() *testutil.Extrinsics {
	return &testutil.Extrinsics{
		Era:         testutil.MortalEra(),
		Nonce:       46,
		SpecVersion: 9010,
		TxVersion:   5,
		Genesis:     testutil.WestendGenesis,
		BlockHash:   common.BytesToHash(mustHex(testutil.SampleBlockHashHex)),
	}
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestParseTransaction(t *testing.T) {
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9010)
	addAlice(t, db, true)

	doc := Parse(db, testutil.SampleTransaction)
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{cards.Author(cards.AuthorPayload{
		Base58: testutil.AliceAddress,
		Seed:   "Alice",
		Path:   "//Alice",
		Name:   "Alice_key",
	})}, doc.Author)
	assert.Empty(t, doc.Warning)
	assert.Equal(t, transferCards(), doc.Method)
	assert.Equal(t, sampleExtrinsics(), doc.Extrinsics)

	a := requireStaged(t, db, doc, cards.SignTransaction)
	sign := a.(*staging.Sign)
	assert.Equal(t, crypto.Sr25519, sign.Scheme)
	assert.Equal(t, testutil.AlicePub, sign.PublicKey)
	assert.Equal(t, "//Alice", sign.Path)
	want := append(testutil.TransferKeepAlive(testutil.BobPub, 100000000000), sampleParts().Encode()...)
	assert.Equal(t, want, sign.Message)
}

func TestParseTransactionNewerVersion(t *testing.T) {
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9010, 9122)
	addAlice(t, db, true)

	doc := Parse(db, testutil.SampleTransaction)
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{cards.Warn(cards.NewerVersion(9010, 9122))}, doc.Warning)

	sign := requireStaged(t, db, doc, cards.SignTransaction).(*staging.Sign)
	require.Len(t, sign.History, 1)
	assert.Equal(t, staging.EventWarning, sign.History[0].Kind)
}

func TestParseTransactionUnknownAuthor(t *testing.T) {
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9010)

	doc := Parse(db, testutil.SampleTransaction)
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{cards.AuthorPlain(testutil.AliceAddress)}, doc.Author)
	assert.Equal(t, []cards.Card{cards.Warn(cards.AuthorNotFound)}, doc.Warning)
	assert.Equal(t, transferCards(), doc.Method)
	assert.Nil(t, doc.Action)
}

func TestParseTransactionNetworkNotAllowed(t *testing.T) {
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9010)
	addAlice(t, db, false)

	doc := Parse(db, testutil.SampleTransaction)
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{cards.Warn(cards.NoNetworkID)}, doc.Warning)
	assert.Equal(t, transferCards(), doc.Method)
	assert.Nil(t, doc.Action)
}

func TestParseTransactionMissingSchema(t *testing.T) {
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9122)
	addAlice(t, db, true)

	doc := Parse(db, testutil.SampleTransaction)
	require.True(t, doc.Failed())
	assert.Contains(t, doc.Error[0].Payload, metadata.ErrNoMetaThisVersion.Error())
	assert.Equal(t, sampleExtrinsics(), doc.Extrinsics)
	assert.Empty(t, doc.Method)
	assert.Nil(t, doc.Action)
}

func TestParseTransactionUnknownNetwork(t *testing.T) {
	db := newStore(t, verifier.None)

	doc := Parse(db, testutil.SampleTransaction)
	require.True(t, doc.Failed())
	assert.Equal(t, []cards.Card{cards.AuthorPublicKey(testutil.AlicePub, "sr25519")}, doc.Author)
	assert.Contains(t, doc.Error[0].Payload, network.ErrNoNetwork.Error())
	assert.Equal(t, []cards.Card{
		cards.EraMortalNonce(27, 64, "46"),
		cards.TipPlain("0"),
		cards.BlockHash(testutil.SampleBlockHashHex),
		cards.TxSpecPlain(testutil.WestendGenesisHex, 9010, 5),
	}, doc.Extrinsics)
	assert.Nil(t, doc.Action)

	// Same genesis registered for another scheme.
	spec := testutil.WestendSpec()
	spec.Scheme = crypto.Ed25519
	require.NoError(t, network.Insert(db, spec))
	doc = Parse(db, testutil.SampleTransaction)
	assert.Contains(t, doc.Error[0].Payload, network.ErrNetworkOtherScheme.Error())
}

func TestParseTransactionLeftovers(t *testing.T) {
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9010)
	addAlice(t, db, true)

	call := append(testutil.TransferKeepAlive(testutil.BobPub, 1), 0x00)
	payload := testutil.Transaction(crypto.Sr25519, testutil.AlicePub, call, sampleParts(), testutil.WestendGenesis)
	doc := Parse(db, payload)
	require.True(t, doc.Failed())
	assert.Contains(t, doc.Error[0].Payload, decoder.ErrSomeDataNotUsed.Error())
	assert.Equal(t, sampleExtrinsics(), doc.Extrinsics)
	assert.Nil(t, doc.Action)
}

func TestParseTransactionHashChecks(t *testing.T) {
	// An empty store: both checks run before any lookup.
	db := memorydb.New()
	call := testutil.TransferKeepAlive(testutil.BobPub, 1)

	other := common.Hash{0x01}
	payload := testutil.Transaction(crypto.Sr25519, testutil.AlicePub, call, sampleParts(), other)
	err := parseErr(db, payload)
	assert.ErrorIs(t, err, ErrGenesisMismatch)
	assert.Equal(t, errs.BadInput, errs.Classify(err))

	immortal := sampleParts()
	immortal.Era = []byte{0x00}
	payload = testutil.Transaction(crypto.Sr25519, testutil.AlicePub, call, immortal, testutil.WestendGenesis)
	assert.ErrorIs(t, parseErr(db, payload), ErrImmortalHashMismatch)

	immortal.BlockHash = testutil.WestendGenesis
	payload = testutil.Transaction(crypto.Sr25519, testutil.AlicePub, call, immortal, testutil.WestendGenesis)
	doc := Parse(db, payload)
	require.True(t, doc.Failed())
	assert.Contains(t, doc.Error[0].Payload, network.ErrNoNetwork.Error())
	assert.Equal(t, cards.EraImmortalNonce("46"), doc.Extrinsics[0])
}

func TestParseRejectsPrelude(t *testing.T) {
	db := memorydb.New()
	for payload, want := range map[string]error{
		"zz":                   ErrNotHex,
		"5301":                 ErrTooShort,
		"540100":               ErrBadMarker,
		"530199":               ErrUnknownPayload,
		"53ff00":               ErrUnsignedTx,
		"530700":               crypto.ErrUnknownScheme,
		"5301" + "00" + "d435": ErrBadTransaction,
		"5300c0" + "00112233":  ErrTooShort,
	} {
		assert.ErrorIs(t, parseErr(db, payload), want, payload)
	}
	doc := Parse(db, "zz")
	require.Len(t, doc.Error, 1)
	assert.Nil(t, doc.Action)
}

func addNetworkPayload(version uint32, spec *network.ChainSpec, v *testutil.Verifier) string {
	return testutil.UpdatePayload(params.PayloadAddNetwork, testutil.AddNetworkContent(testutil.WestendNewer(version), spec), v)
}

func TestAddNetworkUnsigned(t *testing.T) {
	db := newStore(t, verifier.None)

	doc := Parse(db, addNetworkPayload(9090, testutil.WestendSpec(), nil))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Empty(t, doc.Verifier)
	assert.Equal(t, []cards.Card{cards.Warn(cards.AddNetworkNotVerified)}, doc.Warning)
	require.Len(t, doc.NewNetwork, 1)
	p := doc.NewNetwork[0].Payload.(cards.NetworkPayload)
	assert.Equal(t, "westend", p.SpecName)
	assert.Equal(t, "9090", p.SpecVersion)
	assert.Equal(t, testutil.WestendGenesisHex, p.GenesisHash)
	assert.Equal(t, "none", p.Verifier.Encryption)

	a := requireStaged(t, db, doc, cards.AddNetwork).(*staging.AddChain)
	assert.True(t, a.Verifier.IsNone())
	assert.Equal(t, "westend", a.Spec.Name)

	// Nothing but the staged slot was written.
	_, err := network.NewRegistry(db).Resolve(testutil.WestendGenesis, crypto.Sr25519)
	assert.ErrorIs(t, err, network.ErrNoNetwork)
}

func TestAddNetworkSigned(t *testing.T) {
	v := testutil.NewVerifier(1)

	// General verifier not yet set.
	db := newStore(t, verifier.None)
	doc := Parse(db, addNetworkPayload(9090, testutil.WestendSpec(), v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{verifierCard(signedBy(v))}, doc.Verifier)
	assert.Equal(t, []cards.Card{cards.Warn(cards.GeneralVerifierAppeared)}, doc.Warning)
	a := requireStaged(t, db, doc, cards.AddNetworkAndAddGeneralVerifier).(*staging.AddChain)
	assert.True(t, a.Verifier.Equal(signedBy(v)))

	// General verifier already the signer.
	db = newStore(t, signedBy(v))
	doc = Parse(db, addNetworkPayload(9090, testutil.WestendSpec(), v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Empty(t, doc.Warning)
	requireStaged(t, db, doc, cards.AddNetwork)
}

func TestAddNetworkKnownSignedUpgradesBoth(t *testing.T) {
	v := testutil.NewVerifier(1)
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9090)

	doc := Parse(db, addNetworkPayload(9090, testutil.WestendSpec(), v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{verifierCard(signedBy(v))}, doc.Verifier)
	assert.Equal(t, []cards.Card{
		cards.Warn(cards.NetworkAlreadyHasEntries),
		cards.Warn(cards.VerifierAppeared),
		cards.Warn(cards.GeneralVerifierAppeared),
		cards.Warn(cards.MetaAlreadyThereBothVerifier),
	}, doc.Warning)
	assert.Empty(t, doc.Meta)
	a := requireStaged(t, db, doc, cards.AddTwoVerifiers).(*staging.UpdateChainVerifier)
	assert.Equal(t, testutil.WestendGenesis, a.Genesis)
	assert.Len(t, a.History, 4)

	// A newer schema is offered together with both verifiers.
	doc = Parse(db, addNetworkPayload(9100, testutil.WestendSpec(), v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Len(t, doc.Warning, 3)
	require.Len(t, doc.Meta, 1)
	assert.Equal(t, "9100", doc.Meta[0].Payload.(cards.MetaPayload).SpecVersion)
	lm := requireStaged(t, db, doc, cards.LoadMetadataAndAddGeneralVerifier).(*staging.LoadMetadata)
	assert.True(t, lm.ChainUpgrade)
	assert.True(t, lm.GeneralUpgrade)
}

func TestAddNetworkKnownPartialUpgrades(t *testing.T) {
	v := testutil.NewVerifier(1)

	// Chain trusted, general not.
	db := newStore(t, verifier.None)
	addWestend(t, db, signedBy(v), 9090)
	doc := Parse(db, addNetworkPayload(9090, testutil.WestendSpec(), v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{
		cards.Warn(cards.NetworkAlreadyHasEntries),
		cards.Warn(cards.GeneralVerifierAppeared),
		cards.Warn(cards.MetaAlreadyThereGeneralVerifier),
	}, doc.Warning)
	requireStaged(t, db, doc, cards.AddGeneralVerifier)

	// General trusted, chain not.
	db = newStore(t, signedBy(v))
	addWestend(t, db, verifier.None, 9090)
	doc = Parse(db, addNetworkPayload(9090, testutil.WestendSpec(), v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{
		cards.Warn(cards.NetworkAlreadyHasEntries),
		cards.Warn(cards.VerifierAppeared),
		cards.Warn(cards.MetaAlreadyThereChainVerifier),
	}, doc.Warning)
	requireStaged(t, db, doc, cards.AddMetadataVerifier)

	// Both trusted: only a new schema can be offered.
	db = newStore(t, signedBy(v))
	addWestend(t, db, signedBy(v), 9090)
	assert.ErrorIs(t, parseErr(db, addNetworkPayload(9090, testutil.WestendSpec(), v)), ErrSchemaKnown)
	doc = Parse(db, addNetworkPayload(9100, testutil.WestendSpec(), v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{cards.Warn(cards.NetworkAlreadyHasEntries)}, doc.Warning)
	requireStaged(t, db, doc, cards.LoadMetadata)
}

func TestAddNetworkKnownUnsigned(t *testing.T) {
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9090)

	doc := Parse(db, addNetworkPayload(9100, testutil.WestendSpec(), nil))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{
		cards.Warn(cards.NotVerified),
		cards.Warn(cards.NetworkAlreadyHasEntries),
	}, doc.Warning)
	requireStaged(t, db, doc, cards.LoadMetadata)

	assert.ErrorIs(t, parseErr(db, addNetworkPayload(9090, testutil.WestendSpec(), nil)), ErrSchemaKnown)
}

func TestAddNetworkKnownGenesisOtherScheme(t *testing.T) {
	v := testutil.NewVerifier(1)
	ed := testutil.WestendSpec()
	ed.Scheme = crypto.Ed25519

	// The chain verifier recorded for the genesis guards the new scheme.
	db := newStore(t, verifier.None)
	addWestend(t, db, signedBy(v), 9090)
	err := parseErr(db, addNetworkPayload(9090, ed, nil))
	assert.ErrorIs(t, err, verifier.ErrVerifierDisappeared)
	assert.Equal(t, errs.Trust, errs.Classify(err))

	doc := Parse(db, addNetworkPayload(9090, ed, v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{cards.Warn(cards.GeneralVerifierAppeared)}, doc.Warning)
	requireStaged(t, db, doc, cards.AddNetworkAndAddGeneralVerifier)

	// An unsigned chain record is upgraded by a signed announcement.
	db = newStore(t, signedBy(v))
	addWestend(t, db, verifier.None, 9090)
	doc = Parse(db, addNetworkPayload(9090, ed, v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{cards.Warn(cards.VerifierAppeared)}, doc.Warning)
	a := requireStaged(t, db, doc, cards.AddNetwork).(*staging.AddChain)
	assert.Equal(t, crypto.Ed25519, a.Spec.Scheme)
}

func TestAddNetworkRejects(t *testing.T) {
	v1, v2 := testutil.NewVerifier(1), testutil.NewVerifier(2)

	db := newStore(t, signedBy(v1))
	err := parseErr(db, addNetworkPayload(9090, testutil.WestendSpec(), v2))
	assert.ErrorIs(t, err, errs.Trust)
	var changed *verifier.ChangedError
	assert.True(t, errors.As(err, &changed))
	assert.ErrorIs(t, parseErr(db, addNetworkPayload(9090, testutil.WestendSpec(), nil)), verifier.ErrVerifierDisappeared)

	// Chain verifier differs from the signer.
	db = newStore(t, verifier.None)
	addWestend(t, db, signedBy(v2), 9090)
	assert.ErrorIs(t, parseErr(db, addNetworkPayload(9100, testutil.WestendSpec(), v1)), errs.Trust)

	// Important fields changed.
	db = newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9090)
	changedSpec := testutil.WestendSpec()
	changedSpec.Decimals = 10
	assert.ErrorIs(t, parseErr(db, addNetworkPayload(9100, changedSpec, nil)), network.ErrSpecsChanged)

	// Schema named for another network.
	renamed := testutil.WestendSpec()
	renamed.Name = "polkadot"
	assert.ErrorIs(t, parseErr(memorydb.New(), addNetworkPayload(9090, renamed, nil)), ErrSchemaForOther)

	// Tampered signature.
	payload := addNetworkPayload(9090, testutil.WestendSpec(), v1)
	tampered := payload[:len(payload)-2] + "00"
	if tampered == payload {
		tampered = payload[:len(payload)-2] + "01"
	}
	assert.ErrorIs(t, parseErr(db, tampered), ErrBadSignature)

	// Different bytes under a stored name and version.
	db = newStore(t, verifier.None)
	addWestend(t, db, verifier.None)
	storeSchema(t, db, testutil.WestendOlder(9090))
	assert.ErrorIs(t, parseErr(db, addNetworkPayload(9090, testutil.WestendSpec(), nil)), ErrSchemaConflict)
}

func loadMetadataPayload(version uint32, genesis common.Hash, v *testutil.Verifier) string {
	return testutil.UpdatePayload(params.PayloadLoadMetadata, testutil.LoadMetadataContent(testutil.WestendNewer(version), genesis), v)
}

func TestLoadMetadata(t *testing.T) {
	v := testutil.NewVerifier(3)
	db := newStore(t, verifier.None)
	addWestend(t, db, verifier.None, 9010)

	doc := Parse(db, loadMetadataPayload(9090, testutil.WestendGenesis, nil))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{cards.Warn(cards.NotVerified)}, doc.Warning)
	require.Len(t, doc.Meta, 1)
	meta := doc.Meta[0].Payload.(cards.MetaPayload)
	assert.Equal(t, "westend", meta.SpecName)
	assert.Equal(t, blobHash(testutil.WestendNewer(9090)), meta.MetaHash)
	requireStaged(t, db, doc, cards.LoadMetadata)

	doc = Parse(db, loadMetadataPayload(9090, testutil.WestendGenesis, v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{verifierCard(signedBy(v))}, doc.Verifier)
	assert.Equal(t, []cards.Card{cards.Warn(cards.VerifierAppeared)}, doc.Warning)
	lm := requireStaged(t, db, doc, cards.LoadMetadata).(*staging.LoadMetadata)
	assert.True(t, lm.ChainUpgrade)
	assert.False(t, lm.GeneralUpgrade)

	// Verifier-only upgrade of a stored schema.
	doc = Parse(db, loadMetadataPayload(9010, testutil.WestendGenesis, v))
	require.False(t, doc.Failed(), "%s", doc)
	requireStaged(t, db, doc, cards.AddMetadataVerifier)

	assert.ErrorIs(t, parseErr(db, loadMetadataPayload(9010, testutil.WestendGenesis, nil)), ErrSchemaKnown)
	assert.ErrorIs(t, parseErr(db, loadMetadataPayload(9090, common.Hash{0x02}, nil)), ErrNoNetworkForMeta)
}

func loadTypesPayload(v *testutil.Verifier) string {
	return testutil.UpdatePayload(params.PayloadLoadTypes, testutil.LoadTypesContent(testutil.WestendCatalog()), v)
}

func TestLoadTypes(t *testing.T) {
	v := testutil.NewVerifier(4)
	db := newStore(t, verifier.None)

	doc := Parse(db, loadTypesPayload(nil))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{
		cards.Warn(cards.TypesNotVerified),
		cards.Warn(cards.UpdatingTypes),
	}, doc.Warning)
	assert.Equal(t, []cards.Card{cards.TypesHash(blobHash(testutil.WestendCatalog().Encode()))}, doc.TypesInfo)
	requireStaged(t, db, doc, cards.LoadTypes)

	require.NoError(t, metadata.WriteTypeCatalog(db, testutil.WestendCatalog().Encode()))
	assert.ErrorIs(t, parseErr(db, loadTypesPayload(nil)), ErrTypesKnown)

	doc = Parse(db, loadTypesPayload(v))
	require.False(t, doc.Failed(), "%s", doc)
	assert.Equal(t, []cards.Card{
		cards.Warn(cards.GeneralVerifierAppeared),
		cards.Warn(cards.TypesAlreadyThere),
	}, doc.Warning)
	requireStaged(t, db, doc, cards.AddGeneralVerifier)

	empty := testutil.UpdatePayload(params.PayloadLoadTypes, testutil.LoadTypesContent(metadata.Catalog{}), nil)
	assert.ErrorIs(t, parseErr(db, empty), ErrEmptyTypes)
}
