package executor

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gsigner/address"
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/internal/testutil"
	"github.com/tos-network/gsigner/keyring"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/kvdb/memorydb"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/parser"
	"github.com/tos-network/gsigner/scale"
	"github.com/tos-network/gsigner/staging"
	"github.com/tos-network/gsigner/verifier"
)

const phrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

func newStore(t *testing.T) *memorydb.Database {
	db := memorydb.New()
	require.NoError(t, verifier.WriteGeneral(db, verifier.None))
	return db
}

// approveDoc approves whatever doc staged.
func approveDoc(t *testing.T, db kvdb.KeyValueStore, doc *cards.Document, secret, password string) (string, error) {
	t.Helper()
	require.False(t, doc.Failed(), "%s", doc)
	require.NotNil(t, doc.Action, "%s", doc)
	return Approve(db, keyring.New(), doc.Action.Payload(), secret, password, "")
}

// addWestend registers westend the way a user would: an unsigned
// add-network update, approved.
func addWestend(t *testing.T, db kvdb.KeyValueStore) {
	payload := testutil.UpdatePayload(params.PayloadAddNetwork,
		testutil.AddNetworkContent(testutil.WestendNewer(9010), testutil.WestendSpec()), nil)
	_, err := approveDoc(t, db, parser.Parse(db, payload), "", "")
	require.NoError(t, err)
}

func addKey(t *testing.T, db kvdb.KeyValueWriter, path, password string) []byte {
	pub, err := keyring.New().Public(crypto.Sr25519, path, phrase, password)
	require.NoError(t, err)
	rec := &address.Record{SeedName: "dev", Path: path, HasPassword: password != "", Name: "dev" + path}
	rec.Allow(testutil.WestendSpec().Identity())
	require.NoError(t, address.Write(db, crypto.Sr25519, pub, rec))
	return pub
}

func transaction(author, call []byte) string {
	parts := &testutil.Extrinsics{
		Era:         testutil.MortalEra(),
		Nonce:       46,
		SpecVersion: 9010,
		TxVersion:   5,
		Genesis:     testutil.WestendGenesis,
		BlockHash:   testutil.WestendGenesis,
	}
	return testutil.Transaction(crypto.Sr25519, author, call, parts, testutil.WestendGenesis)
}

func TestApproveSign(t *testing.T) {
	db := newStore(t)
	addWestend(t, db)
	pub := addKey(t, db, "//Alice", "")

	doc := parser.Parse(db, transaction(pub, testutil.TransferKeepAlive(testutil.BobPub, 100000000000)))
	staged, err := staging.Take(db, cards.SignTransaction, doc.Action.Checksum)
	require.NoError(t, err)
	msg := staged.(*staging.Sign).Message

	out, err := Approve(db, keyring.New(), doc.Action.Payload(), phrase, "", "to bob")
	require.NoError(t, err)
	require.Len(t, out, 130)
	assert.Equal(t, "01", out[:2])
	sig, err := hex.DecodeString(out[2:])
	require.NoError(t, err)
	assert.True(t, crypto.Verify(crypto.Sr25519, pub, msg, sig))

	// The slot is gone.
	sum, err := kvdb.Checksum(db)
	require.NoError(t, err)
	_, err = staging.Take(db, cards.SignTransaction, sum)
	var wrong *staging.WrongActionError
	assert.True(t, errors.As(err, &wrong), "got %v", err)

	entries, err := staging.History(db)
	require.NoError(t, err)
	last := entries[len(entries)-1].Events
	require.Len(t, last, 2)
	assert.Equal(t, staging.EventSigned, last[0].Kind)
	assert.Equal(t, staging.EventUserComment, last[1].Kind)
	assert.Equal(t, "to bob", last[1].Detail)
}

func TestApproveSignLongMessage(t *testing.T) {
	db := newStore(t)
	addWestend(t, db)
	pub := addKey(t, db, "//Alice", "")

	var e scale.Encoder
	e.PutByte(0) // System
	e.PutByte(1) // remark
	e.PutBytes(bytes.Repeat([]byte{0xab}, 300))
	doc := parser.Parse(db, transaction(pub, e.Bytes()))
	staged, err := staging.Take(db, cards.SignTransaction, doc.Action.Checksum)
	require.NoError(t, err)
	msg := staged.(*staging.Sign).Message
	require.Greater(t, len(msg), params.MaxMessageLength)

	out, err := approveDoc(t, db, doc, phrase, "")
	require.NoError(t, err)
	sig, _ := hex.DecodeString(out[2:])
	digest := crypto.Blake2b256(msg)
	assert.True(t, crypto.Verify(crypto.Sr25519, pub, digest[:], sig))
	assert.False(t, crypto.Verify(crypto.Sr25519, pub, msg, sig))
}

func TestApproveSignWrongSecret(t *testing.T) {
	db := newStore(t)
	addWestend(t, db)
	pub := addKey(t, db, "//Alice", "")
	doc := parser.Parse(db, transaction(pub, testutil.TransferKeepAlive(testutil.BobPub, 1)))

	other, err := keyring.Generate(128)
	require.NoError(t, err)
	_, err = approveDoc(t, db, doc, other, "")
	assert.ErrorIs(t, err, ErrWrongSecret)

	_, err = approveDoc(t, db, doc, "not a phrase", "")
	assert.ErrorIs(t, err, keyring.ErrBadMnemonic)

	// Nothing changed: the right secret still works.
	_, err = approveDoc(t, db, doc, phrase, "")
	assert.NoError(t, err)
}

func TestApproveSignPassword(t *testing.T) {
	db := newStore(t)
	addWestend(t, db)
	pub := addKey(t, db, "//Alice", "hunter2")
	doc := parser.Parse(db, transaction(pub, testutil.TransferKeepAlive(testutil.BobPub, 1)))
	assert.True(t, doc.Author[0].Payload.(cards.AuthorPayload).HasPassword)

	_, err := approveDoc(t, db, doc, phrase, "")
	assert.ErrorIs(t, err, ErrPasswordRequired)
	_, err = approveDoc(t, db, doc, phrase, "wrong")
	assert.ErrorIs(t, err, ErrWrongSecret)
	_, err = approveDoc(t, db, doc, phrase, "hunter2")
	assert.NoError(t, err)
}

func TestApproveAddNetwork(t *testing.T) {
	db := newStore(t)
	payload := testutil.UpdatePayload(params.PayloadAddNetwork,
		testutil.AddNetworkContent(testutil.WestendNewer(9090), testutil.WestendSpec()), nil)
	doc := parser.Parse(db, payload)
	require.Equal(t, cards.AddNetwork, doc.Action.Kind)

	out, err := approveDoc(t, db, doc, "", "")
	require.NoError(t, err)
	assert.Empty(t, out)

	specs, err := network.NewRegistry(db).All()
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "westend", specs[0].Name)
	versions, err := metadata.NewRegistry(db).Versions("westend")
	require.NoError(t, err)
	assert.Equal(t, []uint32{9090}, versions)
	chain, err := verifier.NewLedger(db).Chain(testutil.WestendGenesis)
	require.NoError(t, err)
	assert.True(t, chain.IsNone())

	// The same approval again is stale.
	_, err = approveDoc(t, db, doc, "", "")
	assert.ErrorIs(t, err, staging.ErrChecksumMismatch)

	// Signed re-announcement upgrades both verifiers at once.
	v := testutil.NewVerifier(5)
	signed := verifier.Signed(crypto.Ed25519, v.Public())
	payload = testutil.UpdatePayload(params.PayloadAddNetwork,
		testutil.AddNetworkContent(testutil.WestendNewer(9090), testutil.WestendSpec()), v)
	doc = parser.Parse(db, payload)
	require.Equal(t, cards.AddTwoVerifiers, doc.Action.Kind)
	_, err = approveDoc(t, db, doc, "", "")
	require.NoError(t, err)

	general, err := verifier.NewLedger(db).General()
	require.NoError(t, err)
	assert.True(t, general.Equal(signed))
	chain, err = verifier.NewLedger(db).Chain(testutil.WestendGenesis)
	require.NoError(t, err)
	assert.True(t, chain.Equal(signed))

	// Unsigned updates are now refused.
	doc = parser.Parse(db, testutil.UpdatePayload(params.PayloadAddNetwork,
		testutil.AddNetworkContent(testutil.WestendNewer(9100), testutil.WestendSpec()), nil))
	require.True(t, doc.Failed())
	assert.Nil(t, doc.Action)
}

func TestApproveAddNetworkSecondScheme(t *testing.T) {
	db := newStore(t)
	addWestend(t, db)
	v := testutil.NewVerifier(7)
	signed := verifier.Signed(crypto.Ed25519, v.Public())
	require.NoError(t, verifier.WriteGeneral(db, signed))

	ed := testutil.WestendSpec()
	ed.Scheme = crypto.Ed25519
	doc := parser.Parse(db, testutil.UpdatePayload(params.PayloadAddNetwork,
		testutil.AddNetworkContent(testutil.WestendNewer(9010), ed), v))
	require.False(t, doc.Failed(), "%s", doc)
	require.Equal(t, cards.AddNetwork, doc.Action.Kind)
	_, err := approveDoc(t, db, doc, "", "")
	require.NoError(t, err)

	specs, err := network.NewRegistry(db).ByGenesis(testutil.WestendGenesis)
	require.NoError(t, err)
	assert.Len(t, specs, 2)
	chain, err := verifier.NewLedger(db).Chain(testutil.WestendGenesis)
	require.NoError(t, err)
	assert.True(t, chain.Equal(signed))

	// The now signed genesis refuses unsigned announcements for any scheme.
	ed.Scheme = crypto.Ecdsa
	doc = parser.Parse(db, testutil.UpdatePayload(params.PayloadAddNetwork,
		testutil.AddNetworkContent(testutil.WestendNewer(9010), ed), nil))
	require.True(t, doc.Failed())
	assert.Nil(t, doc.Action)
}

func TestApproveLoadMetadataAndTypes(t *testing.T) {
	db := newStore(t)
	addWestend(t, db)
	v := testutil.NewVerifier(6)

	doc := parser.Parse(db, testutil.UpdatePayload(params.PayloadLoadMetadata,
		testutil.LoadMetadataContent(testutil.WestendNewer(9122), testutil.WestendGenesis), v))
	_, err := approveDoc(t, db, doc, "", "")
	require.NoError(t, err)
	versions, err := metadata.NewRegistry(db).Versions("westend")
	require.NoError(t, err)
	assert.Equal(t, []uint32{9010, 9122}, versions)
	chain, err := verifier.NewLedger(db).Chain(testutil.WestendGenesis)
	require.NoError(t, err)
	assert.True(t, chain.Equal(verifier.Signed(crypto.Ed25519, v.Public())))

	doc = parser.Parse(db, testutil.UpdatePayload(params.PayloadLoadTypes,
		testutil.LoadTypesContent(testutil.WestendCatalog()), v))
	require.Equal(t, cards.LoadTypes, doc.Action.Kind)
	_, err = approveDoc(t, db, doc, "", "")
	require.NoError(t, err)
	catalog, err := metadata.NewRegistry(db).TypeCatalog()
	require.NoError(t, err)
	assert.Equal(t, testutil.WestendCatalog(), catalog)
	general, err := verifier.NewLedger(db).General()
	require.NoError(t, err)
	assert.False(t, general.IsNone())
}

func TestApproveWrongAction(t *testing.T) {
	db := newStore(t)
	addWestend(t, db)
	pub := addKey(t, db, "//Alice", "")
	doc := parser.Parse(db, transaction(pub, testutil.TransferKeepAlive(testutil.BobPub, 1)))

	forged := (&cards.Action{Kind: cards.LoadMetadata, Checksum: doc.Action.Checksum}).Payload()
	_, err := Approve(db, keyring.New(), forged, phrase, "", "")
	var wrong *staging.WrongActionError
	require.True(t, errors.As(err, &wrong), "got %v", err)

	_, err = Approve(db, keyring.New(), `{"type":"sign_transaction"}`, phrase, "", "")
	assert.ErrorIs(t, err, cards.ErrBadAction)
}

func TestApproveReadmitsVerifiers(t *testing.T) {
	db := newStore(t)
	v1, v2 := testutil.NewVerifier(1), testutil.NewVerifier(2)
	require.NoError(t, verifier.WriteGeneral(db, verifier.Signed(crypto.Ed25519, v1.Public())))

	sum, err := staging.Stage(db, &staging.UpdateGeneralVerifier{Verifier: verifier.Signed(crypto.Ed25519, v2.Public())})
	require.NoError(t, err)
	ref := &cards.Action{Kind: cards.AddGeneralVerifier, Checksum: sum}
	_, err = Approve(db, keyring.New(), ref.Payload(), "", "", "")
	assert.ErrorIs(t, err, errs.Trust)

	after, err := kvdb.Checksum(db)
	require.NoError(t, err)
	assert.Equal(t, sum, after)
}
