package decoder

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/internal/testutil"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/scale"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		value    string
		decimals uint8
		amount   string
		units    string
	}{
		{"100000000000", 12, "100.000000000", "mWND"},
		{"300000000000000", 12, "300.000000000000", "WND"},
		{"0", 12, "0", "pWND"},
		{"300000000", 6, "300.000000", "WND"},
		{"5", 1, "500", "mWND"},
		{"5000", 0, "5.000", "kWND"},
		{"1", 12, "1", "pWND"},
		{"12345678901234567890123", 12, "12.345678901234567890123", "GWND"},
		{"1234567890123456789012345", 12, "1.234567890123456789012345", "TWND"},
		{"123456789012345678901234567", 12, "123.456789012345678901234567", "TWND"},
		{"1", 18, "0.000001", "pWND"},
	}
	for _, tt := range tests {
		v, err := uint256.FromDecimal(tt.value)
		require.NoError(t, err)
		amount, units := FormatBalance(v, tt.decimals, "WND")
		assert.Equal(t, tt.amount, amount, "value %s decimals %d", tt.value, tt.decimals)
		assert.Equal(t, tt.units, units, "value %s decimals %d", tt.value, tt.decimals)
	}
}

func TestEra(t *testing.T) {
	era, err := ReadEra(scale.NewDecoder(testutil.MortalEra()))
	require.NoError(t, err)
	assert.Equal(t, Era{Period: 64, Phase: 27}, era)
	assert.Equal(t, testutil.MortalEra(), era.Encode())

	era, err = ReadEra(scale.NewDecoder([]byte{0}))
	require.NoError(t, err)
	assert.True(t, era.Immortal)

	// period 2 is below the minimum of 4
	_, err = ReadEra(scale.NewDecoder([]byte{0x10, 0x00}))
	assert.ErrorIs(t, err, scale.ErrSchemaViolation)
	_, err = ReadEra(scale.NewDecoder([]byte{0x05}))
	assert.ErrorIs(t, err, scale.ErrShortInput)
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

func resolvers(t *testing.T) map[string]metadata.Resolver {
	newer, err := metadata.ParseSchema(testutil.WestendNewer(9010))
	require.NoError(t, err)
	older, err := metadata.ParseSchema(testutil.WestendOlder(9010))
	require.NoError(t, err)
	nr, err := newer.Resolver(nil)
	require.NoError(t, err)
	or, err := older.Resolver(testutil.WestendCatalog())
	require.NoError(t, err)
	return map[string]metadata.Resolver{"newer": nr, "older": or}
}

func TestDecodeCallBothFamilies(t *testing.T) {
	body := testutil.TransferKeepAlive(testutil.BobPub, 100000000000)
	for family, r := range resolvers(t) {
		have, err := DecodeCall(r, body, testutil.WestendSpec())
		require.NoError(t, err, family)
		assert.Equal(t, transferCards(), have, family)
	}
}

func TestDecodeNestedCallBothFamilies(t *testing.T) {
	body := testutil.Batch(testutil.TransferKeepAlive(testutil.BobPub, 100000000000))
	want := []cards.Card{
		cards.Call("Utility", "batch", testutil.BatchDocs),
		cards.Varname("calls").At(1),
	}
	for _, c := range transferCards() {
		want = append(want, c.At(c.Indent+2))
	}
	for family, r := range resolvers(t) {
		have, err := DecodeCall(r, body, testutil.WestendSpec())
		require.NoError(t, err, family)
		assert.Equal(t, want, have, family)
	}
}

func TestDecodeCallRejectsLeftovers(t *testing.T) {
	body := append(testutil.TransferKeepAlive(testutil.BobPub, 1), 0x00)
	for family, r := range resolvers(t) {
		_, err := DecodeCall(r, body, testutil.WestendSpec())
		assert.ErrorIs(t, err, ErrSomeDataNotUsed, family)
		assert.Equal(t, errs.BadInput, errs.Classify(err), family)
	}
}

func TestDecodeCallTruncated(t *testing.T) {
	body := testutil.TransferKeepAlive(testutil.BobPub, 1)
	for family, r := range resolvers(t) {
		for cut := 0; cut < len(body); cut++ {
			_, err := DecodeCall(r, body[:cut], testutil.WestendSpec())
			if err == nil {
				t.Fatalf("%s: truncated body of %d bytes decoded", family, cut)
			}
		}
	}
}

func TestDecodeCallBadIndices(t *testing.T) {
	for family, r := range resolvers(t) {
		_, err := DecodeCall(r, []byte{7, 0}, testutil.WestendSpec())
		var ierr *metadata.IndexError
		require.True(t, errors.As(err, &ierr), family)
		assert.Equal(t, "pallet", ierr.What)

		_, err = DecodeCall(r, []byte{4, 20}, testutil.WestendSpec())
		require.True(t, errors.As(err, &ierr), family)
		assert.Equal(t, uint8(20), ierr.Index)
		assert.Equal(t, 4, ierr.Size)
	}
}

func TestDecodeUnknownVariant(t *testing.T) {
	body, _ := hex.DecodeString("04030900")
	for family, r := range resolvers(t) {
		_, err := DecodeCall(r, body, testutil.WestendSpec())
		assert.ErrorIs(t, err, ErrUnknownVariant, family)
	}
}

func TestDecodeOptionAndBool(t *testing.T) {
	r := resolvers(t)["newer"]
	have, err := DecodeCall(r, []byte{0, 9, 1, 1, 7, 0, 0, 0}, testutil.WestendSpec())
	require.NoError(t, err)
	assert.Equal(t, []cards.Card{
		cards.Call("System", "set_flag", ""),
		cards.Varname("flag").At(1),
		cards.Default("true").At(2),
		cards.Varname("limit").At(1),
		cards.Default("7").At(2),
	}, have)

	have, err = DecodeCall(r, []byte{0, 9, 0, 0}, testutil.WestendSpec())
	require.NoError(t, err)
	assert.Equal(t, cards.None().At(2), have[4])

	_, err = DecodeCall(r, []byte{0, 9, 2, 0}, testutil.WestendSpec())
	assert.ErrorIs(t, err, scale.ErrSchemaViolation)
}

func TestDecodeBytesAsHex(t *testing.T) {
	for family, r := range resolvers(t) {
		have, err := DecodeCall(r, []byte{0, 1, 12, 0xde, 0xad, 0xbe}, testutil.WestendSpec())
		require.NoError(t, err, family)
		assert.Equal(t, cards.Default("deadbe").At(2), have[len(have)-1], family)
	}
}

func TestDecodeSequenceLengthBounded(t *testing.T) {
	// remark declares 2^30 bytes but carries three
	body := []byte{0, 1, 0x02, 0x00, 0x00, 0x01, 1, 2, 3}
	for family, r := range resolvers(t) {
		_, err := DecodeCall(r, body, testutil.WestendSpec())
		assert.ErrorIs(t, err, scale.ErrShortInput, family)
	}
}

func TestBitSequence(t *testing.T) {
	w := &walker{d: scale.NewDecoder([]byte{24 << 2, 0x20, 0x04, 0x9b}), chain: testutil.WestendSpec()}
	require.NoError(t, w.bits(0))
	assert.Equal(t, cards.BitVec("[00000100, 00100000, 11011001]"), w.out[0])

	tests := [][]byte{
		{0x13, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, // 2^64-1 bits
		{0x13, 0xf9, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, // 2^64-7 bits
		{17 << 2, 0xff, 0xff}, // 17 bits in two bytes
	}
	for _, in := range tests {
		w := &walker{d: scale.NewDecoder(in), chain: testutil.WestendSpec()}
		assert.ErrorIs(t, w.bits(0), scale.ErrShortInput, "%x", in)
		assert.Empty(t, w.out, "%x", in)
	}
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "-1", signed(uint256.NewInt(0xff), 1))
	assert.Equal(t, "127", signed(uint256.NewInt(0x7f), 1))
	max := new(uint256.Int).SetAllOne()
	assert.Equal(t, "-1", signed(max, 32))
	v := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(2))
	assert.Equal(t, "-2", signed(v, 16))
}

func TestExtensionCards(t *testing.T) {
	raw, err := hex.DecodeString(testutil.SampleTransaction)
	require.NoError(t, err)
	// prelude, author, call with its length prefix
	d := scale.NewDecoder(raw[3+32:])
	_, err = d.ReadBytes()
	require.NoError(t, err)

	x, err := ReadExtensions(d)
	require.NoError(t, err)
	assert.Equal(t, 32, d.Remaining())
	assert.Equal(t, testutil.WestendGenesis, x.GenesisHash)

	assert.Equal(t, []cards.Card{
		cards.EraMortalNonce(27, 64, "46"),
		cards.Tip("0", "pWND"),
		cards.BlockHash(testutil.SampleBlockHashHex),
		cards.TxSpec("westend", 9010, 5),
	}, x.Cards(testutil.WestendSpec()))

	assert.Equal(t, []cards.Card{
		cards.EraMortalNonce(27, 64, "46"),
		cards.TipPlain("0"),
		cards.BlockHash(testutil.SampleBlockHashHex),
		cards.TxSpecPlain(testutil.WestendGenesisHex, 9010, 5),
	}, x.PlainCards())
}

func TestExtensionCardsImmortal(t *testing.T) {
	parts := &testutil.Extrinsics{Era: []byte{0x00}, Nonce: 3, SpecVersion: 9010, TxVersion: 5,
		Genesis: testutil.WestendGenesis, BlockHash: testutil.WestendGenesis}
	x, err := ReadExtensions(scale.NewDecoder(parts.Encode()))
	require.NoError(t, err)
	assert.Equal(t, []cards.Card{
		cards.EraImmortalNonce("3"),
		cards.TipPlain("0"),
		cards.TxSpecPlain(testutil.WestendGenesisHex, 9010, 5),
	}, x.PlainCards())
}
