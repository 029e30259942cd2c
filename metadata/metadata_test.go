package metadata_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/internal/testutil"
	"github.com/tos-network/gsigner/kvdb/memorydb"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/rawdb"
)

func TestParseNewerSchema(t *testing.T) {
	schema, err := metadata.ParseSchema(testutil.WestendNewer(9010))
	require.NoError(t, err)
	assert.Equal(t, "westend", schema.Name())
	assert.Equal(t, uint32(9010), schema.Version())
	assert.Equal(t, byte(14), schema.Family())

	r, err := schema.Resolver(nil)
	require.NoError(t, err)
	call, err := r.Call(4, 3)
	require.NoError(t, err)
	assert.Equal(t, "Balances", call.Pallet)
	assert.Equal(t, "transfer_keep_alive", call.Name)
	assert.Equal(t, testutil.TransferKeepAliveDocs, call.Docs)
	require.Len(t, call.Args, 2)
	assert.Equal(t, "dest", call.Args[0].Name)

	dest, err := r.Resolve(call.Args[0].Type)
	require.NoError(t, err)
	assert.Equal(t, metadata.KindVariant, dest.Kind)
	id, err := r.Resolve(dest.Variants[0].Fields[0].Type)
	require.NoError(t, err)
	assert.Equal(t, metadata.KindAccountID, id.Kind)
}

func TestNewerSchemaRuntimeCall(t *testing.T) {
	schema, err := metadata.ParseSchema(testutil.WestendNewer(9010))
	require.NoError(t, err)
	r, err := schema.Resolver(nil)
	require.NoError(t, err)

	batch, err := r.Call(16, 0)
	require.NoError(t, err)
	require.Len(t, batch.Args, 1)
	calls, err := r.Resolve(batch.Args[0].Type)
	require.NoError(t, err)
	require.Equal(t, metadata.KindSequence, calls.Kind)
	elem, err := r.Resolve(calls.Elem)
	require.NoError(t, err)
	assert.Equal(t, metadata.KindCall, elem.Kind)

	// a pallet's own call enum stays a variant
	newer := schema.(*metadata.NewerSchema)
	for _, p := range newer.Pallets {
		if p.Calls == nil {
			continue
		}
		inner, err := r.Resolve(metadata.TypeRef{ID: *p.Calls})
		require.NoError(t, err)
		assert.Equal(t, metadata.KindVariant, inner.Kind, p.Name)
	}
}

func TestParseOlderSchemaNeedsCatalog(t *testing.T) {
	schema, err := metadata.ParseSchema(testutil.WestendOlder(9000))
	require.NoError(t, err)
	assert.Equal(t, byte(13), schema.Family())

	_, err = schema.Resolver(nil)
	assert.ErrorIs(t, err, metadata.ErrNeedsTypes)

	r, err := schema.Resolver(testutil.WestendCatalog())
	require.NoError(t, err)
	call, err := r.Call(4, 3)
	require.NoError(t, err)
	assert.Equal(t, "transfer_keep_alive", call.Name)
	assert.Equal(t, testutil.TransferKeepAliveDocs, call.Docs)

	dest, err := r.Resolve(call.Args[0].Type)
	require.NoError(t, err)
	require.Equal(t, metadata.KindVariant, dest.Kind)
	assert.Equal(t, "Id", dest.Variants[0].Name)
	assert.Equal(t, "Address20", dest.Variants[4].Name)

	value, err := r.Resolve(call.Args[1].Type)
	require.NoError(t, err)
	assert.Equal(t, metadata.KindCompact, value.Kind)
	inner, err := r.Resolve(value.Elem)
	require.NoError(t, err)
	assert.Equal(t, metadata.U128, inner.Primitive)
}

func TestCallIndexErrors(t *testing.T) {
	schema, err := metadata.ParseSchema(testutil.WestendNewer(9010))
	require.NoError(t, err)
	r, _ := schema.Resolver(nil)

	_, err = r.Call(2, 0) // Timestamp declares no calls
	var ierr *metadata.IndexError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "pallet", ierr.What)
	assert.Equal(t, errs.NotDecodeable, errs.Classify(err))

	_, err = r.Call(4, 9)
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "call", ierr.What)
	assert.Equal(t, "Balances", ierr.Where)
}

func TestParseSchemaRejects(t *testing.T) {
	good := testutil.WestendNewer(9010)

	_, err := metadata.ParseSchema([]byte("nope"))
	assert.ErrorIs(t, err, metadata.ErrNotSchema)

	old := append([]byte{}, good...)
	old[4] = 11
	_, err = metadata.ParseSchema(old)
	assert.ErrorIs(t, err, metadata.ErrFamilyTooOld)

	future := append([]byte{}, good...)
	future[4] = 15
	_, err = metadata.ParseSchema(future)
	assert.ErrorIs(t, err, metadata.ErrUnknownFamily)

	_, err = metadata.ParseSchema(append(append([]byte{}, good...), 0))
	assert.ErrorIs(t, err, metadata.ErrBadSchema)

	_, err = metadata.ParseSchema(good[:len(good)-3])
	assert.ErrorIs(t, err, metadata.ErrBadSchema)
	assert.Equal(t, errs.NotDecodeable, errs.Classify(err))
}

func TestCatalogRoundTrip(t *testing.T) {
	c := testutil.WestendCatalog()
	raw := c.Encode()
	back, err := metadata.DecodeCatalog(raw)
	require.NoError(t, err)
	assert.Equal(t, c, back)
	assert.Len(t, metadata.CatalogHash(raw), 64)

	_, err = metadata.DecodeCatalog(append(raw, 1))
	assert.ErrorIs(t, err, metadata.ErrBadCatalog)
}

func TestCatalogEnumVariantLimit(t *testing.T) {
	enum := func(n int) metadata.Catalog {
		vs := make([]metadata.EnumVariant, n)
		for i := range vs {
			vs[i] = metadata.EnumVariant{Name: fmt.Sprintf("V%d", i)}
		}
		return metadata.Catalog{{Name: "Wide", Description: metadata.Description{Kind: metadata.DescEnum, Variants: vs}}}
	}
	back, err := metadata.DecodeCatalog(enum(256).Encode())
	require.NoError(t, err)
	assert.Len(t, back[0].Description.Variants, 256)

	_, err = metadata.DecodeCatalog(enum(257).Encode())
	assert.ErrorIs(t, err, metadata.ErrBadCatalog)
}

func TestIsBalance(t *testing.T) {
	for name, want := range map[string]bool{
		"T::Balance":                  true,
		"Compact<T::Balance>":         true,
		"BalanceOf<T>":                true,
		"<T as Config>::Balance":      true,
		"BalanceOf<T, I>":             true,
		"AccountIdLookupOf<T>":        false,
		"u128":                        false,
		"Compact<T::BlockNumber>":     false,
		"Box<<T as Config>::Balance>": true,
	} {
		assert.Equal(t, want, metadata.IsBalance(name), name)
	}
}

func TestRegistryFindSchema(t *testing.T) {
	db := memorydb.New()
	reg := metadata.NewRegistry(db)

	_, _, err := reg.FindSchema("westend", 9010)
	assert.ErrorIs(t, err, metadata.ErrNoMetaAtAll)

	for _, v := range []uint32{9000, 9010} {
		blob := testutil.WestendNewer(v)
		schema, err := metadata.Parse(blob)
		require.NoError(t, err)
		require.NoError(t, metadata.WriteSchema(db, schema, blob))
	}
	schema, latest, err := reg.FindSchema("westend", 9000)
	require.NoError(t, err)
	assert.Equal(t, uint32(9000), schema.Version())
	require.NotNil(t, latest)
	assert.Equal(t, uint32(9010), *latest)

	_, latest, err = reg.FindSchema("westend", 9010)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, _, err = reg.FindSchema("westend", 9100)
	assert.ErrorIs(t, err, metadata.ErrNoMetaThisVersion)
	assert.Equal(t, errs.NotFound, errs.Classify(err))
}

func TestRegistryDetectsMislabelledSchema(t *testing.T) {
	db := memorydb.New()
	require.NoError(t, rawdb.WriteMetadata(db, "westend", 9010, testutil.WestendNewer(9000)))

	_, _, err := metadata.NewRegistry(db).FindSchema("westend", 9010)
	assert.ErrorIs(t, err, metadata.ErrSchemaMismatch)
	assert.Equal(t, errs.System, errs.Classify(err))
}

func TestRegistryTypeCatalog(t *testing.T) {
	db := memorydb.New()
	reg := metadata.NewRegistry(db)
	_, err := reg.TypeCatalog()
	assert.ErrorIs(t, err, metadata.ErrNoTypes)

	require.NoError(t, metadata.WriteTypeCatalog(db, testutil.WestendCatalog().Encode()))
	c, err := reg.TypeCatalog()
	require.NoError(t, err)
	assert.Len(t, c, len(testutil.WestendCatalog()))
}

func TestParseIsCached(t *testing.T) {
	blob := testutil.WestendNewer(9111)
	a, err := metadata.Parse(blob)
	require.NoError(t, err)
	b, err := metadata.Parse(append([]byte{}, blob...))
	require.NoError(t, err)
	assert.Same(t, a, b)
}
