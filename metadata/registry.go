package metadata

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/kvdb"
	"github.com/tos-network/gsigner/log"
	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/rawdb"
)

var (
	ErrNoMetaAtAll       = errs.New(errs.NotFound, "metadata: no schema on record for this network")
	ErrNoMetaThisVersion = errs.New(errs.NotFound, "metadata: no schema on record for this version")
	ErrNoTypes           = errs.New(errs.NotFound, "metadata: type catalog not on record")
)

// parsed schemas keyed by the blake2b-256 hash of their blob
var schemaCache, _ = lru.New(params.SchemaCacheSize)

// Registry reads schemas and the type catalog from the store.
type Registry struct {
	db kvdb.Reader
}

func NewRegistry(db kvdb.Reader) *Registry {
	return &Registry{db: db}
}

// Parse decodes blob, reusing an earlier parse of identical bytes.
func Parse(blob []byte) (Schema, error) {
	key := crypto.Blake2b256(blob)
	if cached, ok := schemaCache.Get(key); ok {
		return cached.(Schema), nil
	}
	schema, err := ParseSchema(blob)
	if err != nil {
		return nil, err
	}
	schemaCache.Add(key, schema)
	return schema, nil
}

// FindSchema returns the schema of name at exactly version. When a newer
// version is also on record, latest reports it so the caller can warn.
func (r *Registry) FindSchema(name string, version uint32) (schema Schema, latest *uint32, err error) {
	versions, err := rawdb.ReadMetadataVersions(r.db, name)
	if err != nil {
		return nil, nil, err
	}
	if len(versions) == 0 {
		return nil, nil, wrapf(ErrNoMetaAtAll, "%s", name)
	}
	found := false
	for _, v := range versions {
		if v == version {
			found = true
		}
		if v > version && (latest == nil || v > *latest) {
			v := v
			latest = &v
		}
	}
	if !found {
		return nil, nil, wrapf(ErrNoMetaThisVersion, "%s %d", name, version)
	}
	blob, err := rawdb.ReadMetadata(r.db, name, version)
	if err != nil {
		return nil, nil, err
	}
	schema, err = Parse(blob)
	if err != nil {
		return nil, nil, wrapf(ErrStoredSchema, "%s %d: %v", name, version, err)
	}
	if schema.Name() != name || schema.Version() != version {
		log.Warn("Stored schema disagrees with its key", "name", name, "version", version,
			"reported", schema.Name(), "reportedVersion", schema.Version())
		return nil, nil, wrapf(ErrSchemaMismatch, "%s %d stored as %s %d", schema.Name(), schema.Version(), name, version)
	}
	return schema, latest, nil
}

// SchemaBytes returns the stored blob of name at version, or nil.
func (r *Registry) SchemaBytes(name string, version uint32) ([]byte, error) {
	return rawdb.ReadMetadata(r.db, name, version)
}

// Versions lists the stored versions of name.
func (r *Registry) Versions(name string) ([]uint32, error) {
	return rawdb.ReadMetadataVersions(r.db, name)
}

// TypeCatalog returns the stored catalog. An absent or empty catalog is
// ErrNoTypes.
func (r *Registry) TypeCatalog() (Catalog, error) {
	raw, err := r.TypeCatalogBytes()
	if err != nil {
		return nil, err
	}
	c, err := DecodeCatalog(raw)
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return nil, ErrNoTypes
	}
	return c, nil
}

// TypeCatalogBytes returns the stored encoded catalog.
func (r *Registry) TypeCatalogBytes() ([]byte, error) {
	raw, err := rawdb.ReadTypeCatalog(r.db)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoTypes
	}
	return raw, nil
}

// WriteSchema stores blob under the name and version it reports.
func WriteSchema(w kvdb.KeyValueWriter, schema Schema, blob []byte) error {
	return rawdb.WriteMetadata(w, schema.Name(), schema.Version(), blob)
}

// WriteTypeCatalog stores an encoded catalog.
func WriteTypeCatalog(w kvdb.KeyValueWriter, raw []byte) error {
	return rawdb.WriteTypeCatalog(w, raw)
}
