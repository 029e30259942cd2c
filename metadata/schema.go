// Package metadata parses runtime schemas and keeps the schema registry.
//
// A schema tells the call decoder how to read the encoded call of a chain
// at one runtime version. Two schema families exist: the older one lists
// calls positionally and names argument types as strings resolved through
// a separate type catalog; the newer one carries a complete type graph.
package metadata

import (
	"bytes"
	"fmt"

	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/scale"
)

var (
	ErrNotSchema      = errs.New(errs.NotDecodeable, "metadata: blob does not start with the schema magic")
	ErrFamilyTooOld   = errs.New(errs.NotDecodeable, "metadata: schema family is too old")
	ErrUnknownFamily  = errs.New(errs.NotDecodeable, "metadata: unknown schema family")
	ErrBadSchema      = errs.New(errs.NotDecodeable, "metadata: schema not decodeable")
	ErrSchemaMismatch = errs.New(errs.System, "metadata: stored schema reports a different name or version than its key")
	ErrStoredSchema   = errs.New(errs.System, "metadata: stored schema not decodeable")
)

func wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{err}, args...)...)
}

// ParseSchema decodes a schema blob of any supported family.
func ParseSchema(blob []byte) (Schema, error) {
	if len(blob) < len(params.SchemaMagic)+1 || !bytes.Equal(blob[:len(params.SchemaMagic)], []byte(params.SchemaMagic)) {
		return nil, ErrNotSchema
	}
	family := blob[len(params.SchemaMagic)]
	if family < params.MinSchemaFamily {
		return nil, wrapf(ErrFamilyTooOld, "family %d", family)
	}
	d := scale.NewDecoder(blob[len(params.SchemaMagic)+1:])
	name, err := d.ReadString()
	if err != nil {
		return nil, wrapf(ErrBadSchema, "%v", err)
	}
	version, err := d.ReadU32()
	if err != nil {
		return nil, wrapf(ErrBadSchema, "%v", err)
	}

	var schema Schema
	switch family {
	case 12, 13:
		s := &OlderSchema{name: name, version: version, family: family}
		err = readOlder(d, s)
		schema = s
	case 14:
		s := &NewerSchema{name: name, version: version}
		err = readNewer(d, s)
		schema = s
	default:
		return nil, wrapf(ErrUnknownFamily, "family %d", family)
	}
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return nil, wrapf(ErrBadSchema, "%s %d: %v", name, version, err)
	}
	return schema, nil
}
