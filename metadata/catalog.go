package metadata

import (
	"encoding/hex"
	"fmt"

	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/scale"
)

var ErrBadCatalog = errs.New(errs.NotDecodeable, "metadata: type catalog not decodeable")

// DescriptionKind selects how a catalog entry describes its type.
type DescriptionKind uint8

const (
	DescAlias DescriptionKind = iota
	DescEnum
	DescStruct
)

// EnumVariantKind selects the payload of an enum variant.
type EnumVariantKind uint8

const (
	VariantUnit EnumVariantKind = iota
	VariantType
	VariantStruct
)

// StructField is a field in a struct entry. Name is empty for tuple structs.
type StructField struct {
	Name string
	Type string
}

// EnumVariant is one arm of an enum entry.
type EnumVariant struct {
	Name   string
	Kind   EnumVariantKind
	Type   string        // VariantType
	Fields []StructField // VariantStruct
}

// Description is the body of a catalog entry.
type Description struct {
	Kind     DescriptionKind
	Alias    string        // DescAlias
	Variants []EnumVariant // DescEnum
	Fields   []StructField // DescStruct
}

// TypeEntry describes one named type for the positional schema family.
type TypeEntry struct {
	Name        string
	Description Description
}

// Catalog is the type catalog shared by all positional-family schemas.
type Catalog []TypeEntry

// CatalogHash is the display fingerprint of an encoded catalog.
func CatalogHash(raw []byte) string {
	h := crypto.Blake2b256(raw)
	return hex.EncodeToString(h[:])
}

// Encode writes the catalog as a vector of entries.
func (c Catalog) Encode() []byte {
	var e scale.Encoder
	e.PutCompact(uint64(len(c)))
	for _, entry := range c {
		e.PutString(entry.Name)
		d := entry.Description
		e.PutByte(byte(d.Kind))
		switch d.Kind {
		case DescAlias:
			e.PutString(d.Alias)
		case DescEnum:
			e.PutCompact(uint64(len(d.Variants)))
			for _, v := range d.Variants {
				e.PutString(v.Name)
				e.PutByte(byte(v.Kind))
				switch v.Kind {
				case VariantType:
					e.PutString(v.Type)
				case VariantStruct:
					encodeStructFields(&e, v.Fields)
				}
			}
		case DescStruct:
			encodeStructFields(&e, d.Fields)
		}
	}
	return e.Bytes()
}

func encodeStructFields(e *scale.Encoder, fields []StructField) {
	e.PutCompact(uint64(len(fields)))
	for _, f := range fields {
		e.PutOption(f.Name != "")
		if f.Name != "" {
			e.PutString(f.Name)
		}
		e.PutString(f.Type)
	}
}

// DecodeCatalog parses an encoded catalog. Trailing bytes are an error.
func DecodeCatalog(raw []byte) (Catalog, error) {
	d := scale.NewDecoder(raw)
	c, err := readCatalog(d)
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCatalog, err)
	}
	return c, nil
}

func readCatalog(d *scale.Decoder) (Catalog, error) {
	n, err := d.ReadCompactLen(2)
	if err != nil {
		return nil, err
	}
	c := make(Catalog, 0, n)
	for i := 0; i < n; i++ {
		var entry TypeEntry
		if entry.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		kind, err := d.ReadEnum(3)
		if err != nil {
			return nil, err
		}
		entry.Description.Kind = DescriptionKind(kind)
		switch entry.Description.Kind {
		case DescAlias:
			if entry.Description.Alias, err = d.ReadString(); err != nil {
				return nil, err
			}
		case DescEnum:
			if entry.Description.Variants, err = readEnumVariants(d); err != nil {
				return nil, err
			}
		case DescStruct:
			if entry.Description.Fields, err = readStructFields(d); err != nil {
				return nil, err
			}
		}
		c = append(c, entry)
	}
	return c, nil
}

func readEnumVariants(d *scale.Decoder) ([]EnumVariant, error) {
	n, err := d.ReadCompactLen(2)
	if err != nil {
		return nil, err
	}
	// variant tags are one byte
	if n > 256 {
		return nil, wrapf(scale.ErrSchemaViolation, "enum of %d variants", n)
	}
	out := make([]EnumVariant, 0, n)
	for i := 0; i < n; i++ {
		var v EnumVariant
		if v.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		kind, err := d.ReadEnum(3)
		if err != nil {
			return nil, err
		}
		v.Kind = EnumVariantKind(kind)
		switch v.Kind {
		case VariantType:
			if v.Type, err = d.ReadString(); err != nil {
				return nil, err
			}
		case VariantStruct:
			if v.Fields, err = readStructFields(d); err != nil {
				return nil, err
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func readStructFields(d *scale.Decoder) ([]StructField, error) {
	n, err := d.ReadCompactLen(2)
	if err != nil {
		return nil, err
	}
	out := make([]StructField, 0, n)
	for i := 0; i < n; i++ {
		var f StructField
		named, err := d.ReadOption()
		if err != nil {
			return nil, err
		}
		if named {
			if f.Name, err = d.ReadString(); err != nil {
				return nil, err
			}
		}
		if f.Type, err = d.ReadString(); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// lookup indexes the catalog by name.
func (c Catalog) lookup() map[string]*TypeEntry {
	m := make(map[string]*TypeEntry, len(c))
	for i := range c {
		m[c[i].Name] = &c[i]
	}
	return m
}
