package metadata

import (
	"fmt"

	"github.com/tos-network/gsigner/errs"
)

// TypeKind classifies a normalized type.
type TypeKind uint8

const (
	KindComposite TypeKind = iota
	KindVariant
	KindSequence
	KindArray
	KindTuple
	KindPrimitive
	KindCompact
	KindBitSequence

	// Kinds below never appear on the wire; resolvers produce them for
	// types the renderer displays specially.
	KindAccountID
	KindOption
	KindCall
)

func (k TypeKind) String() string {
	names := [...]string{"composite", "variant", "sequence", "array", "tuple", "primitive", "compact", "bitsequence", "accountid", "option", "call"}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Primitive enumerates the scalar types, in wire tag order.
type Primitive uint8

const (
	Bool Primitive = iota
	Char
	Str
	U8
	U16
	U32
	U64
	U128
	U256
	I8
	I16
	I32
	I64
	I128
	I256
)

const primitiveCount = int(I256) + 1

// Size returns the encoded width of fixed-size primitives, zero otherwise.
func (p Primitive) Size() int {
	switch p {
	case Bool, U8, I8:
		return 1
	case U16, I16:
		return 2
	case Char, U32, I32:
		return 4
	case U64, I64:
		return 8
	case U128, I128:
		return 16
	case U256, I256:
		return 32
	}
	return 0
}

func (p Primitive) Signed() bool { return p >= I8 }

// TypeRef points at a type: by id in the newer family, by name in the older.
type TypeRef struct {
	ID   uint32
	Name string
}

func (r TypeRef) String() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", r.ID)
}

// Field is a call argument, struct field or variant field.
type Field struct {
	Name     string // empty for positional fields
	TypeName string // declared type name, used for balance detection
	Type     TypeRef
	Docs     string
}

// Variant is one arm of an enum.
type Variant struct {
	Name   string
	Index  uint8
	Fields []Field
	Docs   string
}

// Type is the family-independent shape of a type, enough to walk encoded
// values of it.
type Type struct {
	Kind      TypeKind
	Path      []string
	Primitive Primitive
	Fields    []Field   // composite
	Variants  []Variant // variant
	Elem      TypeRef   // sequence, array, compact, option
	Len       uint32    // array
	Tuple     []TypeRef // tuple
}

// Call is a resolved call entry: where it lives and what it takes.
type Call struct {
	Pallet string
	Name   string
	Docs   string
	Args   []Field
}

// Resolver answers the two questions the call decoder asks of a schema.
type Resolver interface {
	Call(pallet, call uint8) (*Call, error)
	Resolve(ref TypeRef) (*Type, error)
}

// Schema is a parsed runtime schema of either family.
type Schema interface {
	Name() string
	Version() uint32
	Family() byte

	// Resolver binds the schema to a type catalog. Self-describing schemas
	// ignore the catalog; positional ones need it to resolve type names.
	Resolver(catalog Catalog) (Resolver, error)
}

var (
	ErrUnknownType = errs.New(errs.NotDecodeable, "metadata: type cannot be resolved")
	ErrTypeDepth   = errs.New(errs.NotDecodeable, "metadata: type nesting too deep")
	ErrNeedsTypes  = errs.New(errs.NotFound, "metadata: schema needs a type catalog")
)

// IndexError reports a pallet or call index outside the schema's tables.
type IndexError struct {
	What  string // "pallet" or "call"
	Index uint8
	Size  int
	Where string // pallet name for call errors
}

func (e *IndexError) Error() string {
	if e.What == "call" {
		return fmt.Sprintf("%v: call index %d not found in pallet %s with %d calls", errs.NotDecodeable, e.Index, e.Where, e.Size)
	}
	return fmt.Sprintf("%v: pallet index %d not found among %d pallets with calls", errs.NotDecodeable, e.Index, e.Size)
}

func (e *IndexError) Unwrap() error { return errs.NotDecodeable }
