package metadata

import (
	"strconv"
	"strings"

	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/scale"
)

// ArgDef is a call argument of the positional family: a name and a type
// name to be resolved through the catalog.
type ArgDef struct {
	Name string
	Type string
}

// CallDef is a call entry of the positional family.
type CallDef struct {
	Name string
	Args []ArgDef
	Docs []string
}

// Module is a pallet of the positional family. Calls is nil when the
// module declares no call table at all.
type Module struct {
	Name  string
	Index uint8
	Calls []CallDef
}

// OlderSchema is a schema of families 12 and 13: call tables are
// positional and argument types are plain names.
type OlderSchema struct {
	name    string
	version uint32
	family  byte
	Modules []Module
}

func (s *OlderSchema) Name() string    { return s.name }
func (s *OlderSchema) Version() uint32 { return s.version }
func (s *OlderSchema) Family() byte    { return s.family }

// Resolver binds the schema to catalog. An empty catalog is refused since
// no call argument could be resolved against it.
func (s *OlderSchema) Resolver(catalog Catalog) (Resolver, error) {
	if len(catalog) == 0 {
		return nil, ErrNeedsTypes
	}
	return &olderResolver{schema: s, catalog: catalog.lookup()}, nil
}

// EncodeOlder builds a family 12/13 schema blob.
func EncodeOlder(name string, version uint32, family byte, modules []Module) []byte {
	var e scale.Encoder
	e.PutFixed([]byte(params.SchemaMagic))
	e.PutByte(family)
	e.PutString(name)
	e.PutU32(version)
	e.PutCompact(uint64(len(modules)))
	for _, m := range modules {
		e.PutString(m.Name)
		e.PutByte(m.Index)
		e.PutOption(m.Calls != nil)
		if m.Calls == nil {
			continue
		}
		e.PutCompact(uint64(len(m.Calls)))
		for _, c := range m.Calls {
			e.PutString(c.Name)
			e.PutCompact(uint64(len(c.Args)))
			for _, a := range c.Args {
				e.PutString(a.Name)
				e.PutString(a.Type)
			}
			e.PutStrings(c.Docs)
		}
	}
	return e.Bytes()
}

func readOlder(d *scale.Decoder, s *OlderSchema) error {
	n, err := d.ReadCompactLen(3)
	if err != nil {
		return err
	}
	s.Modules = make([]Module, 0, n)
	for i := 0; i < n; i++ {
		var m Module
		if m.Name, err = d.ReadString(); err != nil {
			return err
		}
		if m.Index, err = d.ReadByte(); err != nil {
			return err
		}
		some, err := d.ReadOption()
		if err != nil {
			return err
		}
		if some {
			if m.Calls, err = readOlderCalls(d); err != nil {
				return err
			}
		}
		s.Modules = append(s.Modules, m)
	}
	return nil
}

func readOlderCalls(d *scale.Decoder) ([]CallDef, error) {
	n, err := d.ReadCompactLen(3)
	if err != nil {
		return nil, err
	}
	calls := make([]CallDef, 0, n)
	for i := 0; i < n; i++ {
		var c CallDef
		if c.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		args, err := d.ReadCompactLen(2)
		if err != nil {
			return nil, err
		}
		for j := 0; j < args; j++ {
			var a ArgDef
			if a.Name, err = d.ReadString(); err != nil {
				return nil, err
			}
			if a.Type, err = d.ReadString(); err != nil {
				return nil, err
			}
			c.Args = append(c.Args, a)
		}
		if c.Docs, err = d.ReadStrings(); err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	return calls, nil
}

type olderResolver struct {
	schema  *OlderSchema
	catalog map[string]*TypeEntry
}

func (r *olderResolver) Call(pallet, call uint8) (*Call, error) {
	withCalls := 0
	for _, m := range r.schema.Modules {
		if m.Calls == nil {
			continue
		}
		withCalls++
		if m.Index != pallet {
			continue
		}
		if int(call) >= len(m.Calls) {
			return nil, &IndexError{What: "call", Index: call, Size: len(m.Calls), Where: m.Name}
		}
		def := m.Calls[call]
		out := &Call{Pallet: m.Name, Name: def.Name, Docs: strings.Join(def.Docs, "\n")}
		for _, a := range def.Args {
			out.Args = append(out.Args, Field{Name: a.Name, TypeName: a.Type, Type: TypeRef{Name: a.Type}})
		}
		return out, nil
	}
	return nil, &IndexError{What: "pallet", Index: pallet, Size: withCalls}
}

func (r *olderResolver) Resolve(ref TypeRef) (*Type, error) {
	return r.resolve(ref.Name, 0)
}

// resolve turns a declared type name into a Type. Qualifying paths and
// boxes are stripped first, then structural forms (Vec, Option, Compact,
// arrays, tuples) are parsed, then builtins and finally the catalog.
func (r *olderResolver) resolve(name string, depth int) (*Type, error) {
	if depth > params.MaxDecodeDepth {
		return nil, ErrTypeDepth
	}
	name = normalizeTypeName(name)

	switch {
	case name == "()":
		return &Type{Kind: KindTuple}, nil
	case strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")"):
		t := &Type{Kind: KindTuple}
		for _, part := range splitTopLevel(name[1 : len(name)-1]) {
			t.Tuple = append(t.Tuple, TypeRef{Name: part})
		}
		return t, nil
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		inner := name[1 : len(name)-1]
		semi := strings.LastIndex(inner, ";")
		if semi < 0 {
			return nil, unknownType(name)
		}
		n, err := strconv.ParseUint(strings.TrimSpace(inner[semi+1:]), 10, 32)
		if err != nil {
			return nil, unknownType(name)
		}
		return &Type{Kind: KindArray, Elem: TypeRef{Name: strings.TrimSpace(inner[:semi])}, Len: uint32(n)}, nil
	}
	if head, inner, ok := splitGeneric(name); ok {
		switch head {
		case "Vec", "BoundedVec", "WeakBoundedVec":
			return &Type{Kind: KindSequence, Elem: TypeRef{Name: firstGenericArg(inner)}}, nil
		case "Option":
			return &Type{Kind: KindOption, Elem: TypeRef{Name: inner}}, nil
		case "Compact":
			return &Type{Kind: KindCompact, Elem: TypeRef{Name: inner}}, nil
		case "BitVec":
			return &Type{Kind: KindBitSequence}, nil
		}
		if t, ok := builtinType(head); ok {
			return t, nil
		}
		if entry, ok := r.catalog[name]; ok {
			return r.fromEntry(entry, depth)
		}
		if entry, ok := r.catalog[head]; ok {
			return r.fromEntry(entry, depth)
		}
		return nil, unknownType(name)
	}
	if t, ok := builtinType(name); ok {
		return t, nil
	}
	if entry, ok := r.catalog[name]; ok {
		return r.fromEntry(entry, depth)
	}
	return nil, unknownType(name)
}

func (r *olderResolver) fromEntry(entry *TypeEntry, depth int) (*Type, error) {
	d := entry.Description
	switch d.Kind {
	case DescAlias:
		return r.resolve(d.Alias, depth+1)
	case DescStruct:
		return &Type{Kind: KindComposite, Path: []string{entry.Name}, Fields: structFields(d.Fields)}, nil
	default:
		t := &Type{Kind: KindVariant, Path: []string{entry.Name}}
		for i, v := range d.Variants {
			variant := Variant{Name: v.Name, Index: uint8(i)}
			switch v.Kind {
			case VariantType:
				variant.Fields = []Field{{TypeName: v.Type, Type: TypeRef{Name: v.Type}}}
			case VariantStruct:
				variant.Fields = structFields(v.Fields)
			}
			t.Variants = append(t.Variants, variant)
		}
		return t, nil
	}
}

func structFields(in []StructField) []Field {
	out := make([]Field, 0, len(in))
	for _, f := range in {
		out = append(out, Field{Name: f.Name, TypeName: f.Type, Type: TypeRef{Name: f.Type}})
	}
	return out
}

func builtinType(name string) (*Type, bool) {
	switch name {
	case "bool":
		return &Type{Kind: KindPrimitive, Primitive: Bool}, true
	case "char":
		return &Type{Kind: KindPrimitive, Primitive: Char}, true
	case "str", "String", "Text":
		return &Type{Kind: KindPrimitive, Primitive: Str}, true
	case "u8", "Percent":
		return &Type{Kind: KindPrimitive, Primitive: U8}, true
	case "u16":
		return &Type{Kind: KindPrimitive, Primitive: U16}, true
	case "u32", "BlockNumber", "Perbill", "Permill":
		return &Type{Kind: KindPrimitive, Primitive: U32}, true
	case "u64", "Moment":
		return &Type{Kind: KindPrimitive, Primitive: U64}, true
	case "u128", "Balance", "BalanceOf":
		return &Type{Kind: KindPrimitive, Primitive: U128}, true
	case "u256", "U256":
		return &Type{Kind: KindPrimitive, Primitive: U256}, true
	case "i8":
		return &Type{Kind: KindPrimitive, Primitive: I8}, true
	case "i16":
		return &Type{Kind: KindPrimitive, Primitive: I16}, true
	case "i32":
		return &Type{Kind: KindPrimitive, Primitive: I32}, true
	case "i64":
		return &Type{Kind: KindPrimitive, Primitive: I64}, true
	case "i128":
		return &Type{Kind: KindPrimitive, Primitive: I128}, true
	case "AccountId", "AccountId32":
		return &Type{Kind: KindAccountID}, true
	case "Call", "RuntimeCall":
		return &Type{Kind: KindCall}, true
	case "Bytes":
		return &Type{Kind: KindSequence, Elem: TypeRef{Name: "u8"}}, true
	case "H160":
		return &Type{Kind: KindArray, Elem: TypeRef{Name: "u8"}, Len: 20}, true
	case "H256", "Hash":
		return &Type{Kind: KindArray, Elem: TypeRef{Name: "u8"}, Len: 32}, true
	case "H512":
		return &Type{Kind: KindArray, Elem: TypeRef{Name: "u8"}, Len: 64}, true
	}
	return nil, false
}

func unknownType(name string) error {
	return wrapf(ErrUnknownType, "%q", name)
}

// normalizeTypeName removes whitespace noise, qualifying paths such as
// "<T as Config>::" or "T::", and Box wrappers.
func normalizeTypeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	for {
		prev := name
		if strings.HasPrefix(name, "<") {
			if end := matchingAngle(name, 0); end > 0 && strings.HasPrefix(name[end+1:], "::") {
				name = name[end+3:]
			}
		}
		if i := strings.Index(name, "::"); i > 0 && isIdent(name[:i]) {
			name = name[i+2:]
		}
		if head, inner, ok := splitGeneric(name); ok && head == "Box" {
			name = inner
		}
		if name == prev {
			return name
		}
	}
}

// splitGeneric splits "Head<inner>" when the outer brackets match.
func splitGeneric(name string) (string, string, bool) {
	open := strings.Index(name, "<")
	if open <= 0 || !strings.HasSuffix(name, ">") || matchingAngle(name, open) != len(name)-1 {
		return "", "", false
	}
	return name[:open], strings.TrimSpace(name[open+1 : len(name)-1]), true
}

func firstGenericArg(inner string) string {
	parts := splitTopLevel(inner)
	if len(parts) == 0 {
		return inner
	}
	return parts[0]
}

// matchingAngle returns the index of the '>' closing the '<' at open.
func matchingAngle(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas not nested in brackets.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// IsBalance reports whether a declared type name denotes a token amount,
// either bare or compact-encoded.
func IsBalance(typeName string) bool {
	name := normalizeTypeName(typeName)
	if head, inner, ok := splitGeneric(name); ok {
		if head == "Compact" {
			return IsBalance(inner)
		}
		name = head
	}
	switch name {
	case "Balance", "BalanceOf", "ExtendedBalance", "DepositBalance", "PalletBalanceOf":
		return true
	}
	return false
}
