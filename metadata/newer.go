package metadata

import (
	"strings"

	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/scale"
)

// TypeDef is a type definition of the self-describing family, as it
// appears on the wire.
type TypeDef struct {
	Kind      TypeKind // KindComposite through KindBitSequence
	Fields    []Field
	Variants  []Variant
	Elem      uint32 // sequence, array, compact element
	Len       uint32 // array length
	Tuple     []uint32
	Primitive Primitive
	BitStore  uint32
	BitOrder  uint32
}

// PortableType is one entry of the type graph.
type PortableType struct {
	ID   uint32
	Path []string
	Def  TypeDef
	Docs []string
}

// Pallet is a pallet of the self-describing family. Calls, when set, is
// the id of the variant type listing the pallet's calls.
type Pallet struct {
	Name  string
	Index uint8
	Calls *uint32
}

// NewerSchema is a family 14 schema carrying its own type graph.
type NewerSchema struct {
	name    string
	version uint32
	Types   map[uint32]*PortableType
	Pallets []Pallet
}

func (s *NewerSchema) Name() string    { return s.name }
func (s *NewerSchema) Version() uint32 { return s.version }
func (s *NewerSchema) Family() byte    { return 14 }

// Resolver ignores the catalog: every type is in the schema itself.
func (s *NewerSchema) Resolver(Catalog) (Resolver, error) {
	return s, nil
}

// Call finds the call variant with index call in the pallet with index pallet.
func (s *NewerSchema) Call(pallet, call uint8) (*Call, error) {
	withCalls := 0
	for _, p := range s.Pallets {
		if p.Calls == nil {
			continue
		}
		withCalls++
		if p.Index != pallet {
			continue
		}
		t, ok := s.Types[*p.Calls]
		if !ok || t.Def.Kind != KindVariant {
			return nil, unknownType(p.Name + " calls")
		}
		for _, v := range t.Def.Variants {
			if v.Index == call {
				return &Call{Pallet: p.Name, Name: v.Name, Docs: v.Docs, Args: v.Fields}, nil
			}
		}
		return nil, &IndexError{What: "call", Index: call, Size: len(t.Def.Variants), Where: p.Name}
	}
	return nil, &IndexError{What: "pallet", Index: pallet, Size: withCalls}
}

// Resolve looks up a type by id and normalizes account ids, options and
// the runtime call enum.
func (s *NewerSchema) Resolve(ref TypeRef) (*Type, error) {
	pt, ok := s.Types[ref.ID]
	if !ok {
		return nil, wrapf(ErrUnknownType, "id %d", ref.ID)
	}
	def := pt.Def
	t := &Type{
		Kind:      def.Kind,
		Path:      pt.Path,
		Primitive: def.Primitive,
		Fields:    def.Fields,
		Variants:  def.Variants,
		Elem:      TypeRef{ID: def.Elem},
		Len:       def.Len,
	}
	for _, id := range def.Tuple {
		t.Tuple = append(t.Tuple, TypeRef{ID: id})
	}
	last := ""
	if len(pt.Path) > 0 {
		last = pt.Path[len(pt.Path)-1]
	}
	switch {
	case last == "AccountId32" || last == "AccountId":
		return &Type{Kind: KindAccountID, Path: pt.Path}, nil
	case last == "Option" && def.Kind == KindVariant && isOptionShape(def.Variants):
		return &Type{Kind: KindOption, Path: pt.Path, Elem: def.Variants[1].Fields[0].Type}, nil
	case def.Kind == KindVariant && s.isCallEnum(def.Variants):
		return &Type{Kind: KindCall, Path: pt.Path}, nil
	}
	return t, nil
}

// isCallEnum reports whether vs is the outer call enum: every variant
// wraps the call type of the pallet with the same name and index.
func (s *NewerSchema) isCallEnum(vs []Variant) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if len(v.Fields) != 1 || v.Fields[0].Name != "" {
			return false
		}
		found := false
		for _, p := range s.Pallets {
			if p.Index == v.Index && p.Name == v.Name && p.Calls != nil && *p.Calls == v.Fields[0].Type.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func isOptionShape(vs []Variant) bool {
	return len(vs) == 2 && vs[0].Name == "None" && len(vs[0].Fields) == 0 &&
		vs[1].Name == "Some" && len(vs[1].Fields) == 1
}

// EncodeNewer builds a family 14 schema blob.
func EncodeNewer(name string, version uint32, types []PortableType, pallets []Pallet) []byte {
	var e scale.Encoder
	e.PutFixed([]byte(params.SchemaMagic))
	e.PutByte(14)
	e.PutString(name)
	e.PutU32(version)

	e.PutCompact(uint64(len(types)))
	for _, t := range types {
		e.PutCompact(uint64(t.ID))
		e.PutStrings(t.Path)
		encodeTypeDef(&e, &t.Def)
		e.PutStrings(t.Docs)
	}
	e.PutCompact(uint64(len(pallets)))
	for _, p := range pallets {
		e.PutString(p.Name)
		e.PutByte(p.Index)
		e.PutOption(p.Calls != nil)
		if p.Calls != nil {
			e.PutCompact(uint64(*p.Calls))
		}
	}
	return e.Bytes()
}

func encodeTypeDef(e *scale.Encoder, def *TypeDef) {
	e.PutByte(byte(def.Kind))
	switch def.Kind {
	case KindComposite:
		encodeFields(e, def.Fields)
	case KindVariant:
		e.PutCompact(uint64(len(def.Variants)))
		for _, v := range def.Variants {
			e.PutString(v.Name)
			encodeFields(e, v.Fields)
			e.PutByte(v.Index)
			e.PutStrings(splitDocs(v.Docs))
		}
	case KindSequence, KindCompact:
		e.PutCompact(uint64(def.Elem))
	case KindArray:
		e.PutU32(def.Len)
		e.PutCompact(uint64(def.Elem))
	case KindTuple:
		e.PutCompact(uint64(len(def.Tuple)))
		for _, id := range def.Tuple {
			e.PutCompact(uint64(id))
		}
	case KindPrimitive:
		e.PutByte(byte(def.Primitive))
	case KindBitSequence:
		e.PutCompact(uint64(def.BitStore))
		e.PutCompact(uint64(def.BitOrder))
	}
}

func encodeFields(e *scale.Encoder, fields []Field) {
	e.PutCompact(uint64(len(fields)))
	for _, f := range fields {
		e.PutOption(f.Name != "")
		if f.Name != "" {
			e.PutString(f.Name)
		}
		e.PutCompact(uint64(f.Type.ID))
		e.PutOption(f.TypeName != "")
		if f.TypeName != "" {
			e.PutString(f.TypeName)
		}
		e.PutStrings(splitDocs(f.Docs))
	}
}

func splitDocs(docs string) []string {
	if docs == "" {
		return nil
	}
	return strings.Split(docs, "\n")
}

func readNewer(d *scale.Decoder, s *NewerSchema) error {
	n, err := d.ReadCompactLen(4)
	if err != nil {
		return err
	}
	s.Types = make(map[uint32]*PortableType, n)
	for i := 0; i < n; i++ {
		id, err := d.ReadCompactUint64()
		if err != nil {
			return err
		}
		if id > 1<<32-1 {
			return scale.ErrOverflow
		}
		pt := &PortableType{ID: uint32(id)}
		if pt.Path, err = d.ReadStrings(); err != nil {
			return err
		}
		if err := readTypeDef(d, &pt.Def); err != nil {
			return err
		}
		if pt.Docs, err = d.ReadStrings(); err != nil {
			return err
		}
		if _, dup := s.Types[pt.ID]; dup {
			return wrapf(scale.ErrSchemaViolation, "duplicate type id %d", pt.ID)
		}
		s.Types[pt.ID] = pt
	}
	np, err := d.ReadCompactLen(3)
	if err != nil {
		return err
	}
	for i := 0; i < np; i++ {
		var p Pallet
		if p.Name, err = d.ReadString(); err != nil {
			return err
		}
		if p.Index, err = d.ReadByte(); err != nil {
			return err
		}
		some, err := d.ReadOption()
		if err != nil {
			return err
		}
		if some {
			id, err := readTypeID(d)
			if err != nil {
				return err
			}
			p.Calls = &id
		}
		s.Pallets = append(s.Pallets, p)
	}
	return nil
}

func readTypeID(d *scale.Decoder) (uint32, error) {
	v, err := d.ReadCompactUint64()
	if err != nil {
		return 0, err
	}
	if v > 1<<32-1 {
		return 0, scale.ErrOverflow
	}
	return uint32(v), nil
}

func readTypeDef(d *scale.Decoder, def *TypeDef) error {
	kind, err := d.ReadEnum(int(KindBitSequence) + 1)
	if err != nil {
		return err
	}
	def.Kind = TypeKind(kind)
	switch def.Kind {
	case KindComposite:
		def.Fields, err = readFields(d)
	case KindVariant:
		var n int
		if n, err = d.ReadCompactLen(3); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			var v Variant
			if v.Name, err = d.ReadString(); err != nil {
				return err
			}
			if v.Fields, err = readFields(d); err != nil {
				return err
			}
			if v.Index, err = d.ReadByte(); err != nil {
				return err
			}
			docs, err := d.ReadStrings()
			if err != nil {
				return err
			}
			v.Docs = strings.Join(docs, "\n")
			def.Variants = append(def.Variants, v)
		}
	case KindSequence, KindCompact:
		def.Elem, err = readTypeID(d)
	case KindArray:
		if def.Len, err = d.ReadU32(); err != nil {
			return err
		}
		def.Elem, err = readTypeID(d)
	case KindTuple:
		var n int
		if n, err = d.ReadCompactLen(1); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			id, err := readTypeID(d)
			if err != nil {
				return err
			}
			def.Tuple = append(def.Tuple, id)
		}
	case KindPrimitive:
		var p int
		p, err = d.ReadEnum(primitiveCount)
		def.Primitive = Primitive(p)
	case KindBitSequence:
		if def.BitStore, err = readTypeID(d); err != nil {
			return err
		}
		def.BitOrder, err = readTypeID(d)
	}
	return err
}

func readFields(d *scale.Decoder) ([]Field, error) {
	n, err := d.ReadCompactLen(3)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		var f Field
		named, err := d.ReadOption()
		if err != nil {
			return nil, err
		}
		if named {
			if f.Name, err = d.ReadString(); err != nil {
				return nil, err
			}
		}
		if f.Type.ID, err = readTypeID(d); err != nil {
			return nil, err
		}
		hasTypeName, err := d.ReadOption()
		if err != nil {
			return nil, err
		}
		if hasTypeName {
			if f.TypeName, err = d.ReadString(); err != nil {
				return nil, err
			}
		}
		docs, err := d.ReadStrings()
		if err != nil {
			return nil, err
		}
		f.Docs = strings.Join(docs, "\n")
		fields = append(fields, f)
	}
	return fields, nil
}
