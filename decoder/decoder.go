// Package decoder renders an encoded call into display cards.
//
// The walk is driven entirely by the schema: every read is predicted by a
// resolved type, declared lengths are bounded by the bytes left, and a body
// that is not consumed exactly is rejected.
package decoder

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/holiman/uint256"
	"github.com/tos-network/gsigner/cards"
	"github.com/tos-network/gsigner/crypto"
	"github.com/tos-network/gsigner/errs"
	"github.com/tos-network/gsigner/metadata"
	"github.com/tos-network/gsigner/network"
	"github.com/tos-network/gsigner/params"
	"github.com/tos-network/gsigner/scale"
)

var (
	ErrSomeDataNotUsed = errs.New(errs.BadInput, "decoder: call decoded with bytes left over")
	ErrUnknownVariant  = errs.New(errs.NotDecodeable, "decoder: enum variant index not in type")
)

// DecodeCall walks body against resolver and returns the method cards.
// chain supplies the address prefix and the balance units.
func DecodeCall(resolver metadata.Resolver, body []byte, chain *network.ChainSpec) ([]cards.Card, error) {
	w := &walker{r: resolver, d: scale.NewDecoder(body), chain: chain}
	if err := w.call(0, 0); err != nil {
		return nil, err
	}
	if rest := w.d.Remaining(); rest > 0 {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrSomeDataNotUsed, rest, len(body))
	}
	return w.out, nil
}

type walker struct {
	r     metadata.Resolver
	d     *scale.Decoder
	chain *network.ChainSpec
	out   []cards.Card
}

func (w *walker) emit(c cards.Card, indent uint32) {
	w.out = append(w.out, c.At(indent))
}

func (w *walker) call(indent uint32, depth int) error {
	pallet, err := w.d.ReadByte()
	if err != nil {
		return err
	}
	method, err := w.d.ReadByte()
	if err != nil {
		return err
	}
	c, err := w.r.Call(pallet, method)
	if err != nil {
		return err
	}
	w.emit(cards.Call(c.Pallet, c.Name, c.Docs), indent)
	for _, arg := range c.Args {
		w.emit(cards.Varname(arg.Name), indent+1)
		if err := w.value(arg.Type, arg.TypeName, indent+2, depth+1); err != nil {
			return fmt.Errorf("%s.%s %s: %w", c.Pallet, c.Name, arg.Name, err)
		}
	}
	return nil
}

// value renders one value of type ref. typeName is the declared name the
// value was reached through, used to spot balances.
func (w *walker) value(ref metadata.TypeRef, typeName string, indent uint32, depth int) error {
	if depth > params.MaxDecodeDepth {
		return metadata.ErrTypeDepth
	}
	t, err := w.r.Resolve(ref)
	if err != nil {
		return err
	}
	balance := metadata.IsBalance(typeName)

	switch t.Kind {
	case metadata.KindPrimitive:
		return w.primitive(t.Primitive, balance, indent)

	case metadata.KindCompact:
		v, err := w.d.ReadCompact()
		if err != nil {
			return err
		}
		w.number(v, balance, indent)
		return nil

	case metadata.KindAccountID:
		pub, err := w.d.ReadFixed(32)
		if err != nil {
			return err
		}
		w.emit(cards.ID(crypto.SS58Encode(pub, w.chain.Base58Prefix)), indent)
		return nil

	case metadata.KindArray:
		if w.isByte(t.Elem) {
			raw, err := w.d.ReadFixed(int(t.Len))
			if err != nil {
				return err
			}
			w.emit(cards.Default(hex.EncodeToString(raw)), indent)
			return nil
		}
		if int64(t.Len) > int64(w.d.Remaining()) {
			return fmt.Errorf("%w: array of %d", scale.ErrShortInput, t.Len)
		}
		for i := uint32(0); i < t.Len; i++ {
			if err := w.value(t.Elem, "", indent, depth+1); err != nil {
				return err
			}
		}
		return nil

	case metadata.KindSequence:
		n, err := w.d.ReadCompactLen(1)
		if err != nil {
			return err
		}
		if w.isByte(t.Elem) {
			raw, err := w.d.ReadFixed(n)
			if err != nil {
				return err
			}
			w.emit(cards.Default(hex.EncodeToString(raw)), indent)
			return nil
		}
		for i := 0; i < n; i++ {
			if err := w.value(t.Elem, "", indent, depth+1); err != nil {
				return err
			}
		}
		return nil

	case metadata.KindTuple:
		for _, elem := range t.Tuple {
			if err := w.value(elem, "", indent, depth+1); err != nil {
				return err
			}
		}
		return nil

	case metadata.KindComposite:
		if len(t.Fields) == 1 && t.Fields[0].Name == "" {
			inner := t.Fields[0].TypeName
			if balance {
				inner = typeName
			}
			return w.value(t.Fields[0].Type, inner, indent, depth+1)
		}
		return w.fields(t.Fields, indent, depth)

	case metadata.KindVariant:
		tag, err := w.d.ReadByte()
		if err != nil {
			return err
		}
		for _, v := range t.Variants {
			if v.Index != tag {
				continue
			}
			w.emit(cards.EnumVariantName(v.Name, v.Docs), indent)
			if len(v.Fields) == 1 && v.Fields[0].Name == "" {
				return w.value(v.Fields[0].Type, v.Fields[0].TypeName, indent+1, depth+1)
			}
			return w.fields(v.Fields, indent+1, depth)
		}
		return fmt.Errorf("%w: %d in %s", ErrUnknownVariant, tag, strings.Join(t.Path, "::"))

	case metadata.KindOption:
		return w.option(t.Elem, typeName, indent, depth)

	case metadata.KindBitSequence:
		return w.bits(indent)

	case metadata.KindCall:
		return w.call(indent, depth+1)
	}
	return fmt.Errorf("%w: kind %v", metadata.ErrUnknownType, t.Kind)
}

// fields renders named fields as field_name cards and unnamed ones as
// field_number cards, each followed by its value one level deeper.
func (w *walker) fields(fields []metadata.Field, indent uint32, depth int) error {
	for i, f := range fields {
		if f.Name != "" {
			w.emit(cards.FieldName(f.Name, f.Docs), indent)
		} else {
			w.emit(cards.FieldNumber(i+1, f.Docs), indent)
		}
		if err := w.value(f.Type, f.TypeName, indent+1, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) option(elem metadata.TypeRef, typeName string, indent uint32, depth int) error {
	inner, err := w.r.Resolve(elem)
	if err != nil {
		return err
	}
	// Option<bool> packs both into one byte: 0 none, 1 true, 2 false.
	if inner.Kind == metadata.KindPrimitive && inner.Primitive == metadata.Bool {
		b, err := w.d.ReadEnum(3)
		if err != nil {
			return err
		}
		switch b {
		case 0:
			w.emit(cards.None(), indent)
		case 1:
			w.emit(cards.Default("true"), indent)
		default:
			w.emit(cards.Default("false"), indent)
		}
		return nil
	}
	some, err := w.d.ReadOption()
	if err != nil {
		return err
	}
	if !some {
		w.emit(cards.None(), indent)
		return nil
	}
	return w.value(elem, typeName, indent, depth+1)
}

// bits renders a bit sequence as groups of eight bits, least significant
// bit first.
func (w *walker) bits(indent uint32) error {
	n, err := w.d.ReadCompactUint64()
	if err != nil {
		return err
	}
	if n > uint64(w.d.Remaining())*8 {
		return fmt.Errorf("%w: bit sequence of %d", scale.ErrShortInput, n)
	}
	size := (n + 7) / 8
	raw, err := w.d.ReadFixed(int(size))
	if err != nil {
		return err
	}
	groups := make([]string, 0, len(raw))
	for i, b := range raw {
		var sb strings.Builder
		for bit := uint64(0); bit < 8 && uint64(i)*8+bit < n; bit++ {
			if b>>bit&1 == 1 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		groups = append(groups, sb.String())
	}
	w.emit(cards.BitVec("["+strings.Join(groups, ", ")+"]"), indent)
	return nil
}

func (w *walker) isByte(ref metadata.TypeRef) bool {
	t, err := w.r.Resolve(ref)
	return err == nil && t.Kind == metadata.KindPrimitive && t.Primitive == metadata.U8
}

func (w *walker) number(v *uint256.Int, balance bool, indent uint32) {
	if balance {
		amount, units := FormatBalance(v, w.chain.Decimals, w.chain.Unit)
		w.emit(cards.Balance(amount, units), indent)
		return
	}
	w.emit(cards.Default(v.ToBig().String()), indent)
}

func (w *walker) primitive(p metadata.Primitive, balance bool, indent uint32) error {
	switch p {
	case metadata.Bool:
		b, err := w.d.ReadBool()
		if err != nil {
			return err
		}
		w.emit(cards.Default(strconv.FormatBool(b)), indent)
	case metadata.Char:
		c, err := w.d.ReadU32()
		if err != nil {
			return err
		}
		if !utf8.ValidRune(rune(c)) {
			return fmt.Errorf("%w: char %#x", scale.ErrInvalidUTF8, c)
		}
		w.emit(cards.Default(string(rune(c))), indent)
	case metadata.Str:
		s, err := w.d.ReadString()
		if err != nil {
			return err
		}
		w.emit(cards.Default(s), indent)
	default:
		v, err := w.d.ReadUint(p.Size())
		if err != nil {
			return err
		}
		if p.Signed() {
			w.emit(cards.Default(signed(v, p.Size())), indent)
			return nil
		}
		w.number(v, balance, indent)
	}
	return nil
}

// signed renders a two's complement value of size bytes.
func signed(v *uint256.Int, size int) string {
	bits := uint(size * 8)
	if v.BitLen() < int(bits) {
		return v.ToBig().String()
	}
	mag := new(uint256.Int)
	if bits == 256 {
		mag.Neg(v)
	} else {
		mag.Lsh(uint256.NewInt(1), bits)
		mag.Sub(mag, v)
	}
	return "-" + mag.ToBig().String()
}
