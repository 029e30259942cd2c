package scale

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// Encoder appends values in the same layout Decoder reads.
type Encoder struct {
	buf []byte
}

// Bytes returns the encoded output.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) PutByte(b byte) { e.buf = append(e.buf, b) }

func (e *Encoder) PutFixed(b []byte) { e.buf = append(e.buf, b...) }

func (e *Encoder) PutBool(v bool) {
	if v {
		e.PutByte(1)
	} else {
		e.PutByte(0)
	}
}

func (e *Encoder) PutU16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *Encoder) PutU32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *Encoder) PutU64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

// PutUint writes v as a little-endian integer of size bytes.
func (e *Encoder) PutUint(v *uint256.Int, size int) {
	be := v.Bytes32()
	for i := 0; i < size; i++ {
		e.buf = append(e.buf, be[31-i])
	}
}

// PutCompact writes v in the shortest compact form.
func (e *Encoder) PutCompact(v uint64) {
	switch {
	case v < 1<<6:
		e.PutByte(byte(v) << 2)
	case v < 1<<14:
		e.PutU16(uint16(v<<2) | 0x01)
	case v < 1<<30:
		e.PutU32(uint32(v<<2) | 0x02)
	default:
		e.PutCompactBig(uint256.NewInt(v))
	}
}

// PutCompactBig writes a compact integer of up to 256 bits.
func (e *Encoder) PutCompactBig(v *uint256.Int) {
	if v.IsUint64() && v.Uint64() < 1<<30 {
		e.PutCompact(v.Uint64())
		return
	}
	n := (v.BitLen() + 7) / 8
	if n < 4 {
		n = 4
	}
	e.PutByte(byte(n-4)<<2 | 0x03)
	e.PutUint(v, n)
}

// PutBytes writes a compact length prefix followed by b.
func (e *Encoder) PutBytes(b []byte) {
	e.PutCompact(uint64(len(b)))
	e.PutFixed(b)
}

func (e *Encoder) PutString(s string) { e.PutBytes([]byte(s)) }

// PutOption writes an option tag.
func (e *Encoder) PutOption(some bool) { e.PutBool(some) }

func (e *Encoder) PutStrings(ss []string) {
	e.PutCompact(uint64(len(ss)))
	for _, s := range ss {
		e.PutString(s)
	}
}
