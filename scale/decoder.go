package scale

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

// Decoder reads values from a byte slice front to back.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder returns a decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.data) - d.pos }

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.pos }

// Finish fails if any input is left unread.
func (d *Decoder) Finish() error {
	if n := d.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d bytes left", ErrTrailingBytes, n)
	}
	return nil
}

// ReadFixed consumes exactly n bytes. The returned slice aliases the input.
func (d *Decoder) ReadFixed(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, ErrShortInput
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) ReadByte() (byte, error) {
	b, err := d.ReadFixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: bool tag %d", ErrSchemaViolation, b)
}

func (d *Decoder) ReadU16() (uint16, error) {
	b, err := d.ReadFixed(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) ReadU32() (uint32, error) {
	b, err := d.ReadFixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) ReadU64() (uint64, error) {
	b, err := d.ReadFixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadUint reads a little-endian unsigned integer of size bytes (at most 32).
func (d *Decoder) ReadUint(size int) (*uint256.Int, error) {
	if size > 32 {
		return nil, ErrOverflow
	}
	b, err := d.ReadFixed(size)
	if err != nil {
		return nil, err
	}
	return leToInt(b), nil
}

// ReadCompact reads a compact integer of up to 256 bits, rejecting any
// encoding that is longer than necessary.
func (d *Decoder) ReadCompact() (*uint256.Int, error) {
	first, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch first & 0x03 {
	case 0x00:
		return uint256.NewInt(uint64(first >> 2)), nil
	case 0x01:
		next, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		v := uint64(binary.LittleEndian.Uint16([]byte{first, next}) >> 2)
		if v < 1<<6 {
			return nil, ErrNonCanonical
		}
		return uint256.NewInt(v), nil
	case 0x02:
		rest, err := d.ReadFixed(3)
		if err != nil {
			return nil, err
		}
		v := uint64(binary.LittleEndian.Uint32([]byte{first, rest[0], rest[1], rest[2]}) >> 2)
		if v < 1<<14 {
			return nil, ErrNonCanonical
		}
		return uint256.NewInt(v), nil
	default:
		n := int(first>>2) + 4
		if n > 32 {
			return nil, ErrOverflow
		}
		b, err := d.ReadFixed(n)
		if err != nil {
			return nil, err
		}
		if b[n-1] == 0 {
			return nil, ErrNonCanonical
		}
		v := leToInt(b)
		if n == 4 && v.Uint64() < 1<<30 {
			return nil, ErrNonCanonical
		}
		return v, nil
	}
}

// ReadCompactUint64 reads a compact integer that must fit in 64 bits.
func (d *Decoder) ReadCompactUint64() (uint64, error) {
	v, err := d.ReadCompact()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, ErrOverflow
	}
	return v.Uint64(), nil
}

// ReadCompactLen reads a collection length. A length can never exceed the
// number of unread bytes times perItem, so absurd lengths fail before any
// allocation happens. perItem is the smallest possible encoded element size;
// zero-sized elements pass 0 and are capped by maxZeroSized.
func (d *Decoder) ReadCompactLen(perItem int) (int, error) {
	v, err := d.ReadCompactUint64()
	if err != nil {
		return 0, err
	}
	if perItem <= 0 {
		if v > maxZeroSized {
			return 0, fmt.Errorf("%w: %d zero-sized elements", ErrOverflow, v)
		}
		return int(v), nil
	}
	if v > uint64(d.Remaining()/perItem) {
		return 0, fmt.Errorf("%w: declared length %d exceeds input", ErrShortInput, v)
	}
	return int(v), nil
}

const maxZeroSized = 1 << 10

// ReadBytes reads a compact-length-prefixed byte string.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadCompactLen(1)
	if err != nil {
		return nil, err
	}
	return d.ReadFixed(n)
}

// ReadString reads a length-prefixed UTF-8 string.
func (d *Decoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadOption reads an option tag, reporting whether a value follows.
func (d *Decoder) ReadOption() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: option tag %d", ErrSchemaViolation, b)
}

// ReadEnum reads a one-byte enum tag, which must be below variants.
func (d *Decoder) ReadEnum(variants int) (int, error) {
	b, err := d.ReadByte()
	if err != nil {
		return 0, err
	}
	if int(b) >= variants {
		return 0, fmt.Errorf("%w: enum tag %d of %d variants", ErrSchemaViolation, b, variants)
	}
	return int(b), nil
}

// ReadStrings reads a vector of strings.
func (d *Decoder) ReadStrings() ([]string, error) {
	n, err := d.ReadCompactLen(1)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func leToInt(b []byte) *uint256.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	return new(uint256.Int).SetBytes(be)
}
