package scale

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/tos-network/gsigner/errs"
)

func TestCompactVectors(t *testing.T) {
	tests := []struct {
		value uint64
		enc   string
	}{
		{0, "00"},
		{1, "04"},
		{46, "b8"},
		{63, "fc"},
		{64, "0101"},
		{16383, "fdff"},
		{16384, "02000100"},
		{1073741823, "feffffff"},
		{1073741824, "0300000040"},
		{100000000000000, "0b00407a10f35a"},
	}
	for _, tt := range tests {
		var e Encoder
		e.PutCompact(tt.value)
		if have := hex.EncodeToString(e.Bytes()); have != tt.enc {
			t.Fatalf("encode %d: have %s want %s", tt.value, have, tt.enc)
		}
		raw, _ := hex.DecodeString(tt.enc)
		d := NewDecoder(raw)
		v, err := d.ReadCompactUint64()
		if err != nil {
			t.Fatalf("decode %s: %v", tt.enc, err)
		}
		if v != tt.value {
			t.Fatalf("decode %s: have %d want %d", tt.enc, v, tt.value)
		}
		if err := d.Finish(); err != nil {
			t.Fatalf("decode %s: %v", tt.enc, err)
		}
	}
}

func TestCompactRejectsNonCanonical(t *testing.T) {
	for _, enc := range []string{
		"0100",           // 0 in two-byte mode
		"fd00",           // 63 in two-byte mode
		"02000000",       // 0 in four-byte mode
		"0300000000",     // 0 in big mode
		"07000000400000", // big mode with a zero top byte
	} {
		raw, _ := hex.DecodeString(enc)
		if _, err := NewDecoder(raw).ReadCompact(); !errors.Is(err, ErrNonCanonical) {
			t.Fatalf("%s: have %v want %v", enc, err, ErrNonCanonical)
		}
	}
}

func TestCompactBig(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	var e Encoder
	e.PutCompactBig(max)
	if len(e.Bytes()) != 33 || e.Bytes()[0] != 0x73 {
		t.Fatalf("unexpected u256 max encoding %x", e.Bytes())
	}
	v, err := NewDecoder(e.Bytes()).ReadCompact()
	if err != nil {
		t.Fatal(err)
	}
	if !v.Eq(max) {
		t.Fatalf("have %s want %s", v, max)
	}
	if _, err := NewDecoder(e.Bytes()).ReadCompactUint64(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("u64 read of u256: have %v", err)
	}
	// 33 byte payloads cannot be represented
	if _, err := NewDecoder([]byte{0x77}).ReadCompact(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("oversized big mode: have %v", err)
	}
}

func TestTrailingAndShortInput(t *testing.T) {
	d := NewDecoder([]byte{1, 0, 0, 0, 9})
	if v, err := d.ReadU32(); err != nil || v != 1 {
		t.Fatalf("have %d %v", v, err)
	}
	if err := d.Finish(); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("have %v want trailing bytes", err)
	}
	if _, err := NewDecoder([]byte{1, 0}).ReadU32(); !errors.Is(err, ErrShortInput) {
		t.Fatalf("have %v want short input", err)
	}
	if errs.Classify(ErrShortInput) != errs.NotDecodeable {
		t.Fatal("codec errors must be classified as not decodeable")
	}
}

func TestDeclaredLengthBounded(t *testing.T) {
	// A length of 2^30 backed by three bytes must fail before allocating.
	var e Encoder
	e.PutCompact(1 << 30)
	e.PutFixed([]byte{1, 2, 3})
	if _, err := NewDecoder(e.Bytes()).ReadBytes(); !errors.Is(err, ErrShortInput) {
		t.Fatalf("have %v want short input", err)
	}
}

func TestTagsAndStrings(t *testing.T) {
	if _, err := NewDecoder([]byte{2}).ReadBool(); !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("bool: have %v", err)
	}
	if _, err := NewDecoder([]byte{2}).ReadOption(); !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("option: have %v", err)
	}
	if _, err := NewDecoder([]byte{3}).ReadEnum(3); !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("enum: have %v", err)
	}
	if tag, err := NewDecoder([]byte{2}).ReadEnum(3); err != nil || tag != 2 {
		t.Fatalf("enum: have %d %v", tag, err)
	}
	if _, err := NewDecoder([]byte{4, 0xff}).ReadString(); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("utf8: have %v", err)
	}

	var e Encoder
	e.PutStrings([]string{"westend", ""})
	e.PutU16(42)
	e.PutBool(true)
	d := NewDecoder(e.Bytes())
	ss, err := d.ReadStrings()
	if err != nil || len(ss) != 2 || ss[0] != "westend" || ss[1] != "" {
		t.Fatalf("have %q %v", ss, err)
	}
	if v, _ := d.ReadU16(); v != 42 {
		t.Fatalf("have %d", v)
	}
	if v, _ := d.ReadBool(); !v {
		t.Fatal("bool lost")
	}
	if err := d.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestUintLittleEndian(t *testing.T) {
	v := uint256.NewInt(100000000000000)
	var e Encoder
	e.PutUint(v, 16)
	want, _ := hex.DecodeString("00407a10f35a00000000000000000000")
	if !bytes.Equal(e.Bytes(), want) {
		t.Fatalf("have %x want %x", e.Bytes(), want)
	}
	got, err := NewDecoder(e.Bytes()).ReadUint(16)
	if err != nil || !got.Eq(v) {
		t.Fatalf("have %v %v", got, err)
	}
}
