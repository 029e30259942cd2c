package common

import "testing"

func TestHexToHash(t *testing.T) {
	const genesis = "e143f23803ac50e8f6f8e62695d1ce9e4e1d68aa36c1cd2cfd15340213f3423e"
	for _, in := range []string{genesis, "0x" + genesis, " " + genesis + "\n"} {
		h, err := HexToHash(in)
		if err != nil {
			t.Fatalf("HexToHash(%q): %v", in, err)
		}
		if h.Hex() != genesis {
			t.Fatalf("round trip mismatch: have %s want %s", h.Hex(), genesis)
		}
	}
	if _, err := HexToHash("abcd"); err != ErrHashLength {
		t.Fatalf("short hash: have %v want %v", err, ErrHashLength)
	}
	if _, err := HexToHash("zz"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
}

func TestBytesToHashCrops(t *testing.T) {
	b := make([]byte, 40)
	b[39] = 7
	h := BytesToHash(b)
	if h[31] != 7 {
		t.Fatalf("unexpected hash %x", h)
	}
}
