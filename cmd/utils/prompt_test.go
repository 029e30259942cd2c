package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetPassPhraseWithList(t *testing.T) {
	passwords := []string{"zero", "one", "two"}
	tests := []struct {
		index int
		want  string
	}{
		{0, "zero"},
		{1, "one"},
		{5, "two"},
	}
	for _, tt := range tests {
		if got := GetPassPhraseWithList("text", false, tt.index, passwords); got != tt.want {
			t.Errorf("index %d: have %q want %q", tt.index, got, tt.want)
		}
	}
}

func TestReadSecretFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		content string
		want    string
	}{
		{"bottom drive obey lake\n", "bottom drive obey lake"},
		{"  padded \r\nsecond line\n", "padded"},
		{"", ""},
	}
	for i, tt := range tests {
		path := filepath.Join(dir, "secret")
		if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
			t.Fatal(err)
		}
		got, err := ReadSecretFile(path)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got != tt.want {
			t.Errorf("case %d: have %q want %q", i, got, tt.want)
		}
	}
	if _, err := ReadSecretFile(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if got, err := GetRecoveryPhrase(filepath.Join(dir, "secret")); err != nil || got != "" {
		t.Fatalf("phrase from file: have %q %v", got, err)
	}
}
