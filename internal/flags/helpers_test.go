package flags

import (
	"testing"

	"github.com/urfave/cli/v2"
)

func TestMerge(t *testing.T) {
	a := &cli.StringFlag{Name: "a"}
	b := &cli.BoolFlag{Name: "b"}
	c := &cli.IntFlag{Name: "c"}

	merged := Merge([]cli.Flag{a}, nil, []cli.Flag{b, c})
	if len(merged) != 3 {
		t.Fatalf("merged length: have %d want 3", len(merged))
	}
	for i, want := range []string{"a", "b", "c"} {
		if name := merged[i].Names()[0]; name != want {
			t.Errorf("flag %d: have %s want %s", i, name, want)
		}
	}
}

func TestNewAppVersion(t *testing.T) {
	app := NewApp("0123456789abcdef", "20260101", "test")
	if app.Version != "0.3.1-01234567-20260101" {
		t.Fatalf("version: have %s", app.Version)
	}
	if app.Usage != "test" {
		t.Fatalf("usage: have %s", app.Usage)
	}
}
