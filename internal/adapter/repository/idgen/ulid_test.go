package idgen_test

import (
	"testing"

	"github.com/dashfin/finmirror/internal/adapter/repository/idgen"
)

func TestULIDGenerator_Generate(t *testing.T) {
	gen := idgen.NewULIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		if len(id) != 26 {
			t.Fatalf("expected 26-char ULID, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
