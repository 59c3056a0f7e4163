package meshmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/minepkg/propack/pkg/rpath"
)

var (
	stick   = rpath.MustParse("minecraft:stick")
	diamond = rpath.MustParse("minecraft:diamond")
)

func mesh(n int) rpath.Path {
	return rpath.MustParse(fmt.Sprintf("mypack:item/mesh_%d", n))
}

func TestRegister(t *testing.T) {
	b := NewBuilder(DefaultStart)
	if id := b.Register(stick, mesh(1)); id != 1 {
		t.Errorf("first id = %d", id)
	}
	if id := b.Register(stick, mesh(2)); id != 2 {
		t.Errorf("second id = %d", id)
	}
	if id := b.Register(stick, mesh(1)); id != 1 {
		t.Errorf("registration is not idempotent, got %d", id)
	}
	if id := b.Register(diamond, mesh(2)); id != 1 {
		t.Errorf("items must have separate id spaces, got %d", id)
	}
}

func TestRegisterCustomStart(t *testing.T) {
	b := NewBuilder(1000)
	if id := b.Register(stick, mesh(1)); id != 1000 {
		t.Errorf("got %d", id)
	}
	if NewBuilder(0).Register(stick, mesh(1)) != DefaultStart {
		t.Error("start below 1 should use the default")
	}
}

func TestAssign(t *testing.T) {
	b := NewBuilder(10)
	if err := b.Assign(stick, mesh(1), 11); err != nil {
		t.Fatal(err)
	}
	if err := b.Assign(stick, mesh(1), 11); err != nil {
		t.Errorf("assigning the same id again should be fine: %v", err)
	}

	tests := []struct {
		name string
		mesh rpath.Path
		id   int
	}{
		{"below start", mesh(2), 9},
		{"taken id", mesh(2), 11},
		{"second id for a mesh", mesh(1), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var idErr *InvalidMeshIdError
			if err := b.Assign(stick, tt.mesh, tt.id); !errors.As(err, &idErr) {
				t.Errorf("expected InvalidMeshIdError, got %v", err)
			}
		})
	}

	// registration skips explicitly assigned ids
	if id := b.Register(stick, mesh(3)); id != 10 {
		t.Errorf("got %d, want 10", id)
	}
	if id := b.Register(stick, mesh(4)); id != 12 {
		t.Errorf("got %d, want 12", id)
	}
}

func TestBuildIsSnapshot(t *testing.T) {
	b := NewBuilder(DefaultStart)
	b.Register(stick, mesh(1))
	m := b.Build()
	b.Register(stick, mesh(2))

	if _, ok := m.Lookup(stick, mesh(2)); ok {
		t.Error("snapshot changed after build")
	}
	if id, ok := m.Lookup(stick, mesh(1)); !ok || id != 1 {
		t.Errorf("Lookup = %d, %v", id, ok)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestConcurrentRegister(t *testing.T) {
	b := NewBuilder(DefaultStart)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				b.Register(stick, mesh(i))
			}
		}()
	}
	wg.Wait()

	m := b.Build()
	seen := map[int]bool{}
	for _, e := range m.Entries(stick) {
		if seen[e.ID] {
			t.Fatalf("id %d handed out twice", e.ID)
		}
		seen[e.ID] = true
	}
	if len(seen) != 100 {
		t.Errorf("got %d ids, want 100", len(seen))
	}
	for id := 1; id <= 100; id++ {
		if !seen[id] {
			t.Errorf("id %d missing, ids must be dense", id)
		}
	}
}

func TestMappingJSON(t *testing.T) {
	b := NewBuilder(DefaultStart)
	b.Register(stick, mesh(1))
	b.Register(stick, mesh(2))
	b.Register(diamond, mesh(1))

	raw, err := json.Marshal(b.Build())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"minecraft:diamond":{"mypack:item/mesh_1":1},"minecraft:stick":{"mypack:item/mesh_1":1,"mypack:item/mesh_2":2}}`
	if string(raw) != want {
		t.Errorf("got %s", raw)
	}

	var m Mapping
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if id, _ := m.Lookup(stick, mesh(2)); id != 2 {
		t.Errorf("lost entry after decode")
	}
	if items := m.Items(); len(items) != 2 || items[0] != diamond {
		t.Errorf("Items = %v", items)
	}

	if err := json.Unmarshal([]byte(`{"stick":{"a:b":1,"a:c":1}}`), &m); err == nil {
		t.Error("expected an error for duplicate ids")
	}
	if err := json.Unmarshal([]byte(`{"stick":{"a:b":0}}`), &m); err == nil {
		t.Error("expected an error for id 0")
	}
}
