/*
Package meshmap assigns custom model data ids to meshes.

Every target item has its own id space. A Builder hands out ids in
registration order starting at a configurable minimum and is safe for
concurrent use. Build returns an immutable Mapping that can be persisted
with the pack and loaded again at runtime.
*/
package meshmap

import (
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/minepkg/propack/pkg/rpath"
)

// DefaultStart is the first id handed out per item
const DefaultStart = 1

// InvalidMeshIdError is returned for explicit ids that are out of range or already taken
type InvalidMeshIdError struct {
	Item   rpath.Path
	Mesh   rpath.Path
	ID     int
	Reason string
}

func (e *InvalidMeshIdError) Error() string {
	return fmt.Sprintf("invalid id %d for mesh %s on %s: %s", e.ID, e.Mesh, e.Item, e.Reason)
}

// Entry is one mesh of an item
type Entry struct {
	ID   int
	Mesh rpath.Path
}

// Mapping is an immutable item -> mesh -> id table
type Mapping struct {
	items map[rpath.Path]map[rpath.Path]int
}

// Empty returns a mapping without entries
func Empty() *Mapping {
	return &Mapping{items: map[rpath.Path]map[rpath.Path]int{}}
}

// Lookup returns the id of mesh on item
func (m *Mapping) Lookup(item, mesh rpath.Path) (int, bool) {
	id, ok := m.items[item][mesh]
	return id, ok
}

// Items returns all items that have at least one mesh, sorted
func (m *Mapping) Items() []rpath.Path {
	items := maps.Keys(m.items)
	slices.SortFunc(items, rpath.Compare)
	return items
}

// Entries returns the meshes of item ordered by id
func (m *Mapping) Entries(item rpath.Path) []Entry {
	meshes := m.items[item]
	out := make([]Entry, 0, len(meshes))
	for mesh, id := range meshes {
		out = append(out, Entry{ID: id, Mesh: mesh})
	}
	slices.SortFunc(out, func(a, b Entry) int { return a.ID - b.ID })
	return out
}

// Len returns the total number of entries over all items
func (m *Mapping) Len() int {
	n := 0
	for _, meshes := range m.items {
		n += len(meshes)
	}
	return n
}

// MarshalJSON writes {"item": {"mesh": id}}
func (m *Mapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.items)
}

// UnmarshalJSON reads the form written by MarshalJSON and rejects duplicate or non positive ids
func (m *Mapping) UnmarshalJSON(data []byte) error {
	raw := map[rpath.Path]map[rpath.Path]int{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b := NewBuilder(DefaultStart)
	for item, meshes := range raw {
		for mesh, id := range meshes {
			if err := b.Assign(item, mesh, id); err != nil {
				return err
			}
		}
	}
	*m = *b.Build()
	return nil
}

type itemIDs struct {
	next   int
	byMesh map[rpath.Path]int
	byID   map[int]rpath.Path
}

// Builder collects meshes per item and assigns ids
type Builder struct {
	mu    sync.Mutex
	start int
	items map[rpath.Path]*itemIDs
}

// NewBuilder returns a builder whose ids start at start. Values below 1 use DefaultStart
func NewBuilder(start int) *Builder {
	if start < 1 {
		start = DefaultStart
	}
	return &Builder{start: start, items: map[rpath.Path]*itemIDs{}}
}

func (b *Builder) item(item rpath.Path) *itemIDs {
	ids, ok := b.items[item]
	if !ok {
		ids = &itemIDs{next: b.start, byMesh: map[rpath.Path]int{}, byID: map[int]rpath.Path{}}
		b.items[item] = ids
	}
	return ids
}

// Register returns the id of mesh on item, assigning the next free one on first use
func (b *Builder) Register(item, mesh rpath.Path) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := b.item(item)
	if id, ok := ids.byMesh[mesh]; ok {
		return id
	}
	for {
		if _, taken := ids.byID[ids.next]; !taken {
			break
		}
		ids.next++
	}
	id := ids.next
	ids.next++
	ids.byMesh[mesh] = id
	ids.byID[id] = mesh
	return id
}

// Assign registers mesh on item with an explicit id
func (b *Builder) Assign(item, mesh rpath.Path, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id < b.start {
		return &InvalidMeshIdError{Item: item, Mesh: mesh, ID: id, Reason: fmt.Sprintf("ids start at %d", b.start)}
	}
	ids := b.item(item)
	if existing, ok := ids.byMesh[mesh]; ok {
		if existing == id {
			return nil
		}
		return &InvalidMeshIdError{Item: item, Mesh: mesh, ID: id, Reason: fmt.Sprintf("mesh already has id %d", existing)}
	}
	if other, taken := ids.byID[id]; taken {
		return &InvalidMeshIdError{Item: item, Mesh: mesh, ID: id, Reason: fmt.Sprintf("id is used by %s", other)}
	}
	ids.byMesh[mesh] = id
	ids.byID[id] = mesh
	return nil
}

// Lookup returns the id of mesh on item if it was registered
func (b *Builder) Lookup(item, mesh rpath.Path) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids, ok := b.items[item]
	if !ok {
		return 0, false
	}
	id, ok := ids.byMesh[mesh]
	return id, ok
}

// Build returns a snapshot. Later registrations do not change it
func (b *Builder) Build() *Mapping {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := Empty()
	for item, ids := range b.items {
		if len(ids.byMesh) == 0 {
			continue
		}
		m.items[item] = maps.Clone(ids.byMesh)
	}
	return m
}
