package itemmodel

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/rpath"
)

// Selection describes what should be shown for an item. Elements is used by
// Combined models, Slots by Slotted models
type Selection struct {
	Elements []string
	Slots    combination.Selection
}

// GeneratedPath returns the path of the mesh generated for a combination key
func GeneratedPath(model rpath.Path, key string) rpath.Path {
	return model.Append("-" + combination.Hash(key))
}

// MeshFor returns the mesh for the given selection
func MeshFor(v Variant, sel Selection) (rpath.Path, error) {
	switch m := v.(type) {
	case *Default:
		return m.Mesh(), nil
	case *Combined:
		return m.MeshFor(sel.Elements...)
	case *Slotted:
		return m.MeshFor(sel.Slots)
	default:
		return rpath.Path{}, fmt.Errorf("unsupported model %T", v)
	}
}

// MeshFor returns the generated mesh for the given elements.
// Order and duplicates do not matter; no elements selects the base mesh
func (c *Combined) MeshFor(elements ...string) (rpath.Path, error) {
	for _, name := range elements {
		if !slices.Contains(c.elements, name) {
			return rpath.Path{}, &UnknownElementError{Model: c.path, Element: name}
		}
	}
	unique := slices.Clone(elements)
	slices.Sort(unique)
	unique = slices.Compact(unique)
	if len(unique) == 0 {
		return c.mesh, nil
	}
	return GeneratedPath(c.path, combination.CombinedKey(unique)), nil
}

// MeshFor returns the generated mesh for the given slot selection.
// Empty slots may be omitted; no filled slot selects the base mesh
func (s *Slotted) MeshFor(sel combination.Selection) (rpath.Path, error) {
	for name, entry := range sel {
		slot, ok := s.slot(name)
		if !ok {
			return rpath.Path{}, &UnknownSlotError{Model: s.path, Slot: name}
		}
		if entry != "" && !slices.Contains(slot.Entries, entry) {
			return rpath.Path{}, &UnknownSlotEntryError{Model: s.path, Slot: name, Entry: entry}
		}
	}
	if sel.IsEmpty() {
		return s.mesh, nil
	}
	return GeneratedPath(s.path, combination.SlotKey(s.slots, sel)), nil
}

// Part is one merged sub-mesh of a combination. Entry is empty for Combined models
type Part struct {
	Name  string
	Entry string
}

// Combination is one generated mesh of a model
type Combination struct {
	Key   string
	Path  rpath.Path
	Parts []Part
}

// IsEmpty reports whether nothing is selected. Empty combinations are served by the base mesh
func (c Combination) IsEmpty() bool { return len(c.Parts) == 0 }

// Combinations returns every non-empty element subset. Parts keep declaration order
func (c *Combined) Combinations() ([]Combination, error) {
	subsets, err := combination.PowerSet(c.elements)
	if err != nil {
		return nil, err
	}
	out := make([]Combination, 0, len(subsets))
	for _, subset := range subsets {
		key := combination.CombinedKey(subset)
		parts := make([]Part, len(subset))
		for i, name := range subset {
			parts[i] = Part{Name: name}
		}
		out = append(out, Combination{Key: key, Path: GeneratedPath(c.path, key), Parts: parts})
	}
	return out, nil
}

// Combinations returns the full slot product including the empty selection,
// which has an empty key and the base mesh as path
func (s *Slotted) Combinations() ([]Combination, error) {
	selections, err := combination.SlotProduct(s.slots)
	if err != nil {
		return nil, err
	}
	out := make([]Combination, 0, len(selections))
	for _, sel := range selections {
		if sel.IsEmpty() {
			out = append(out, Combination{Path: s.mesh})
			continue
		}
		key := combination.SlotKey(s.slots, sel)
		parts := make([]Part, 0, len(sel))
		for _, slot := range s.slots {
			if entry := sel[slot.Name]; entry != "" {
				parts = append(parts, Part{Name: slot.Name, Entry: entry})
			}
		}
		out = append(out, Combination{Key: key, Path: GeneratedPath(s.path, key), Parts: parts})
	}
	return out, nil
}
