/*
Package itemmodel defines the item model variants of a pack.

An item model ties one or more target items to a mesh. A Default model always
shows the same mesh. A Combined model has a set of optional elements that can
be shown in any combination, and a Slotted model has named slots that each hold
at most one of their entries. Every combination of a Combined or Slotted model
is backed by a generated mesh whose path is derived from the combination key.
*/
package itemmodel

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/rpath"
)

// Kind is the "Type" of an item model
type Kind string

const (
	// KindDefault is a model with a single mesh
	KindDefault Kind = "DefaultItemModel"
	// KindCombined is a model with freely combinable elements
	KindCombined Kind = "CombinedItemModel"
	// KindSlot is a model with slots
	KindSlot Kind = "SlotItemModel"
)

var (
	// ErrNoTargets is returned for models without target items
	ErrNoTargets = errors.New("target cannot be empty")
	// ErrNoElements is returned for combined models without elements
	ErrNoElements = errors.New("combined model needs at least one element")
)

// UnknownVariantTypeError is returned for an unsupported "Type"
type UnknownVariantTypeError struct {
	Type string
}

func (e *UnknownVariantTypeError) Error() string {
	return fmt.Sprintf("unknown model type: %q", e.Type)
}

// UnknownElementError is returned when a selection names an element the model does not have
type UnknownElementError struct {
	Model   rpath.Path
	Element string
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("model %s has no element %q", e.Model, e.Element)
}

// UnknownSlotError is returned when a selection names a slot the model does not have
type UnknownSlotError struct {
	Model rpath.Path
	Slot  string
}

func (e *UnknownSlotError) Error() string {
	return fmt.Sprintf("model %s has no slot %q", e.Model, e.Slot)
}

// UnknownSlotEntryError is returned when a selection names an entry that is not in its slot
type UnknownSlotEntryError struct {
	Model rpath.Path
	Slot  string
	Entry string
}

func (e *UnknownSlotEntryError) Error() string {
	return fmt.Sprintf("slot %q of model %s has no entry %q", e.Slot, e.Model, e.Entry)
}

// InvalidNameError is returned for element, slot or entry names that can not be part of a key
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: must not be empty or contain %q or %q", e.Name, combination.Separator, combination.SlotSeparator)
}

// Variant is one of *Default, *Combined or *Slotted
type Variant interface {
	// Path identifies the model
	Path() rpath.Path
	// Kind returns the model type
	Kind() Kind
	// Targets returns the items this model applies to, sorted
	Targets() []rpath.Path
	// HasTarget reports whether item is one of the targets
	HasTarget(item rpath.Path) bool
	// Mesh is the mesh shown when nothing is selected
	Mesh() rpath.Path

	variant()
}

type base struct {
	path    rpath.Path
	targets []rpath.Path
	mesh    rpath.Path
}

func newBase(path rpath.Path, targets []rpath.Path, mesh rpath.Path) (base, error) {
	if path.IsZero() {
		return base{}, errors.New("model path is empty")
	}
	if mesh.IsZero() {
		return base{}, fmt.Errorf("model %s has no mesh", path)
	}
	if len(targets) == 0 {
		return base{}, fmt.Errorf("model %s: %w", path, ErrNoTargets)
	}
	sorted := slices.Clone(targets)
	slices.SortFunc(sorted, rpath.Compare)
	sorted = slices.Compact(sorted)
	return base{path: path, targets: sorted, mesh: mesh}, nil
}

func (b *base) Path() rpath.Path { return b.path }

func (b *base) Targets() []rpath.Path { return slices.Clone(b.targets) }

func (b *base) HasTarget(item rpath.Path) bool {
	_, found := slices.BinarySearchFunc(b.targets, item, rpath.Compare)
	return found
}

func (b *base) Mesh() rpath.Path { return b.mesh }

func (b *base) variant() {}

// Default shows a single mesh
type Default struct {
	base
}

// NewDefault returns a validated Default model
func NewDefault(path rpath.Path, targets []rpath.Path, mesh rpath.Path) (*Default, error) {
	b, err := newBase(path, targets, mesh)
	if err != nil {
		return nil, err
	}
	return &Default{base: b}, nil
}

// Kind implements Variant
func (*Default) Kind() Kind { return KindDefault }

// Combined shows its base mesh plus any subset of its elements
type Combined struct {
	base
	elements []string
}

// NewCombined returns a validated Combined model. Elements keep their order
func NewCombined(path rpath.Path, targets []rpath.Path, mesh rpath.Path, elements []string) (*Combined, error) {
	b, err := newBase(path, targets, mesh)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("model %s: %w", path, ErrNoElements)
	}
	if len(elements) > combination.MaxElements {
		return nil, fmt.Errorf("model %s has %d elements, at most %d are supported", path, len(elements), combination.MaxElements)
	}
	seen := make(map[string]bool, len(elements))
	for _, name := range elements {
		if !combination.ValidName(name) {
			return nil, &InvalidNameError{Name: name}
		}
		if seen[name] {
			return nil, fmt.Errorf("model %s declares element %q twice", path, name)
		}
		seen[name] = true
	}
	return &Combined{base: b, elements: slices.Clone(elements)}, nil
}

// Kind implements Variant
func (*Combined) Kind() Kind { return KindCombined }

// Elements returns the element names in declaration order
func (c *Combined) Elements() []string { return slices.Clone(c.elements) }

// Slotted shows its base mesh plus at most one entry per slot
type Slotted struct {
	base
	slots []combination.Slot
}

// NewSlotted returns a validated Slotted model. Slots and entries keep their order
func NewSlotted(path rpath.Path, targets []rpath.Path, mesh rpath.Path, slots []combination.Slot) (*Slotted, error) {
	b, err := newBase(path, targets, mesh)
	if err != nil {
		return nil, err
	}
	seenSlots := make(map[string]bool, len(slots))
	copied := make([]combination.Slot, 0, len(slots))
	for _, slot := range slots {
		if !combination.ValidName(slot.Name) {
			return nil, &InvalidNameError{Name: slot.Name}
		}
		if seenSlots[slot.Name] {
			return nil, fmt.Errorf("model %s declares slot %q twice", path, slot.Name)
		}
		seenSlots[slot.Name] = true
		if len(slot.Entries) == 0 {
			return nil, fmt.Errorf("slot %q of model %s has no entries", slot.Name, path)
		}
		seenEntries := make(map[string]bool, len(slot.Entries))
		for _, entry := range slot.Entries {
			if !combination.ValidName(entry) {
				return nil, &InvalidNameError{Name: entry}
			}
			if seenEntries[entry] {
				return nil, fmt.Errorf("slot %q of model %s declares entry %q twice", slot.Name, path, entry)
			}
			seenEntries[entry] = true
		}
		copied = append(copied, combination.Slot{Name: slot.Name, Entries: slices.Clone(slot.Entries)})
	}
	return &Slotted{base: b, slots: copied}, nil
}

// Kind implements Variant
func (*Slotted) Kind() Kind { return KindSlot }

// Slots returns a copy of the slots in declaration order
func (s *Slotted) Slots() []combination.Slot {
	out := make([]combination.Slot, len(s.slots))
	for i, slot := range s.slots {
		out[i] = combination.Slot{Name: slot.Name, Entries: slices.Clone(slot.Entries)}
	}
	return out
}

func (s *Slotted) slot(name string) (combination.Slot, bool) {
	for _, slot := range s.slots {
		if slot.Name == name {
			return slot, true
		}
	}
	return combination.Slot{}, false
}
