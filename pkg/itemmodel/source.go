package itemmodel

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/mesh"
	"github.com/minepkg/propack/pkg/rpath"
)

// NamedReference is a sub-mesh reference with the name it is declared under
type NamedReference struct {
	Name string
	Ref  mesh.Reference
}

// SourceSlot is a slot as written in an item model source file
type SourceSlot struct {
	Name    string
	Entries []NamedReference
}

// Source is an item model as authored in a "*.model.json" content file.
// Unlike the descriptor form, elements and slot entries reference the
// sub-meshes they add. Declaration order is kept
type Source struct {
	Type     Kind
	Mesh     string
	Target   []rpath.Path
	Elements []NamedReference
	Slots    []SourceSlot
}

// ParseSource reads an item model source file
func ParseSource(data []byte) (*Source, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json")
	}
	root := gjson.ParseBytes(data)

	typeField := root.Get("Type")
	if typeField.Type != gjson.String {
		return nil, fmt.Errorf("missing 'Type'")
	}
	meshField := root.Get("Mesh")
	if meshField.Type != gjson.String || meshField.String() == "" {
		return nil, fmt.Errorf("missing 'Mesh'")
	}
	targets, err := parseTargets(root.Get("Target"))
	if err != nil {
		return nil, err
	}

	src := &Source{
		Type:   Kind(typeField.String()),
		Mesh:   meshField.String(),
		Target: targets,
	}

	switch src.Type {
	case KindDefault:
	case KindCombined:
		field := root.Get("Elements")
		if !field.IsObject() {
			return nil, fmt.Errorf("'Elements' must be an object")
		}
		if src.Elements, err = parseReferences(field); err != nil {
			return nil, err
		}
	case KindSlot:
		field := root.Get("Slots")
		if !field.IsObject() {
			return nil, fmt.Errorf("'Slots' must be an object")
		}
		field.ForEach(func(key, value gjson.Result) bool {
			if !value.IsObject() {
				err = fmt.Errorf("slot %q must be an object", key.String())
				return false
			}
			var entries []NamedReference
			if entries, err = parseReferences(value); err != nil {
				err = fmt.Errorf("slot %q: %w", key.String(), err)
				return false
			}
			src.Slots = append(src.Slots, SourceSlot{Name: key.String(), Entries: entries})
			return true
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, &UnknownVariantTypeError{Type: string(src.Type)}
	}
	return src, nil
}

func parseReferences(obj gjson.Result) ([]NamedReference, error) {
	var (
		refs []NamedReference
		err  error
	)
	obj.ForEach(func(key, value gjson.Result) bool {
		var ref mesh.Reference
		if err = json.Unmarshal([]byte(value.Raw), &ref); err != nil {
			err = fmt.Errorf("%q: %w", key.String(), err)
			return false
		}
		refs = append(refs, NamedReference{Name: key.String(), Ref: ref})
		return true
	})
	return refs, err
}

// Variant turns the source into a model located at path. Mesh references are
// resolved relative to path
func (s *Source) Variant(path rpath.Path) (Variant, error) {
	meshPath, err := rpath.ResolveFrom(s.Mesh, path)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	switch s.Type {
	case KindDefault:
		return NewDefault(path, s.Target, meshPath)
	case KindCombined:
		names := make([]string, len(s.Elements))
		for i, e := range s.Elements {
			names[i] = e.Name
		}
		return NewCombined(path, s.Target, meshPath, names)
	case KindSlot:
		slots := make([]combination.Slot, len(s.Slots))
		for i, slot := range s.Slots {
			slots[i].Name = slot.Name
			for _, e := range slot.Entries {
				slots[i].Entries = append(slots[i].Entries, e.Name)
			}
		}
		return NewSlotted(path, s.Target, meshPath, slots)
	default:
		return nil, &UnknownVariantTypeError{Type: string(s.Type)}
	}
}

// Reference returns the sub-mesh reference of a part of a combination
func (s *Source) Reference(p Part) (mesh.Reference, bool) {
	switch s.Type {
	case KindCombined:
		for _, e := range s.Elements {
			if e.Name == p.Name {
				return e.Ref, true
			}
		}
	case KindSlot:
		for _, slot := range s.Slots {
			if slot.Name != p.Name {
				continue
			}
			for _, e := range slot.Entries {
				if e.Name == p.Entry {
					return e.Ref, true
				}
			}
		}
	}
	return mesh.Reference{}, false
}
