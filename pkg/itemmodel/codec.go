package itemmodel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/rpath"
)

// Marshal writes the descriptor form of a model as stored in built packs.
// Slots are written in declaration order
func Marshal(v Variant) ([]byte, error) {
	targets := v.Targets()
	targetStrings := make([]string, len(targets))
	for i, t := range targets {
		targetStrings[i] = t.String()
	}

	out := []byte(`{}`)
	var err error
	set := func(path string, value interface{}) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, value)
		}
	}
	set("Type", string(v.Kind()))
	set("Target", targetStrings)
	set("Mesh", v.Mesh().String())

	switch m := v.(type) {
	case *Default:
	case *Combined:
		set("Elements", m.elements)
	case *Slotted:
		if err == nil {
			out, err = sjson.SetRawBytes(out, "Slots", []byte(`{}`))
		}
		for _, slot := range m.slots {
			set("Slots."+escapeKey(slot.Name), slot.Entries)
		}
	default:
		return nil, fmt.Errorf("unsupported model %T", v)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal reads the descriptor form written by Marshal
func Unmarshal(path rpath.Path, data []byte) (Variant, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("model %s: invalid json", path)
	}
	root := gjson.ParseBytes(data)

	targets, err := parseTargets(root.Get("Target"))
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	meshField := root.Get("Mesh")
	if meshField.Type != gjson.String {
		return nil, fmt.Errorf("model %s: missing 'Mesh'", path)
	}
	mesh, err := rpath.Parse(meshField.String())
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}

	switch kind := Kind(root.Get("Type").String()); kind {
	case KindDefault:
		return NewDefault(path, targets, mesh)
	case KindCombined:
		field := root.Get("Elements")
		if !field.IsArray() {
			return nil, fmt.Errorf("model %s: 'Elements' must be an array", path)
		}
		elements := []string{}
		for _, e := range field.Array() {
			elements = append(elements, e.String())
		}
		return NewCombined(path, targets, mesh, elements)
	case KindSlot:
		field := root.Get("Slots")
		if !field.IsObject() {
			return nil, fmt.Errorf("model %s: 'Slots' must be an object", path)
		}
		slots := []combination.Slot{}
		var slotErr error
		field.ForEach(func(key, value gjson.Result) bool {
			if !value.IsArray() {
				slotErr = fmt.Errorf("model %s: slot %q must be an array", path, key.String())
				return false
			}
			slot := combination.Slot{Name: key.String()}
			for _, e := range value.Array() {
				slot.Entries = append(slot.Entries, e.String())
			}
			slots = append(slots, slot)
			return true
		})
		if slotErr != nil {
			return nil, slotErr
		}
		return NewSlotted(path, targets, mesh, slots)
	default:
		return nil, &UnknownVariantTypeError{Type: string(kind)}
	}
}

// parseTargets accepts a single item or a non-empty list of items
func parseTargets(field gjson.Result) ([]rpath.Path, error) {
	var raw []string
	switch {
	case field.Type == gjson.String:
		raw = []string{field.String()}
	case field.IsArray():
		for _, t := range field.Array() {
			if t.Type != gjson.String {
				return nil, errors.New("'Target' entries must be strings")
			}
			raw = append(raw, t.String())
		}
		if len(raw) == 0 {
			return nil, ErrNoTargets
		}
	case !field.Exists():
		return nil, errors.New("missing 'Target'")
	default:
		return nil, errors.New("'Target' must be a string or an array")
	}

	targets := make([]rpath.Path, 0, len(raw))
	for _, t := range raw {
		item, err := rpath.Parse(t)
		if err != nil {
			return nil, err
		}
		targets = append(targets, item)
	}
	return targets, nil
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`)

func escapeKey(key string) string {
	return keyEscaper.Replace(key)
}
