/*
Package mesh reads, transforms and writes block model documents ("meshes").

A mesh is the JSON model format understood by the game client: a parent
reference, a texture variable map, a list of cuboid elements and optional
display transformations. Meshes are decoded and validated with Decode,
combined with Merge and written back with Encode.
*/
package mesh

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/minepkg/propack/pkg/rpath"
)

// GuiLight selects how a mesh is lit in the inventory
type GuiLight string

const (
	// GuiLightItem is the "front" light used for flat items
	GuiLightItem GuiLight = "front"
	// GuiLightBlock is the "side" light used for blocks
	GuiLightBlock GuiLight = "side"
)

// DefaultTextureSize is used when a mesh does not declare one
var DefaultTextureSize = [2]int{16, 16}

// ValidationError is returned for mesh documents that decode but break a model rule
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid mesh (%s): %s", e.Field, e.Message)
}

// Override replaces the mesh when all predicates match
type Override struct {
	Predicate map[string]float64 `json:"predicate"`
	Model     string             `json:"model"`
}

// Document is a decoded mesh
type Document struct {
	// Parent is a raw reference until ResolveReferences was called
	Parent      string
	TextureSize [2]int
	// Textures maps variable names to "#other" or a resource path
	Textures map[string]string
	Elements []*Element
	// AmbientOcclusion defaults to true
	AmbientOcclusion bool
	// GuiLight is empty when unset
	GuiLight  GuiLight
	Display   *Display
	Overrides []*Override
}

type documentJSON struct {
	Parent           string            `json:"parent,omitempty"`
	TextureSize      *[2]int           `json:"texture_size,omitempty"`
	Textures         map[string]string `json:"textures,omitempty"`
	Elements         []*Element        `json:"elements,omitempty"`
	AmbientOcclusion *bool             `json:"ambientocclusion,omitempty"`
	GuiLight         GuiLight          `json:"gui_light,omitempty"`
	Display          *Display          `json:"display,omitempty"`
	Overrides        []*Override       `json:"overrides,omitempty"`
}

// New returns an empty mesh with all defaults applied
func New() *Document {
	return &Document{
		TextureSize:      DefaultTextureSize,
		Textures:         map[string]string{},
		AmbientOcclusion: true,
	}
}

// Decode parses and validates a mesh document
func Decode(data []byte) (*Document, error) {
	d := &Document{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Encode writes the mesh. The texture size is always written
func (d *Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.GuiLight {
	case "", GuiLightItem, GuiLightBlock:
	default:
		return &ValidationError{Field: "gui_light", Message: fmt.Sprintf("invalid gui light %q", raw.GuiLight)}
	}
	for i, el := range raw.Elements {
		if el == nil {
			return &ValidationError{Field: fmt.Sprintf("elements[%d]", i), Message: "element is null"}
		}
	}

	*d = Document{
		Parent:           raw.Parent,
		TextureSize:      DefaultTextureSize,
		Textures:         raw.Textures,
		Elements:         raw.Elements,
		AmbientOcclusion: raw.AmbientOcclusion == nil || *raw.AmbientOcclusion,
		GuiLight:         raw.GuiLight,
		Display:          raw.Display,
		Overrides:        raw.Overrides,
	}
	if raw.TextureSize != nil {
		d.TextureSize = *raw.TextureSize
	}
	if d.Textures == nil {
		d.Textures = map[string]string{}
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Document) MarshalJSON() ([]byte, error) {
	size := d.TextureSize
	if size == [2]int{} {
		size = DefaultTextureSize
	}
	raw := documentJSON{
		Parent:      d.Parent,
		TextureSize: &size,
		Textures:    d.Textures,
		Elements:    d.Elements,
		GuiLight:    d.GuiLight,
		Overrides:   d.Overrides,
	}
	if !d.Display.IsZero() {
		raw.Display = d.Display
	}
	if !d.AmbientOcclusion {
		raw.AmbientOcclusion = &d.AmbientOcclusion
	}
	return json.Marshal(raw)
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	c := &Document{
		Parent:           d.Parent,
		TextureSize:      d.TextureSize,
		Textures:         make(map[string]string, len(d.Textures)),
		Elements:         make([]*Element, len(d.Elements)),
		AmbientOcclusion: d.AmbientOcclusion,
		GuiLight:         d.GuiLight,
		Display:          d.Display.Clone(),
	}
	for k, v := range d.Textures {
		c.Textures[k] = v
	}
	for i, el := range d.Elements {
		c.Elements[i] = el.Clone()
	}
	if d.Overrides != nil {
		c.Overrides = make([]*Override, len(d.Overrides))
		for i, o := range d.Overrides {
			predicate := make(map[string]float64, len(o.Predicate))
			for k, v := range o.Predicate {
				predicate[k] = v
			}
			c.Overrides[i] = &Override{Predicate: predicate, Model: o.Model}
		}
	}
	return c
}

// IsVariable reports whether a texture reference points to another variable
func IsVariable(texture string) bool {
	return strings.HasPrefix(texture, "#")
}

// ResolveReferences makes the parent and every non variable texture reference
// absolute. Relative references are resolved against owner, the path of the
// mesh they were written in
func (d *Document) ResolveReferences(owner rpath.Path) error {
	if d.Parent != "" {
		p, err := rpath.ResolveFrom(d.Parent, owner)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		d.Parent = p.String()
	}
	for key, texture := range d.Textures {
		if IsVariable(texture) {
			continue
		}
		p, err := rpath.ResolveFrom(texture, owner)
		if err != nil {
			return fmt.Errorf("texture %q: %w", key, err)
		}
		d.Textures[key] = p.String()
	}
	for _, el := range d.Elements {
		for dir, face := range el.Faces {
			if IsVariable(face.Texture) {
				continue
			}
			p, err := rpath.ResolveFrom(face.Texture, owner)
			if err != nil {
				return fmt.Errorf("face %s texture: %w", dir, err)
			}
			face.Texture = p.String()
		}
	}
	return nil
}

// UnboundVariables returns face texture variables that are not declared in the
// texture map. They may still be declared by a parent mesh
func (d *Document) UnboundVariables() []string {
	seen := map[string]bool{}
	for _, el := range d.Elements {
		for _, face := range el.Faces {
			if !IsVariable(face.Texture) {
				continue
			}
			name := face.Texture[1:]
			if _, ok := d.Textures[name]; !ok {
				seen[name] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MeshNotFoundError is returned when a referenced mesh does not exist
type MeshNotFoundError struct {
	Path rpath.Path
}

func (e *MeshNotFoundError) Error() string {
	return fmt.Sprintf("mesh not found: %s", e.Path)
}
