package mesh

import (
	"encoding/json"
	"fmt"

	"github.com/flywave/go3d/vec3"
)

// DefaultScaleOrigin is the block center
var DefaultScaleOrigin = vec3.T{8, 8, 8}

// Reference points to a sub-mesh from an item model. In JSON it is either the
// mesh path as a string or an object with the path and an optional placement
type Reference struct {
	Mesh   string  `json:"Mesh"`
	Offset *vec3.T `json:"Offset,omitempty"`
	// Scale and ScaleOrigin are accepted for older item models
	Scale       *vec3.T `json:"Scale,omitempty"`
	ScaleOrigin *vec3.T `json:"ScaleOrigin,omitempty"`
}

type referenceAlias Reference

// UnmarshalJSON accepts the string and the object form
func (r *Reference) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Reference{Mesh: s}
		return r.validate()
	}
	var raw referenceAlias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("mesh reference must be a string or an object: %w", err)
	}
	*r = Reference(raw)
	return r.validate()
}

// MarshalJSON writes the short string form when there is no placement
func (r Reference) MarshalJSON() ([]byte, error) {
	if r.Offset == nil && r.Scale == nil && r.ScaleOrigin == nil {
		return json.Marshal(r.Mesh)
	}
	return json.Marshal(referenceAlias(r))
}

func (r *Reference) validate() error {
	if r.Mesh == "" {
		return &ValidationError{Field: "Mesh", Message: "mesh reference is empty"}
	}
	return nil
}

// Apply places d according to the reference: scale first, then offset
func (r *Reference) Apply(d *Document) {
	if r.Scale != nil {
		origin := DefaultScaleOrigin
		if r.ScaleOrigin != nil {
			origin = *r.ScaleOrigin
		}
		d.Scale(*r.Scale, origin)
	}
	if r.Offset != nil {
		d.Translate(*r.Offset)
	}
}

// Translate moves every element and rotation origin by offset
func (d *Document) Translate(offset vec3.T) {
	for _, el := range d.Elements {
		el.From = vec3.Add(&el.From, &offset)
		el.To = vec3.Add(&el.To, &offset)
		if el.Rotation != nil {
			el.Rotation.Origin = vec3.Add(&el.Rotation.Origin, &offset)
		}
	}
}

// Scale scales every element and rotation origin by size around origin
func (d *Document) Scale(size vec3.T, origin vec3.T) {
	for _, el := range d.Elements {
		el.From = scaleAround(el.From, size, origin)
		el.To = scaleAround(el.To, size, origin)
		if el.Rotation != nil {
			el.Rotation.Origin = scaleAround(el.Rotation.Origin, size, origin)
		}
	}
}

func scaleAround(v, size, origin vec3.T) vec3.T {
	d := vec3.Sub(&v, &origin)
	for i := range d {
		d[i] *= size[i]
	}
	return vec3.Add(&d, &origin)
}

// Merge adds the textures and elements of sub into d under key.
//
// Every texture variable "k" of sub becomes "key.k" in d and every face of sub
// that references "#x" is rewritten to "#key.x", so variables of different
// sub-meshes never collide. Elements are deep copied and appended. Everything
// else of d (parent, display, lighting) stays as it is.
func (d *Document) Merge(key string, sub *Document) {
	if d.Textures == nil {
		d.Textures = map[string]string{}
	}
	for k, texture := range sub.Textures {
		if IsVariable(texture) {
			texture = "#" + key + "." + texture[1:]
		}
		d.Textures[key+"."+k] = texture
	}
	for _, el := range sub.Elements {
		c := el.Clone()
		for _, face := range c.Faces {
			if IsVariable(face.Texture) {
				face.Texture = "#" + key + "." + face.Texture[1:]
			}
		}
		d.Elements = append(d.Elements, c)
	}
}
