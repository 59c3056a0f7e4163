package mesh

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/flywave/go3d/vec3"
)

// Direction is a face of an element
type Direction string

const (
	Down  Direction = "down"
	Up    Direction = "up"
	North Direction = "north"
	South Direction = "south"
	West  Direction = "west"
	East  Direction = "east"
)

// Directions lists all directions in their canonical order
var Directions = []Direction{Down, Up, North, South, West, East}

// Valid reports whether d is one of the six directions
func (d Direction) Valid() bool {
	switch d {
	case Down, Up, North, South, West, East:
		return true
	}
	return false
}

const (
	// MinCoordinate is the smallest allowed element coordinate
	MinCoordinate = -16
	// MaxCoordinate is the largest allowed element coordinate
	MaxCoordinate = 32
)

// UV are texture coordinates (u1, v1, u2, v2)
type UV [4]float32

// Face is one textured side of an element
type Face struct {
	// UV is filled from the element bounds when the source omits it
	UV *UV `json:"uv,omitempty"`
	// Rotation is one of 0, 90, 180 or 270
	Rotation int `json:"rotation,omitempty"`
	// CullFace is optional
	CullFace Direction `json:"cullface,omitempty"`
	// TintIndex is -1 when the face is not tinted
	TintIndex int `json:"tintindex"`
	// Texture is either a "#variable" or a resource path
	Texture string `json:"texture"`
}

type faceJSON struct {
	UV        *UV       `json:"uv,omitempty"`
	Rotation  int       `json:"rotation,omitempty"`
	CullFace  Direction `json:"cullface,omitempty"`
	TintIndex *int      `json:"tintindex,omitempty"`
	Texture   *string   `json:"texture"`
}

// UnmarshalJSON validates the face while decoding
func (f *Face) UnmarshalJSON(data []byte) error {
	var raw faceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Texture == nil {
		return &ValidationError{Field: "texture", Message: "face is missing a texture"}
	}
	if raw.Rotation < 0 || raw.Rotation%90 != 0 || raw.Rotation > 270 {
		return &ValidationError{Field: "rotation", Message: fmt.Sprintf("invalid face rotation %d, only 0/90/180/270 allowed", raw.Rotation)}
	}
	if raw.CullFace != "" && !raw.CullFace.Valid() {
		// unknown cullfaces are dropped like the game does
		raw.CullFace = ""
	}
	*f = Face{
		UV:        raw.UV,
		Rotation:  raw.Rotation,
		CullFace:  raw.CullFace,
		TintIndex: -1,
		Texture:   *raw.Texture,
	}
	if raw.TintIndex != nil {
		f.TintIndex = *raw.TintIndex
	}
	return nil
}

// MarshalJSON omits defaults
func (f Face) MarshalJSON() ([]byte, error) {
	raw := faceJSON{
		UV:       f.UV,
		Rotation: f.Rotation,
		CullFace: f.CullFace,
		Texture:  &f.Texture,
	}
	if f.TintIndex != -1 {
		raw.TintIndex = &f.TintIndex
	}
	return json.Marshal(raw)
}

// Rotation rotates an element around one axis
type Rotation struct {
	Angle   float32 `json:"angle"`
	Axis    string  `json:"axis"`
	Origin  vec3.T  `json:"origin"`
	Rescale bool    `json:"rescale,omitempty"`
}

func (r *Rotation) validate() error {
	switch r.Axis {
	case "x", "y", "z":
	default:
		return &ValidationError{Field: "rotation.axis", Message: fmt.Sprintf("invalid rotation axis %q", r.Axis)}
	}
	a := math.Abs(float64(r.Angle))
	if a != 0 && a != 22.5 && a != 45 {
		return &ValidationError{Field: "rotation.angle", Message: fmt.Sprintf("invalid rotation %v found, only -45/-22.5/0/22.5/45 allowed", r.Angle)}
	}
	return nil
}

// Element is a cuboid of a mesh
type Element struct {
	From     vec3.T
	To       vec3.T
	Rotation *Rotation
	// Shade defaults to true
	Shade bool
	Faces map[Direction]*Face
}

type elementJSON struct {
	From     *vec3.T             `json:"from"`
	To       *vec3.T             `json:"to"`
	Rotation *Rotation           `json:"rotation,omitempty"`
	Shade    *bool               `json:"shade,omitempty"`
	Faces    map[Direction]*Face `json:"faces"`
}

// UnmarshalJSON validates bounds, faces and rotation and fills missing UVs
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw elementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.From == nil {
		return &ValidationError{Field: "from", Message: "element is missing 'from'"}
	}
	if raw.To == nil {
		return &ValidationError{Field: "to", Message: "element is missing 'to'"}
	}
	if !inBounds(raw.From) {
		return &ValidationError{Field: "from", Message: fmt.Sprintf("'from' specifier exceeds the allowed boundaries: %v", *raw.From)}
	}
	if !inBounds(raw.To) {
		return &ValidationError{Field: "to", Message: fmt.Sprintf("'to' specifier exceeds the allowed boundaries: %v", *raw.To)}
	}
	if len(raw.Faces) == 0 {
		return &ValidationError{Field: "faces", Message: "expected between 1 and 6 unique faces, got 0"}
	}
	for dir, face := range raw.Faces {
		if !dir.Valid() {
			return &ValidationError{Field: "faces", Message: fmt.Sprintf("unknown facing %q", dir)}
		}
		if face == nil {
			return &ValidationError{Field: "faces." + string(dir), Message: "face is null"}
		}
	}
	if raw.Rotation != nil {
		if err := raw.Rotation.validate(); err != nil {
			return err
		}
	}

	*e = Element{
		From:     *raw.From,
		To:       *raw.To,
		Rotation: raw.Rotation,
		Shade:    raw.Shade == nil || *raw.Shade,
		Faces:    raw.Faces,
	}
	e.fillUV()
	return nil
}

// MarshalJSON writes shade only when it is disabled
func (e Element) MarshalJSON() ([]byte, error) {
	raw := elementJSON{
		From:     &e.From,
		To:       &e.To,
		Rotation: e.Rotation,
		Faces:    e.Faces,
	}
	if !e.Shade {
		raw.Shade = &e.Shade
	}
	return json.Marshal(raw)
}

func inBounds(v *vec3.T) bool {
	for _, c := range v {
		if c < MinCoordinate || c > MaxCoordinate {
			return false
		}
	}
	return true
}

// fillUV computes texture coordinates for faces without explicit UVs
func (e *Element) fillUV() {
	for dir, face := range e.Faces {
		if face.UV == nil {
			uv := DefaultUV(dir, e.From, e.To)
			face.UV = &uv
		}
	}
}

// DefaultUV returns the UV the game derives from the element bounds
func DefaultUV(dir Direction, from, to vec3.T) UV {
	switch dir {
	case Down:
		return UV{from[0], 16 - to[2], to[0], 16 - from[2]}
	case Up:
		return UV{from[0], from[2], to[0], to[2]}
	case South:
		return UV{from[0], 16 - to[1], to[0], 16 - from[1]}
	case West:
		return UV{from[2], 16 - to[1], to[2], 16 - from[1]}
	case East:
		return UV{16 - to[2], 16 - to[1], 16 - from[2], 16 - from[1]}
	default: // north
		return UV{16 - to[0], 16 - to[1], 16 - from[0], 16 - from[1]}
	}
}

// Clone returns a deep copy
func (e *Element) Clone() *Element {
	c := *e
	if e.Rotation != nil {
		r := *e.Rotation
		c.Rotation = &r
	}
	c.Faces = make(map[Direction]*Face, len(e.Faces))
	for dir, face := range e.Faces {
		f := *face
		if face.UV != nil {
			uv := *face.UV
			f.UV = &uv
		}
		c.Faces[dir] = &f
	}
	return &c
}
