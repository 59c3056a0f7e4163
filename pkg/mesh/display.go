package mesh

import (
	"encoding/json"

	"github.com/flywave/go3d/vec3"
)

// Transformation positions a mesh for one display context
type Transformation struct {
	Rotation    *vec3.T `json:"rotation,omitempty"`
	Translation *vec3.T `json:"translation,omitempty"`
	Scale       *vec3.T `json:"scale,omitempty"`
}

func (t *Transformation) clone() *Transformation {
	if t == nil {
		return nil
	}
	c := &Transformation{}
	if t.Rotation != nil {
		v := *t.Rotation
		c.Rotation = &v
	}
	if t.Translation != nil {
		v := *t.Translation
		c.Translation = &v
	}
	if t.Scale != nil {
		v := *t.Scale
		c.Scale = &v
	}
	return c
}

// Display holds a transformation per render context. A nil entry means identity
type Display struct {
	ThirdPersonRightHand *Transformation `json:"thirdperson_righthand,omitempty"`
	ThirdPersonLeftHand  *Transformation `json:"thirdperson_lefthand,omitempty"`
	FirstPersonRightHand *Transformation `json:"firstperson_righthand,omitempty"`
	FirstPersonLeftHand  *Transformation `json:"firstperson_lefthand,omitempty"`
	Head                 *Transformation `json:"head,omitempty"`
	GUI                  *Transformation `json:"gui,omitempty"`
	Ground               *Transformation `json:"ground,omitempty"`
	Fixed                *Transformation `json:"fixed,omitempty"`
}

type displayAlias Display

// UnmarshalJSON lets left hand contexts fall back to the right hand ones
func (d *Display) UnmarshalJSON(data []byte) error {
	var raw displayAlias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ThirdPersonLeftHand == nil {
		raw.ThirdPersonLeftHand = raw.ThirdPersonRightHand.clone()
	}
	if raw.FirstPersonLeftHand == nil {
		raw.FirstPersonLeftHand = raw.FirstPersonRightHand.clone()
	}
	*d = Display(raw)
	return nil
}

// IsZero reports whether no context is transformed
func (d *Display) IsZero() bool {
	return d == nil || *d == Display{}
}

// Clone returns a deep copy
func (d *Display) Clone() *Display {
	if d == nil {
		return nil
	}
	return &Display{
		ThirdPersonRightHand: d.ThirdPersonRightHand.clone(),
		ThirdPersonLeftHand:  d.ThirdPersonLeftHand.clone(),
		FirstPersonRightHand: d.FirstPersonRightHand.clone(),
		FirstPersonLeftHand:  d.FirstPersonLeftHand.clone(),
		Head:                 d.Head.clone(),
		GUI:                  d.GUI.clone(),
		Ground:               d.Ground.clone(),
		Fixed:                d.Fixed.clone(),
	}
}
