/*
Package runtime answers which custom model data a live item stack should get.

Resources are loaded from a .propack descriptor and published through a
Store. Readers never lock: a reload replaces the whole Resources value.
*/
package runtime

import (
	"sync/atomic"

	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/manifest"
	"github.com/minepkg/propack/pkg/meshmap"
	"github.com/minepkg/propack/pkg/rpath"
)

// Resources is an immutable bundle of item models and their mesh mapping
type Resources struct {
	pack *manifest.Pack
}

// NewResources wraps a loaded pack descriptor. p must not be modified afterwards
func NewResources(p *manifest.Pack) *Resources {
	return &Resources{pack: p}
}

// LoadResources reads the descriptor at path
func LoadResources(path string) (*Resources, error) {
	p, err := manifest.ReadPack(path)
	if err != nil {
		return nil, err
	}
	return NewResources(p), nil
}

// Name returns the pack name
func (r *Resources) Name() string { return r.pack.Name }

// Sha1 returns the sha1 of the pack zip
func (r *Resources) Sha1() string { return r.pack.Sha1 }

// Model returns the item model at path
func (r *Resources) Model(path rpath.Path) (itemmodel.Variant, bool) {
	return r.pack.ItemModel(path)
}

// Mapping returns the mesh mapping
func (r *Resources) Mapping() *meshmap.Mapping { return r.pack.Mapping }

// Store publishes the current Resources
type Store struct {
	current atomic.Pointer[Resources]
}

// NewStore returns a store holding r. r may be nil
func NewStore(r *Resources) *Store {
	s := &Store{}
	if r != nil {
		s.current.Store(r)
	}
	return s
}

// Load returns the current resources or nil
func (s *Store) Load() *Resources {
	return s.current.Load()
}

// Swap publishes r and returns the previous resources
func (s *Store) Swap(r *Resources) *Resources {
	return s.current.Swap(r)
}
