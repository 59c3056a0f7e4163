package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"golang.org/x/exp/slices"

	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/meshmap"
	"github.com/minepkg/propack/pkg/rpath"
)

// PackVersion is the current version of the pack descriptor
const PackVersion = 1

// PackExtension is appended to the pack name for the descriptor file
const PackExtension = ".propack"

// ErrUnsupportedPackVersion is returned for descriptors written by a newer or older version
type ErrUnsupportedPackVersion struct {
	Version int
}

func (e *ErrUnsupportedPackVersion) Error() string {
	return fmt.Sprintf("unsupported pack descriptor version %d (expected %d)", e.Version, PackVersion)
}

// Pack describes a built resource pack: its item models and the custom model
// data ids assigned to their meshes
type Pack struct {
	Version int
	Name    string
	Sha1    string
	// ItemModels are sorted by path
	ItemModels []itemmodel.Variant
	Mapping    *meshmap.Mapping
}

type packJSON struct {
	Version   int    `json:"version"`
	Name      string `json:"name"`
	Sha1      string `json:"sha1"`
	Resources struct {
		ItemModels  map[string]json.RawMessage `json:"item_models"`
		MeshMapping *meshmap.Mapping           `json:"mesh_mapping"`
	} `json:"resources"`
}

// NewPack returns a descriptor with models sorted by path
func NewPack(name string, sha1 string, models []itemmodel.Variant, mapping *meshmap.Mapping) *Pack {
	sorted := slices.Clone(models)
	slices.SortFunc(sorted, func(a, b itemmodel.Variant) int { return rpath.Compare(a.Path(), b.Path()) })
	if mapping == nil {
		mapping = meshmap.Empty()
	}
	return &Pack{Version: PackVersion, Name: name, Sha1: sha1, ItemModels: sorted, Mapping: mapping}
}

// ItemModel returns the model at path
func (p *Pack) ItemModel(path rpath.Path) (itemmodel.Variant, bool) {
	i, found := slices.BinarySearchFunc(p.ItemModels, path, func(v itemmodel.Variant, target rpath.Path) int {
		return rpath.Compare(v.Path(), target)
	})
	if !found {
		return nil, false
	}
	return p.ItemModels[i], true
}

// MarshalJSON implements json.Marshaler
func (p *Pack) MarshalJSON() ([]byte, error) {
	raw := packJSON{Version: p.Version, Name: p.Name, Sha1: p.Sha1}
	raw.Resources.ItemModels = make(map[string]json.RawMessage, len(p.ItemModels))
	for _, model := range p.ItemModels {
		encoded, err := itemmodel.Marshal(model)
		if err != nil {
			return nil, fmt.Errorf("item model %s: %w", model.Path(), err)
		}
		raw.Resources.ItemModels[model.Path().String()] = encoded
	}
	raw.Resources.MeshMapping = p.Mapping
	if raw.Resources.MeshMapping == nil {
		raw.Resources.MeshMapping = meshmap.Empty()
	}
	return json.Marshal(raw)
}

// Buffer returns the descriptor as indented json
func (p *Pack) Buffer() *bytes.Buffer {
	encoded, err := json.Marshal(p)
	if err != nil {
		log.Fatal(err)
	}
	buf := new(bytes.Buffer)
	if err := json.Indent(buf, encoded, "", "  "); err != nil {
		log.Fatal(err)
	}
	return buf
}

func (p *Pack) String() string {
	return p.Buffer().String()
}

// LoadPack decodes a descriptor. The models and the mapping are restored as
// they were built, nothing is derived again
func LoadPack(data []byte) (*Pack, error) {
	var raw packJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Version != PackVersion {
		return nil, &ErrUnsupportedPackVersion{Version: raw.Version}
	}

	models := make([]itemmodel.Variant, 0, len(raw.Resources.ItemModels))
	for key, encoded := range raw.Resources.ItemModels {
		path, err := rpath.Parse(key)
		if err != nil {
			return nil, err
		}
		model, err := itemmodel.Unmarshal(path, encoded)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return NewPack(raw.Name, raw.Sha1, models, raw.Resources.MeshMapping), nil
}

// ReadPack reads a descriptor file
func ReadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadPack(data)
}
