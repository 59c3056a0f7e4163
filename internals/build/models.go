package build

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/minepkg/propack/internals/content"
	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/mesh"
	"github.com/minepkg/propack/pkg/rpath"
)

// ModelsTask expands item models into their meshes, emits every mesh as a
// model asset, assigns custom model data ids and writes the overrides into
// the vanilla item models found in include/
type ModelsTask struct{}

func (t *ModelsTask) Name() string { return "models" }

func (t *ModelsTask) Run(ctx context.Context, b *IO) error {
	targets := meshTargets{}
	var errs error

	for _, f := range b.Files.Match(content.ContentDir+"/", content.ModelExt) {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.Files.Remove(f.Path)
		if err := expandModel(b, f, targets); err != nil {
			b.Logger.Error("could not process item model", zap.String("file", f.Path), zap.Error(err))
			errs = multierr.Append(errs, &FileError{Path: f.Path, Err: err})
		}
	}

	for _, f := range b.Files.Match(content.ContentDir+"/", content.MeshExt) {
		if err := emitMesh(b, f, targets); err != nil {
			b.Logger.Error("could not process mesh", zap.String("file", f.Path), zap.Error(err))
			errs = multierr.Append(errs, &FileError{Path: f.Path, Err: err})
		}
	}
	if errs != nil {
		return errs
	}

	return injectOverrides(b)
}

// MeshConflictError is returned when a generated mesh path is already taken,
// either by an authored mesh or by another combination with the same hash
type MeshConflictError struct {
	Mesh rpath.Path
	Key  string
}

func (e *MeshConflictError) Error() string {
	return fmt.Sprintf("combination %q generates %s, which already exists", e.Key, e.Mesh)
}

// meshTargets records the items every mesh is shown on
type meshTargets map[rpath.Path][]rpath.Path

func (m meshTargets) add(p rpath.Path, items []rpath.Path) {
	merged := append(m[p], items...)
	slices.SortFunc(merged, rpath.Compare)
	m[p] = slices.Compact(merged)
}

// expandModel registers the item model in f and writes a mesh source for
// every non empty combination
func expandModel(b *IO, f *content.File, targets meshTargets) error {
	path, err := content.ResourcePath(f.Path, content.ModelExt)
	if err != nil {
		return err
	}
	src, err := itemmodel.ParseSource(f.Data)
	if err != nil {
		return errors.Wrap(err, "parsing item model")
	}
	v, err := src.Variant(path)
	if err != nil {
		return err
	}
	base, err := loadMesh(b.Files, v.Mesh())
	if err != nil {
		return err
	}
	targets.add(v.Mesh(), v.Targets())

	var combinations []itemmodel.Combination
	switch m := v.(type) {
	case *itemmodel.Default:
	case *itemmodel.Combined:
		if combinations, err = m.Combinations(); err != nil {
			return err
		}
	case *itemmodel.Slotted:
		if combinations, err = m.Combinations(); err != nil {
			return err
		}
	}

	parts := map[itemmodel.Part]*mesh.Document{}
	for _, c := range combinations {
		// the empty slot selection is the base mesh
		if c.IsEmpty() {
			continue
		}
		doc := base.Clone()
		for _, part := range c.Parts {
			sub, ok := parts[part]
			if !ok {
				ref, found := src.Reference(part)
				if !found {
					return fmt.Errorf("no mesh declared for %q", part.Name)
				}
				if sub, err = loadReference(b.Files, ref, path); err != nil {
					return errors.Wrapf(err, "%s", partName(part))
				}
				parts[part] = sub
			}
			doc.Merge(part.Name, sub)
		}
		encoded, err := doc.Encode()
		if err != nil {
			return errors.Wrapf(err, "encoding %s", c.Path)
		}
		generated := content.ContentPath(c.Path, content.MeshExt)
		if _, exists := b.Files.Get(generated); exists {
			return &MeshConflictError{Mesh: c.Path, Key: c.Key}
		}
		b.Files.AddJSON(generated, encoded)
		targets.add(c.Path, v.Targets())
	}

	if err := b.Models.Add(v); err != nil {
		return err
	}
	b.Logger.Debug("expanded item model",
		zap.Stringer("model", path),
		zap.String("type", string(v.Kind())),
		zap.Int("combinations", len(combinations)),
	)
	return nil
}

func partName(p itemmodel.Part) string {
	if p.Entry == "" {
		return fmt.Sprintf("element %q", p.Name)
	}
	return fmt.Sprintf("slot %q entry %q", p.Name, p.Entry)
}

// loadMesh decodes the mesh source at p and resolves its references
func loadMesh(files *content.Collection, p rpath.Path) (*mesh.Document, error) {
	f, ok := files.Get(content.ContentPath(p, content.MeshExt))
	if !ok {
		return nil, &mesh.MeshNotFoundError{Path: p}
	}
	doc, err := mesh.Decode(f.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %s", p)
	}
	if err := doc.ResolveReferences(p); err != nil {
		return nil, errors.Wrapf(err, "mesh %s", p)
	}
	return doc, nil
}

// loadReference loads a sub-mesh referenced from the item model at owner
// and applies its placement
func loadReference(files *content.Collection, ref mesh.Reference, owner rpath.Path) (*mesh.Document, error) {
	p, err := rpath.ResolveFrom(ref.Mesh, owner)
	if err != nil {
		return nil, err
	}
	doc, err := loadMesh(files, p)
	if err != nil {
		return nil, err
	}
	ref.Apply(doc)
	return doc, nil
}

// emitMesh writes the mesh source f as model asset and registers it for
// the items it is shown on
func emitMesh(b *IO, f *content.File, targets meshTargets) error {
	b.Files.Remove(f.Path)
	p, err := content.ResourcePath(f.Path, content.MeshExt)
	if err != nil {
		return err
	}
	doc, err := mesh.Decode(f.Data)
	if err != nil {
		return err
	}
	if err := doc.ResolveReferences(p); err != nil {
		return err
	}
	if unbound := doc.UnboundVariables(); len(unbound) != 0 && doc.Parent == "" {
		b.Logger.Warn("mesh uses undeclared textures", zap.Stringer("mesh", p), zap.Strings("textures", unbound))
	}
	encoded, err := doc.Encode()
	if err != nil {
		return err
	}
	b.Files.AddJSON(content.AssetPath(p, "models", ".json"), encoded)

	for _, item := range targets[p] {
		b.Mapping.Register(item, p)
	}
	return nil
}

// ItemModelFile returns the include path of the vanilla model of item
func ItemModelFile(item rpath.Path) string {
	return fmt.Sprintf("%s/%s/%s/models/item/%s.json", content.IncludeDir, content.AssetsDir, item.Namespace(), item.Value())
}

func injectOverrides(b *IO) error {
	mapping := b.Mapping.Build()
	for _, item := range mapping.Items() {
		file := ItemModelFile(item)
		f, ok := b.Files.Get(file)
		if !ok {
			b.Logger.Warn("no item model to add overrides to", zap.Stringer("item", item), zap.String("expected", file))
			continue
		}
		data := f.Data
		for _, entry := range mapping.Entries(item) {
			override := mesh.Override{
				Predicate: map[string]float64{"custom_model_data": float64(entry.ID)},
				Model:     entry.Mesh.String(),
			}
			var err error
			if data, err = sjson.SetBytes(data, "overrides.-1", override); err != nil {
				return &FileError{Path: file, Err: err}
			}
		}
		b.Files.AddJSON(file, data)
	}
	return nil
}
