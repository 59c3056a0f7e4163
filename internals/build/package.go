package build

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/minepkg/propack/internals/pack"
	"github.com/minepkg/propack/pkg/manifest"
)

// PackageTask writes the pack zip and its sha1 to the build directory
type PackageTask struct{}

func (t *PackageTask) Name() string { return "package" }

func (t *PackageTask) Run(ctx context.Context, b *IO) error {
	out := b.OutputDir()
	if err := os.MkdirAll(out, os.ModePerm); err != nil {
		return err
	}

	files := b.Files.Files()
	entries := make([]pack.Entry, len(files))
	for i, f := range files {
		entries[i] = pack.Entry{Name: f.Path, Data: f.Data}
	}

	name := b.Manifest.Package.Name
	zipPath := filepath.Join(out, name+".zip")
	sum, err := pack.WriteFile(zipPath, entries, pack.Options{CompressionLevel: b.Manifest.Build.CompressionLevel})
	if err != nil {
		return errors.Wrap(err, "writing zip")
	}
	if err := os.WriteFile(filepath.Join(out, name+".sha1"), []byte(sum), 0644); err != nil {
		return err
	}
	stat, err := os.Stat(zipPath)
	if err != nil {
		return err
	}

	b.Result.Zip = zipPath
	b.Result.Sha1 = sum
	b.Result.Size = stat.Size()
	b.Logger.Debug("wrote pack", zap.String("zip", zipPath), zap.String("sha1", sum))
	return nil
}

// SerializeTask writes the .propack descriptor with the item models and the mesh mapping
type SerializeTask struct{}

func (t *SerializeTask) Name() string { return "serialize" }

func (t *SerializeTask) Run(ctx context.Context, b *IO) error {
	out := b.OutputDir()
	if err := os.MkdirAll(out, os.ModePerm); err != nil {
		return err
	}
	name := b.Manifest.Package.Name
	p := manifest.NewPack(name, b.Result.Sha1, b.Models.All(), b.Mapping.Build())
	target := filepath.Join(out, name+manifest.PackExtension)
	if err := os.WriteFile(target, p.Buffer().Bytes(), 0644); err != nil {
		return err
	}
	b.Result.Descriptor = target
	return nil
}
