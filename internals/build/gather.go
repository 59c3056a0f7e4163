package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/minepkg/propack/internals/content"
	"github.com/minepkg/propack/internals/pack"
)

// GatherTask reads the project sources and adds the generated pack.mcmeta
// and the icon
type GatherTask struct{}

func (t *GatherTask) Name() string { return "gather" }

func (t *GatherTask) Run(ctx context.Context, b *IO) error {
	files, err := content.Gather(ctx, b.Dir, content.Options{
		Strict: b.Manifest.Build.StrictMode(),
		Ignore: b.Manifest.Build.Ignore,
		Logger: b.Logger,
	})
	if err != nil {
		return err
	}
	b.Files = files

	meta := pack.NewMeta(b.Manifest.Package.PackFormat, b.Manifest.Package.Description)
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	b.Files.AddJSON("pack.mcmeta", raw)

	if icon := b.Manifest.Package.Icon; icon != "" {
		data, err := os.ReadFile(filepath.Join(b.Dir, icon))
		if err != nil {
			return errors.Wrap(err, "reading icon")
		}
		b.Files.Add(&content.File{Path: "pack.png", Data: data})
	}

	b.Logger.Debug("gathered files", zap.Int("files", b.Files.Len()))
	return nil
}
