package build

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/minepkg/propack/internals/content"
)

// assetKinds maps content file extensions to the asset directory they belong to
var assetKinds = []struct {
	ext  string
	kind string
}{
	{".png.mcmeta", "textures"},
	{".png", "textures"},
	{".ogg", "sounds"},
	{".ttf", "font"},
	{".otf", "font"},
	{".bin", "font"},
}

// AssetsTask moves the remaining files to their place inside the pack.
// include/ is copied to the pack root as it is, content/ files are sorted
// into assets/<ns>/<kind>/ by extension
type AssetsTask struct{}

func (t *AssetsTask) Name() string { return "assets" }

func (t *AssetsTask) Run(ctx context.Context, b *IO) error {
	// sorted by path, so include/ overwrites generated files
	for _, f := range b.Files.Files() {
		switch {
		case strings.HasPrefix(f.Path, content.IncludeDir+"/"):
			b.Files.Remove(f.Path)
			target := strings.TrimPrefix(f.Path, content.IncludeDir+"/")
			if _, exists := b.Files.Get(target); exists {
				b.Logger.Debug("included file replaces generated file", zap.String("file", target))
			}
			b.Files.Add(&content.File{Path: target, Data: f.Data, JSON: f.JSON})
		case strings.HasPrefix(f.Path, content.ContentDir+"/"):
			b.Files.Remove(f.Path)
			target, ok := assetPath(f.Path)
			if !ok {
				b.Logger.Warn("skipping unsupported content file", zap.String("file", f.Path))
				continue
			}
			b.Files.Add(&content.File{Path: target, Data: f.Data, JSON: f.JSON})
		}
	}
	b.Result.Files = b.Files.Len()
	return nil
}

// assetPath maps "content/<ns>/<rest>" to its path below assets/
func assetPath(file string) (string, bool) {
	rest := strings.TrimPrefix(file, content.ContentDir+"/")
	ns, value, found := strings.Cut(rest, "/")
	if !found {
		return "", false
	}
	if value == "sounds.json" {
		return content.AssetsDir + "/" + ns + "/sounds.json", true
	}
	for _, k := range assetKinds {
		if strings.HasSuffix(value, k.ext) {
			return content.AssetsDir + "/" + ns + "/" + k.kind + "/" + value, true
		}
	}
	return "", false
}
