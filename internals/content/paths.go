package content

import (
	"fmt"
	"strings"

	"github.com/minepkg/propack/pkg/rpath"
)

const (
	// ContentDir holds namespaced sources that are processed by the build
	ContentDir = "content"
	// IncludeDir holds files that are copied into the pack as they are
	IncludeDir = "include"
	// AssetsDir is the root of the namespaces inside a resource pack
	AssetsDir = "assets"
)

const (
	// ModelExt marks item model sources
	ModelExt = ".model.json"
	// MeshExt marks mesh sources
	MeshExt = ".mesh.json"
)

// ResourcePath turns "content/<ns>/<value><ext>" into "ns:value"
func ResourcePath(filePath string, ext string) (rpath.Path, error) {
	rest, ok := strings.CutPrefix(filePath, ContentDir+"/")
	if !ok {
		return rpath.Path{}, fmt.Errorf("%s is not inside %s/", filePath, ContentDir)
	}
	rest, ok = strings.CutSuffix(rest, ext)
	if !ok {
		return rpath.Path{}, fmt.Errorf("%s does not end with %s", filePath, ext)
	}
	ns, value, found := strings.Cut(rest, "/")
	if !found {
		return rpath.Path{}, fmt.Errorf("%s has no namespace directory", filePath)
	}
	return rpath.New(ns, value)
}

// ContentPath is the inverse of ResourcePath
func ContentPath(p rpath.Path, ext string) string {
	return ContentDir + "/" + p.Namespace() + "/" + p.Value() + ext
}

// AssetPath returns "assets/<ns>/<kind>/<value><ext>"
func AssetPath(p rpath.Path, kind string, ext string) string {
	return AssetsDir + "/" + p.Namespace() + "/" + kind + "/" + p.Value() + ext
}
