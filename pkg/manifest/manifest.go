/*
Package manifest defines the file formats that describe a resource pack project.

The "propack.toml" manifest is the way a project describes the pack it builds:
its name, the Minecraft versions it targets and how it should be built.
A successful build also writes a "<name>.propack" descriptor (see Pack) that
servers load to resolve item models at runtime.
*/
package manifest

import (
	"bytes"
	"log"
	"os"

	"github.com/pelletier/go-toml"
)

// FileName is the name of the project manifest
const FileName = "propack.toml"

const (
	// StrictEnabled fails the build on invalid file names (default)
	StrictEnabled = "true"
	// StrictWarn logs invalid file names and skips them
	StrictWarn = "warn"
	// StrictDisabled silently skips invalid file names
	StrictDisabled = "false"
)

// DefaultPackFormat is used by `propack init`
const DefaultPackFormat = 15

// Manifest is a collection of data that describes a resource pack project
type Manifest struct {
	// ManifestVersion specifies the format version
	// This field is REQUIRED
	ManifestVersion int `toml:"manifestVersion" comment:"Preview of the propack.toml format! Could break anytime!" json:"manifestVersion"`
	Package         struct {
		// Name is the name of the pack. It may ONLY consist of lowercase
		// alphanumeric chars, `-` and `_`. The build output is named after it
		// This field is REQUIRED
		Name string `toml:"name" json:"name"`
		// Description is written to pack.mcmeta
		Description string `toml:"description" json:"description"`
		// PackFormat is the pack_format written to pack.mcmeta
		// This field is REQUIRED
		PackFormat int `toml:"packFormat" json:"packFormat"`
		// Icon is a png relative to the project directory that becomes pack.png
		Icon string `toml:"icon,omitempty" json:"icon,omitempty"`
		// Version of this pack. Should be semver
		Version string `toml:"version,omitempty" json:"version,omitempty"`
		// Author in the form of "Full Name <email@example.com>"
		Author string `toml:"author,omitempty" json:"author,omitempty"`
	} `toml:"package" json:"package"`
	Requirements struct {
		// Minecraft is a semver constraint describing the supported Minecraft versions
		// This field is REQUIRED
		Minecraft string `toml:"minecraft" json:"minecraft"`
	} `toml:"requirements" comment:"These are global requirements" json:"requirements"`
	// Build contains options for `propack build`
	Build BuildOptions `toml:"build" json:"build"`
}

// BuildOptions configure the build pipeline
type BuildOptions struct {
	// Strict is one of `StrictEnabled` (default), `StrictWarn` or `StrictDisabled`
	Strict string `toml:"strict,omitempty" json:"strict,omitempty"`
	// Ignore lists glob patterns (relative to the project directory) of files that are not part of the pack
	Ignore []string `toml:"ignore,omitempty" json:"ignore,omitempty"`
	// CustomModelDataStart is the first custom model data id handed out per item. Defaults to 1
	CustomModelDataStart int `toml:"customModelDataStart,omitempty" json:"customModelDataStart,omitempty"`
	// CompressionLevel of the zip file (1-9). 0 or -1 use the default
	CompressionLevel int `toml:"compressionLevel,omitempty" json:"compressionLevel,omitempty"`
	// Languages receive the Translations in assets/minecraft/lang
	Languages []string `toml:"languages,omitempty" json:"languages,omitempty"`
	// Translations are added to every language in Languages
	Translations map[string]string `toml:"translations,omitempty" json:"translations,omitempty"`
	// Output is the build directory relative to the project. Defaults to "build"
	Output string `toml:"output,omitempty" json:"output,omitempty"`
}

// StrictMode returns the effective strict mode
func (b *BuildOptions) StrictMode() string {
	if b.Strict == "" {
		return StrictEnabled
	}
	return b.Strict
}

// OutputDir returns the effective build directory
func (b *BuildOptions) OutputDir() string {
	if b.Output == "" {
		return "build"
	}
	return b.Output
}

// Buffer returns the manifest as toml in Buffer form
func (m *Manifest) Buffer() *bytes.Buffer {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Order(toml.OrderPreserve).Encode(m); err != nil {
		log.Fatal(err)
	}
	return buf
}

func (m *Manifest) String() string {
	return m.Buffer().String()
}

// New returns a new manifest
func New() *Manifest {
	manifest := Manifest{}
	manifest.Package.PackFormat = DefaultPackFormat
	return &manifest
}

// Parse decodes a manifest from toml
func Parse(raw []byte) (*Manifest, error) {
	manifest := New()
	if err := toml.Unmarshal(raw, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// ReadFile reads the manifest at path
func ReadFile(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// WriteFile writes the manifest to path
func (m *Manifest) WriteFile(path string) error {
	return os.WriteFile(path, m.Buffer().Bytes(), 0644)
}
