package manifest

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/meshmap"
	"github.com/minepkg/propack/pkg/rpath"
)

func validManifest() *Manifest {
	m := New()
	m.Package.Name = "fancy-swords"
	m.Requirements.Minecraft = "~1.20.1"
	return m
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(m *Manifest)
		wantFatal bool
		wantPath  string
	}{
		{"valid", func(m *Manifest) {}, false, ""},
		{"empty name", func(m *Manifest) { m.Package.Name = "" }, true, "package.name"},
		{"invalid name", func(m *Manifest) { m.Package.Name = "Fancy Swords" }, true, "package.name"},
		{"pack format", func(m *Manifest) { m.Package.PackFormat = 0 }, true, "package.packFormat"},
		{"bad requirement", func(m *Manifest) { m.Requirements.Minecraft = "one point twenty" }, true, "requirements.minecraft"},
		{"broad requirement", func(m *Manifest) { m.Requirements.Minecraft = ">1.18" }, false, "requirements.minecraft"},
		{"strict mode", func(m *Manifest) { m.Build.Strict = "sometimes" }, true, "build.strict"},
		{"negative start", func(m *Manifest) { m.Build.CustomModelDataStart = -4 }, true, "build.customModelDataStart"},
		{"compression", func(m *Manifest) { m.Build.CompressionLevel = 12 }, true, "build.compressionLevel"},
		{"ignore glob", func(m *Manifest) { m.Build.Ignore = []string{"content/[a"} }, true, "build.ignore"},
		{"version", func(m *Manifest) { m.Package.Version = "v1" }, false, "package.version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.modify(m)
			problems := m.Validate()
			if fatal := problems.Fatal(); (fatal != nil) != tt.wantFatal {
				t.Errorf("Fatal() = %v, wantFatal %v", fatal, tt.wantFatal)
			}
			if tt.wantPath == "" {
				if len(problems) != 0 {
					t.Errorf("unexpected problems %v", problems)
				}
				return
			}
			found := false
			for _, p := range problems {
				if p.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no problem reported for %s: %v", tt.wantPath, problems)
			}
		})
	}
}

func TestManifestFile(t *testing.T) {
	m := validManifest()
	m.Build.Ignore = []string{"**/*.psd"}
	m.Build.Translations = map[string]string{"propack.greeting": "Hi"}
	m.Build.Languages = []string{"en_us"}

	path := filepath.Join(t.TempDir(), FileName)
	if err := m.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Package.Name != "fancy-swords" || back.Package.PackFormat != DefaultPackFormat {
		t.Errorf("package lost: %+v", back.Package)
	}
	if back.Build.Translations["propack.greeting"] != "Hi" || back.Build.Ignore[0] != "**/*.psd" {
		t.Errorf("build options lost: %+v", back.Build)
	}
	if back.Build.OutputDir() != "build" || back.Build.StrictMode() != StrictEnabled {
		t.Error("defaults are wrong")
	}
}

func TestPackRoundTrip(t *testing.T) {
	stick := rpath.MustParse("minecraft:stick")
	sword, err := itemmodel.NewSlotted(
		rpath.MustParse("fancy:item/sword"),
		[]rpath.Path{stick},
		rpath.MustParse("fancy:item/sword_base"),
		[]combination.Slot{{Name: "gem", Entries: []string{"ruby"}}},
	)
	if err != nil {
		t.Fatal(err)
	}
	axe, err := itemmodel.NewDefault(rpath.MustParse("fancy:item/axe"), []rpath.Path{stick}, rpath.MustParse("fancy:item/axe"))
	if err != nil {
		t.Fatal(err)
	}
	b := meshmap.NewBuilder(meshmap.DefaultStart)
	b.Register(stick, rpath.MustParse("fancy:item/axe"))
	b.Register(stick, rpath.MustParse("fancy:item/sword_base"))

	pack := NewPack("fancy", "abc", []itemmodel.Variant{sword, axe}, b.Build())
	if pack.ItemModels[0].Path().String() != "fancy:item/axe" {
		t.Error("models are not sorted")
	}

	raw := pack.Buffer().Bytes()
	if !strings.Contains(string(raw), `"mesh_mapping"`) || !strings.Contains(string(raw), `"item_models"`) {
		t.Errorf("unexpected layout %s", raw)
	}

	loaded, err := LoadPack(raw)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "fancy" || loaded.Sha1 != "abc" || len(loaded.ItemModels) != 2 {
		t.Errorf("lost data: %+v", loaded)
	}
	model, ok := loaded.ItemModel(rpath.MustParse("fancy:item/sword"))
	if !ok || model.Kind() != itemmodel.KindSlot {
		t.Fatalf("sword = %v, %v", model, ok)
	}
	if id, _ := loaded.Mapping.Lookup(stick, rpath.MustParse("fancy:item/sword_base")); id != 2 {
		t.Errorf("id = %d", id)
	}
	if _, ok := loaded.ItemModel(rpath.MustParse("fancy:item/bow")); ok {
		t.Error("found a model that does not exist")
	}
}

func TestLoadPackVersion(t *testing.T) {
	_, err := LoadPack([]byte(`{"version": 2, "resources": {}}`))
	var verErr *ErrUnsupportedPackVersion
	if !errors.As(err, &verErr) || verErr.Version != 2 {
		t.Errorf("expected ErrUnsupportedPackVersion, got %v", err)
	}
}
