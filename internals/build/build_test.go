package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/minepkg/propack/internals/content"
	"github.com/minepkg/propack/internals/pack"
	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/manifest"
	"github.com/minepkg/propack/pkg/mesh"
	"github.com/minepkg/propack/pkg/rpath"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		target := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(target, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func meshSource(texture string) string {
	return `{"textures": {"main": "./` + texture + `"}, "elements": [{"from": [0, 0, 0], "to": [16, 16, 16], "faces": {"north": {"texture": "#main"}}}]}`
}

func testManifest() *manifest.Manifest {
	m := manifest.New()
	m.Package.Name = "fancy-pack"
	m.Package.Description = "fancy swords"
	m.Requirements.Minecraft = "~1.20.1"
	m.Build.Languages = []string{"en_us"}
	m.Build.Translations = map[string]string{"menu.fancy": "Fancy"}
	return m
}

func swordProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"content/fancy/item/sword.mesh.json": meshSource("sword"),
		"content/fancy/item/gem.mesh.json":   meshSource("gem"),
		"content/fancy/item/hilt.mesh.json":  meshSource("hilt"),
		"content/fancy/item/sword.model.json": `{
			// comments are fine
			"Type": "CombinedItemModel",
			"Mesh": "./sword",
			"Target": "minecraft:diamond_sword",
			"Elements": {
				"gem": "./gem",
				"hilt": {"Mesh": "./hilt", "Offset": [0, 1, 0]}
			}
		}`,
		"content/fancy/item/sword.png":                            "png",
		"content/fancy/lang/en_us.lang.json":                      `{"item.<namespace>.sword": "Sword"}`,
		"content/fancy/lang/de_de.lang":                           "item.<namespace>.sword=Schwert\n",
		"include/assets/minecraft/models/item/diamond_sword.json": `{"parent": "item/handheld", "textures": {"layer0": "item/diamond_sword"}}`,
	})
}

func TestPipeline(t *testing.T) {
	dir := swordProject(t)
	b := NewIO(dir, testManifest(), nil)
	steps := 0
	p := New(Options{})
	p.OnTask = func(n int, total int, task Task) { steps++ }
	if err := p.Run(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if steps != len(p.Tasks) {
		t.Errorf("OnTask called %d times", steps)
	}

	sword := rpath.MustParse("fancy:item/sword")
	item := rpath.MustParse("minecraft:diamond_sword")
	v, ok := b.Models.Get(sword)
	if !ok {
		t.Fatal("sword model not registered")
	}
	combined := v.(*itemmodel.Combined)

	mapping := b.Mapping.Build()
	if got := len(mapping.Entries(item)); got != 4 {
		t.Fatalf("expected base mesh and 3 combinations, got %d", got)
	}
	both, err := combined.MeshFor("hilt", "gem")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range []rpath.Path{sword, both} {
		if _, ok := mapping.Lookup(item, m); !ok {
			t.Errorf("%s is not mapped", m)
		}
	}

	generated, ok := b.Files.Get(content.AssetPath(both, "models", ".json"))
	if !ok {
		t.Fatalf("no asset for %s", both)
	}
	doc, err := mesh.Decode(generated.Data)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Elements) != 3 {
		t.Errorf("expected 3 elements, got %d", len(doc.Elements))
	}
	if doc.Textures["gem.main"] != "fancy:item/gem" {
		t.Errorf("gem texture = %q", doc.Textures["gem.main"])
	}
	if doc.Textures["main"] != "fancy:item/sword" {
		t.Errorf("base texture = %q", doc.Textures["main"])
	}
	if doc.Elements[2].From[1] != 1 {
		t.Errorf("hilt offset not applied: %v", doc.Elements[2].From)
	}

	vanilla, ok := b.Files.Get("assets/minecraft/models/item/diamond_sword.json")
	if !ok {
		t.Fatal("vanilla model missing")
	}
	overrides := gjson.GetBytes(vanilla.Data, "overrides")
	if n := len(overrides.Array()); n != 4 {
		t.Fatalf("expected 4 overrides, got %d", n)
	}
	for i, o := range overrides.Array() {
		if o.Get("predicate.custom_model_data").Int() != int64(i+1) {
			t.Errorf("override %d: %s", i, o.Raw)
		}
	}

	expectedFiles := map[string]string{
		"assets/fancy/lang/en_us.json":         "item\\.fancy\\.sword",
		"assets/fancy/lang/de_de.json":         "item\\.fancy\\.sword",
		"assets/minecraft/lang/en_us.json":     "menu\\.fancy",
		"assets/fancy/textures/item/sword.png": "",
		"assets/fancy/models/item/gem.json":    "",
		"pack.mcmeta":                          "pack.pack_format",
	}
	for file, key := range expectedFiles {
		f, ok := b.Files.Get(file)
		if !ok {
			t.Errorf("%s missing", file)
			continue
		}
		if key != "" && !gjson.GetBytes(f.Data, key).Exists() {
			t.Errorf("%s: %s not set in %s", file, key, f.Data)
		}
	}
	for _, path := range b.Files.Paths() {
		if strings.HasPrefix(path, content.ContentDir+"/") || strings.HasPrefix(path, content.IncludeDir+"/") {
			t.Errorf("unsorted file left: %s", path)
		}
	}
}

func TestPipelineOutput(t *testing.T) {
	dir := swordProject(t)
	b := NewIO(dir, testManifest(), nil)
	if err := New(Options{}).Run(context.Background(), b); err != nil {
		t.Fatal(err)
	}

	zip, err := pack.Open(b.Result.Zip)
	if err != nil {
		t.Fatal(err)
	}
	defer zip.Close()
	meta, err := zip.Meta()
	if err != nil {
		t.Fatal(err)
	}
	if meta.Pack.Description != "fancy swords" || meta.Pack.PackFormat != manifest.DefaultPackFormat {
		t.Errorf("unexpected pack.mcmeta %+v", meta)
	}

	sha, err := os.ReadFile(filepath.Join(dir, "build", "fancy-pack.sha1"))
	if err != nil || string(sha) != b.Result.Sha1 {
		t.Errorf("sha1 file = %s, %v", sha, err)
	}

	descriptor, err := manifest.ReadPack(b.Result.Descriptor)
	if err != nil {
		t.Fatal(err)
	}
	if descriptor.Sha1 != b.Result.Sha1 || descriptor.Name != "fancy-pack" {
		t.Errorf("descriptor = %+v", descriptor)
	}
	if _, ok := descriptor.ItemModel(rpath.MustParse("fancy:item/sword")); !ok {
		t.Error("descriptor lost the item model")
	}
	if descriptor.Mapping.Len() != 4 {
		t.Errorf("descriptor mapping has %d entries", descriptor.Mapping.Len())
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	var sums []string
	for i := 0; i < 2; i++ {
		b := NewIO(swordProject(t), testManifest(), nil)
		if err := New(Options{}).Run(context.Background(), b); err != nil {
			t.Fatal(err)
		}
		sums = append(sums, b.Result.Sha1)
	}
	if sums[0] != sums[1] {
		t.Errorf("builds differ: %v", sums)
	}
}

func TestSlotModel(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"content/fancy/hat/base.mesh.json": meshSource("base"),
		"content/fancy/hat/red.mesh.json":  meshSource("red"),
		"content/fancy/hat/blue.mesh.json": meshSource("blue"),
		"content/fancy/hat/star.mesh.json": meshSource("star"),
		"content/fancy/hat/hat.model.json": `{
			"Type": "SlotItemModel",
			"Mesh": "./base",
			"Target": ["minecraft:leather_helmet", "minecraft:carved_pumpkin"],
			"Slots": {
				"hat": {"red": "./red", "blue": "./blue"},
				"badge": {"star": "./star"}
			}
		}`,
	})
	b := NewIO(dir, testManifest(), nil)
	if err := New(Options{NoPackage: true}).Run(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if b.Result.Zip != "" {
		t.Error("zip written although packaging was skipped")
	}

	mapping := b.Mapping.Build()
	for _, item := range []string{"minecraft:leather_helmet", "minecraft:carved_pumpkin"} {
		// 5 generated meshes plus the base mesh
		if got := len(mapping.Entries(rpath.MustParse(item))); got != 6 {
			t.Errorf("%s: expected 6 meshes, got %d", item, got)
		}
	}

	v, _ := b.Models.Get(rpath.MustParse("fancy:hat/hat"))
	red, err := itemmodel.MeshFor(v, itemmodel.Selection{Slots: map[string]string{"hat": "red"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Files.Get(content.AssetPath(red, "models", ".json")); !ok {
		t.Errorf("mesh for hat:red&badge: missing (%s)", red)
	}
	if _, err := os.Stat(b.Result.Descriptor); err != nil {
		t.Error(err)
	}
}

func TestModelErrorsAreCollected(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"content/fancy/a.model.json": `{"Type": "DefaultItemModel", "Mesh": "./missing", "Target": "minecraft:stick"}`,
		"content/fancy/b.model.json": `{"Type": "FancyItemModel", "Mesh": "./b", "Target": "minecraft:stick"}`,
		"content/fancy/c.mesh.json":  meshSource("c"),
	})
	b := NewIO(dir, testManifest(), nil)
	err := New(Options{}).Run(context.Background(), b)
	if err == nil {
		t.Fatal("expected an error")
	}

	var notFound *mesh.MeshNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected MeshNotFoundError in %v", err)
	}
	var unknown *itemmodel.UnknownVariantTypeError
	if !errors.As(err, &unknown) {
		t.Errorf("expected UnknownVariantTypeError in %v", err)
	}
	var fileErr *FileError
	if !errors.As(err, &fileErr) {
		t.Errorf("expected FileError in %v", err)
	}
}

func TestGeneratedMeshConflict(t *testing.T) {
	model := rpath.MustParse("fancy:item/sword")
	taken := itemmodel.GeneratedPath(model, combination.CombinedKey([]string{"gem"}))
	dir := writeProject(t, map[string]string{
		"content/fancy/item/sword.mesh.json": meshSource("sword"),
		"content/fancy/item/gem.mesh.json":   meshSource("gem"),
		"content/fancy/item/sword.model.json": `{
			"Type": "CombinedItemModel",
			"Mesh": "./sword",
			"Target": "minecraft:diamond_sword",
			"Elements": {"gem": "./gem"}
		}`,
		content.ContentPath(taken, content.MeshExt): meshSource("other"),
	})
	b := NewIO(dir, testManifest(), nil)
	err := New(Options{}).Run(context.Background(), b)

	var conflict *MeshConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected MeshConflictError, got %v", err)
	}
	if conflict.Mesh != taken {
		t.Errorf("conflict on %s, want %s", conflict.Mesh, taken)
	}
}

func TestMissingVanillaModelIsSkipped(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"content/fancy/stick.mesh.json":  meshSource("stick"),
		"content/fancy/stick.model.json": `{"Type": "DefaultItemModel", "Mesh": "./stick", "Target": "minecraft:stick"}`,
	})
	b := NewIO(dir, testManifest(), nil)
	if err := New(Options{NoPackage: true}).Run(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	id, ok := b.Mapping.Lookup(rpath.MustParse("minecraft:stick"), rpath.MustParse("fancy:stick"))
	if !ok || id != 1 {
		t.Errorf("lookup = %d, %v", id, ok)
	}
}

func TestAssetPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"content/fancy/item/sword.png", "assets/fancy/textures/item/sword.png", true},
		{"content/fancy/item/sword.png.mcmeta", "assets/fancy/textures/item/sword.png.mcmeta", true},
		{"content/fancy/swing.ogg", "assets/fancy/sounds/swing.ogg", true},
		{"content/fancy/icons.ttf", "assets/fancy/font/icons.ttf", true},
		{"content/fancy/sounds.json", "assets/fancy/sounds.json", true},
		{"content/fancy/notes.txt", "", false},
		{"content/readme.md", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := assetPath(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("assetPath(%q) = %q, %v", tt.in, got, ok)
			}
		})
	}
}
