package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/multierr"

	"github.com/minepkg/propack/pkg/manifest"
	"github.com/minepkg/propack/pkg/rpath"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGather(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"include/pack.png": "png",
		"include/assets/minecraft/models/item/stick.json": `{"parent": "item/handheld"}`,
		"content/mypack/item/Sword.mesh.json5":            "{\n// a comment\n\"textures\": {\"a\": \"./b\"},\n}",
		"content/mypack/item/notes.psd":                   "ignored",
		"content/mypack/drafts/old.mesh.json":             "{}",
		"other/unrelated.json":                            "{}",
	})

	files, err := Gather(context.Background(), dir, Options{Ignore: []string{"**/*.psd", "content/*/drafts"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"content/mypack/item/sword.mesh.json",
		"include/assets/minecraft/models/item/stick.json",
		"include/pack.png",
	}
	got := files.Paths()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, got[i], want[i])
		}
	}

	mesh, _ := files.Get("content/mypack/item/sword.mesh.json")
	if !mesh.JSON {
		t.Error("mesh should be marked as json")
	}
	png, _ := files.Get("include/pack.png")
	if png.JSON || string(png.Data) != "png" {
		t.Errorf("raw file changed: %+v", png)
	}
}

func TestGatherInvalidNames(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"content/mypack/item/my sword.mesh.json": "{}",
		"content/mypack/item/ok.mesh.json":       "{}",
	})

	_, err := Gather(context.Background(), dir, Options{Strict: manifest.StrictEnabled})
	var nameErr *InvalidNameError
	if !errors.As(err, &nameErr) {
		t.Fatalf("expected InvalidNameError, got %v", err)
	}

	for _, mode := range []string{manifest.StrictWarn, manifest.StrictDisabled} {
		files, err := Gather(context.Background(), dir, Options{Strict: mode})
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if files.Len() != 1 {
			t.Errorf("%s: got %v", mode, files.Paths())
		}
	}
}

func TestGatherReportsAllInvalidNames(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"content/mypack/A B.png": "",
		"content/mypack/C D.png": "",
	})
	_, err := Gather(context.Background(), dir, Options{})
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("expected 2 errors, got %d: %v", n, err)
	}
}

func TestGatherInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"content/mypack/broken.json": "{"})
	if _, err := Gather(context.Background(), dir, Options{}); err == nil {
		t.Error("expected an error")
	}
}

func TestCollectionMatch(t *testing.T) {
	c := NewCollection()
	c.AddJSON("content/b/x.model.json", []byte("{}"))
	c.AddJSON("content/a/y.model.json", []byte("{}"))
	c.AddJSON("content/a/y.mesh.json", []byte("{}"))
	c.Add(&File{Path: "include/pack.png", Data: []byte("1234")})

	models := c.Match(ContentDir+"/", ModelExt)
	if len(models) != 2 || models[0].Path != "content/a/y.model.json" {
		t.Errorf("Match = %v", models)
	}
	c.Remove("content/a/y.model.json")
	if _, ok := c.Get("content/a/y.model.json"); ok {
		t.Error("file still present after Remove")
	}
	if c.Size() != 8 {
		t.Errorf("Size = %d", c.Size())
	}
}

func TestResourcePath(t *testing.T) {
	tests := []struct {
		in      string
		ext     string
		want    string
		wantErr bool
	}{
		{"content/mypack/item/sword.model.json", ModelExt, "mypack:item/sword", false},
		{"content/mypack/top.mesh.json", MeshExt, "mypack:top", false},
		{"include/mypack/top.mesh.json", MeshExt, "", true},
		{"content/top.mesh.json", MeshExt, "", true},
		{"content/mypack/top.png", MeshExt, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResourcePath(tt.in, tt.ext)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("got %v", got)
			}
		})
	}

	p := rpath.MustParse("mypack:item/sword")
	if got := ContentPath(p, MeshExt); got != "content/mypack/item/sword.mesh.json" {
		t.Errorf("ContentPath = %q", got)
	}
	if got := AssetPath(p, "models", ".json"); got != "assets/mypack/models/item/sword.json" {
		t.Errorf("AssetPath = %q", got)
	}
}
