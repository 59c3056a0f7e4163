package runtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/manifest"
	"github.com/minepkg/propack/pkg/meshmap"
	"github.com/minepkg/propack/pkg/rpath"
)

var (
	stick  = rpath.MustParse("minecraft:stick")
	sword  = rpath.MustParse("fancy:item/sword")
	hat    = rpath.MustParse("fancy:item/hat")
	helmet = rpath.MustParse("minecraft:leather_helmet")
)

func testResources(t *testing.T) *Resources {
	t.Helper()
	combined, err := itemmodel.NewCombined(sword, []rpath.Path{stick}, rpath.MustParse("fancy:item/sword_base"), []string{"gem", "hilt"})
	if err != nil {
		t.Fatal(err)
	}
	slotted, err := itemmodel.NewSlotted(hat, []rpath.Path{helmet}, rpath.MustParse("fancy:item/hat_base"), []combination.Slot{
		{Name: "hat", Entries: []string{"red", "blue"}},
		{Name: "badge", Entries: []string{"star"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	b := meshmap.NewBuilder(1)
	b.Register(stick, combined.Mesh())
	gem, _ := combined.MeshFor("gem")
	both, _ := combined.MeshFor("hilt", "gem")
	b.Register(stick, gem)
	b.Register(stick, both)
	red, _ := slotted.MeshFor(combination.Selection{"hat": "red"})
	b.Register(helmet, red)

	return NewResources(manifest.NewPack("fancy", "abc", []itemmodel.Variant{combined, slotted}, b.Build()))
}

func TestResolve(t *testing.T) {
	r, err := NewResolver(NewStore(testResources(t)), Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		item  string
		model string
		sel   itemmodel.Selection
		want  int
		ok    bool
	}{
		{"base mesh", "minecraft:stick", "fancy:item/sword", itemmodel.Selection{}, 1, true},
		{"single element", "stick", "fancy:item/sword", itemmodel.Selection{Elements: []string{"gem"}}, 2, true},
		{"element order", "stick", "fancy:item/sword", itemmodel.Selection{Elements: []string{"hilt", "gem"}}, 3, true},
		{"not mapped", "stick", "fancy:item/sword", itemmodel.Selection{Elements: []string{"hilt"}}, 0, false},
		{"unknown element", "stick", "fancy:item/sword", itemmodel.Selection{Elements: []string{"wing"}}, 0, false},
		{"other item", "minecraft:apple", "fancy:item/sword", itemmodel.Selection{}, 0, false},
		{"slot", "leather_helmet", "fancy:item/hat", itemmodel.Selection{Slots: combination.Selection{"hat": "red"}}, 1, true},
		{"unknown slot", "leather_helmet", "fancy:item/hat", itemmodel.Selection{Slots: combination.Selection{"cape": "red"}}, 0, false},
		{"unknown model", "stick", "fancy:item/axe", itemmodel.Selection{}, 0, false},
		{"no model", "stick", "", itemmodel.Selection{}, 0, false},
		{"invalid item", "Stick!", "fancy:item/sword", itemmodel.Selection{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.item, tt.model, tt.sel)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Resolve() = %d, %v, want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	r, _ := NewResolver(NewStore(nil), Options{})
	if _, err := r.Lookup(stick, sword, itemmodel.Selection{}); !errors.Is(err, ErrNoResources) {
		t.Errorf("expected ErrNoResources, got %v", err)
	}

	r.store.Swap(testResources(t))
	_, err := r.Lookup(helmet, hat, itemmodel.Selection{Slots: combination.Selection{"cape": "red"}})
	var slotErr *itemmodel.UnknownSlotError
	if !errors.As(err, &slotErr) {
		t.Errorf("expected UnknownSlotError, got %v", err)
	}
	_, err = r.Lookup(stick, sword, itemmodel.Selection{Elements: []string{"hilt"}})
	var notMapped *NotMappedError
	if !errors.As(err, &notMapped) {
		t.Errorf("expected NotMappedError, got %v", err)
	}
}

func TestDebugLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	quiet, _ := NewResolver(NewStore(testResources(t)), Options{Logger: zap.New(core)})
	quiet.Resolve("stick", "fancy:item/axe", itemmodel.Selection{})
	if logs.Len() != 0 {
		t.Errorf("expected no logs without debug, got %d", logs.Len())
	}

	loud, _ := NewResolver(NewStore(testResources(t)), Options{Logger: zap.New(core), Debug: true})
	loud.Resolve("stick", "fancy:item/axe", itemmodel.Selection{})
	if logs.Len() != 1 {
		t.Errorf("expected one log entry, got %d", logs.Len())
	}
}

func TestUnexpectedFailuresAreAlwaysLogged(t *testing.T) {
	tests := []struct {
		name  string
		item  string
		model string
		sel   itemmodel.Selection
	}{
		{"unknown element", "stick", "fancy:item/sword", itemmodel.Selection{Elements: []string{"wing"}}},
		{"unknown slot", "leather_helmet", "fancy:item/hat", itemmodel.Selection{Slots: combination.Selection{"cape": "red"}}},
		{"unknown slot entry", "leather_helmet", "fancy:item/hat", itemmodel.Selection{Slots: combination.Selection{"hat": "green"}}},
		{"invalid model path", "stick", "Fancy:Sword", itemmodel.Selection{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			r, _ := NewResolver(NewStore(testResources(t)), Options{Logger: zap.New(core)})
			if _, ok := r.Resolve(tt.item, tt.model, tt.sel); ok {
				t.Fatal("expected resolve to fail")
			}
			warnings := logs.FilterLevelExact(zap.WarnLevel)
			if warnings.Len() != 1 {
				t.Errorf("expected one warning, got %d log entries", logs.Len())
			}
		})
	}
}

func TestBrokenTagIsLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r, _ := NewResolver(NewStore(testResources(t)), Options{Logger: zap.New(core)})
	if _, ok := r.ResolveTag("stick", []byte{0xff, 0x00}); ok {
		t.Fatal("expected broken nbt to fail")
	}
	if logs.FilterLevelExact(zap.WarnLevel).Len() != 1 {
		t.Errorf("expected a warning for broken nbt, got %d entries", logs.Len())
	}
}

func TestResolveTag(t *testing.T) {
	r, _ := NewResolver(NewStore(testResources(t)), Options{})

	combined, err := nbt.Marshal(struct {
		CustomModel       string   `nbt:"CustomModel"`
		CombinedItemModel []string `nbt:"CombinedItemModel"`
	}{"fancy:item/sword", []string{"hilt", "gem"}})
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := r.ResolveTag("minecraft:stick", combined); !ok || id != 3 {
		t.Errorf("combined tag = %d, %v", id, ok)
	}

	slotted, err := nbt.Marshal(struct {
		CustomModel   string            `nbt:"CustomModel"`
		SlotItemModel map[string]string `nbt:"SlotItemModel"`
	}{"fancy:item/hat", map[string]string{"hat": "red"}})
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := r.ResolveTag("minecraft:leather_helmet", slotted); !ok || id != 1 {
		t.Errorf("slotted tag = %d, %v", id, ok)
	}

	if _, ok := r.ResolveTag("minecraft:stick", []byte{0xff, 0x00}); ok {
		t.Error("garbage must not resolve")
	}
}

func TestPatch(t *testing.T) {
	tests := []struct {
		version   string
		itemModel string
	}{
		{"", ""},
		{"1.20.4", ""},
		{"1.21.4", "propack:stick.3"},
		{"1.21.5", "propack:stick.3"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			r, err := NewResolver(NewStore(testResources(t)), Options{ServerVersion: tt.version})
			if err != nil {
				t.Fatal(err)
			}
			p, ok := r.Patch("minecraft:stick", "fancy:item/sword", itemmodel.Selection{Elements: []string{"gem", "hilt"}})
			if !ok || p.CustomModelData != 3 {
				t.Fatalf("Patch() = %+v, %v", p, ok)
			}
			got := ""
			if !p.ItemModel.IsZero() {
				got = p.ItemModel.String()
			}
			if got != tt.itemModel {
				t.Errorf("item model = %q, want %q", got, tt.itemModel)
			}
		})
	}

	if _, err := NewResolver(NewStore(nil), Options{ServerVersion: "latest"}); err == nil {
		t.Error("expected invalid version error")
	}
}

func TestItemModelPath(t *testing.T) {
	if got := ItemModelPath(stick, 26).String(); got != "propack:stick.1a" {
		t.Errorf("got %s", got)
	}
}

func TestStoreSwapIsVisibleToReaders(t *testing.T) {
	store := NewStore(testResources(t))
	r, _ := NewResolver(store, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Resolve("stick", "fancy:item/sword", itemmodel.Selection{})
			}
		}()
	}
	old := store.Swap(NewResources(manifest.NewPack("empty", "", nil, nil)))
	wg.Wait()

	if old == nil || old.Name() != "fancy" {
		t.Errorf("Swap returned %v", old)
	}
	if _, ok := r.Resolve("stick", "fancy:item/sword", itemmodel.Selection{}); ok {
		t.Error("resolved against replaced resources")
	}
}
