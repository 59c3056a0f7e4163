package runtime

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/Tnze/go-mc/nbt"
	"go.uber.org/zap"

	"github.com/minepkg/propack/pkg/combination"
	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/rpath"
)

// ItemModelNamespace is used for item model ids handed to newer clients
const ItemModelNamespace = "propack"

// itemModelComponent is the first version that selects models by id instead of custom model data
var itemModelComponent = semver.MustParse("1.21.4")

var (
	// ErrNoResources is returned while no resources are loaded
	ErrNoResources = errors.New("no resources loaded")
	// ErrNoCustomModel is returned for item stacks without a custom model
	ErrNoCustomModel = errors.New("item has no custom model")
)

// UnknownModelError is returned for item models that are not part of the pack
type UnknownModelError struct {
	Model rpath.Path
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown item model %s", e.Model)
}

// NotMappedError is returned when a mesh has no id on an item
type NotMappedError struct {
	Item rpath.Path
	Mesh rpath.Path
}

func (e *NotMappedError) Error() string {
	return fmt.Sprintf("mesh %s is not mapped for %s", e.Mesh, e.Item)
}

// Options configure a Resolver
type Options struct {
	Logger *zap.Logger
	// Debug logs every failed lookup
	Debug bool
	// ServerVersion is the Minecraft version of the server. Empty means
	// custom model data only
	ServerVersion string
}

// Resolver maps item stack state to custom model data
type Resolver struct {
	store        *Store
	log          *zap.Logger
	debug        bool
	itemModelIDs bool
}

// NewResolver returns a resolver reading from store
func NewResolver(store *Store, opts Options) (*Resolver, error) {
	r := &Resolver{store: store, log: opts.Logger, debug: opts.Debug}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if opts.ServerVersion != "" {
		v, err := semver.NewVersion(opts.ServerVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid server version %q: %w", opts.ServerVersion, err)
		}
		r.itemModelIDs = !v.LessThan(itemModelComponent)
	}
	return r, nil
}

// Result is a successful lookup
type Result struct {
	Model           itemmodel.Variant
	Mesh            rpath.Path
	CustomModelData int
}

// Lookup resolves the mesh and id for item showing model with sel
func (r *Resolver) Lookup(item rpath.Path, model rpath.Path, sel itemmodel.Selection) (*Result, error) {
	res := r.store.Load()
	if res == nil {
		return nil, ErrNoResources
	}
	v, ok := res.Model(model)
	if !ok {
		return nil, &UnknownModelError{Model: model}
	}
	meshPath, err := itemmodel.MeshFor(v, sel)
	if err != nil {
		return nil, err
	}
	id, ok := res.Mapping().Lookup(item, meshPath)
	if !ok {
		return nil, &NotMappedError{Item: item, Mesh: meshPath}
	}
	return &Result{Model: v, Mesh: meshPath, CustomModelData: id}, nil
}

// Resolve returns the custom model data for an item stack. Every failure
// yields false so the item is sent unchanged
func (r *Resolver) Resolve(item string, customModel string, sel itemmodel.Selection) (int, bool) {
	result, err := r.resolve(item, customModel, sel)
	if err != nil {
		r.fail(item, customModel, err)
		return 0, false
	}
	return result.CustomModelData, true
}

func (r *Resolver) resolve(item string, customModel string, sel itemmodel.Selection) (*Result, error) {
	if customModel == "" {
		return nil, ErrNoCustomModel
	}
	itemPath, err := rpath.Parse(item)
	if err != nil {
		return nil, err
	}
	modelPath, err := rpath.Parse(customModel)
	if err != nil {
		return nil, err
	}
	return r.Lookup(itemPath, modelPath, sel)
}

// fail logs err. Items without a model or mapping are normal traffic and only
// logged in debug mode, anything else points at a broken pack or item
func (r *Resolver) fail(item string, customModel string, err error) {
	fields := []zap.Field{
		zap.String("item", item),
		zap.String("model", customModel),
		zap.Error(err),
	}
	if !isExpectedMiss(err) {
		r.log.Warn("failed to remap item", fields...)
		return
	}
	if r.debug {
		r.log.Debug("not remapping item", fields...)
	}
}

func isExpectedMiss(err error) bool {
	var unknown *UnknownModelError
	var notMapped *NotMappedError
	return errors.Is(err, ErrNoCustomModel) ||
		errors.Is(err, ErrNoResources) ||
		errors.As(err, &unknown) ||
		errors.As(err, &notMapped)
}

// CustomData is the custom data compound of an item stack
type CustomData struct {
	CustomModel       string            `nbt:"CustomModel"`
	CombinedItemModel []string          `nbt:"CombinedItemModel"`
	SlotItemModel     map[string]string `nbt:"SlotItemModel"`
}

// Selection returns the selection stored in the compound
func (d *CustomData) Selection() itemmodel.Selection {
	return itemmodel.Selection{
		Elements: d.CombinedItemModel,
		Slots:    combination.Selection(d.SlotItemModel),
	}
}

// DecodeCustomData decodes a binary nbt custom data compound
func DecodeCustomData(data []byte) (*CustomData, error) {
	d := &CustomData{}
	if err := nbt.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ResolveTag resolves an item stack from its binary nbt custom data
func (r *Resolver) ResolveTag(item string, data []byte) (int, bool) {
	d, err := DecodeCustomData(data)
	if err != nil {
		r.fail(item, "", err)
		return 0, false
	}
	return r.Resolve(item, d.CustomModel, d.Selection())
}

// Patch is the change to apply to an outgoing item stack
type Patch struct {
	CustomModelData int
	// ItemModel is set for servers that select models by id
	ItemModel rpath.Path
}

// Patch returns the change for an item stack or false to leave it as it is
func (r *Resolver) Patch(item string, customModel string, sel itemmodel.Selection) (Patch, bool) {
	id, ok := r.Resolve(item, customModel, sel)
	if !ok {
		return Patch{}, false
	}
	p := Patch{CustomModelData: id}
	if r.itemModelIDs {
		itemPath, _ := rpath.Parse(item)
		p.ItemModel = ItemModelPath(itemPath, id)
	}
	return p, true
}

// ItemModelPath returns "propack:<item>.<hex id>"
func ItemModelPath(item rpath.Path, id int) rpath.Path {
	return rpath.MustNew(ItemModelNamespace, fmt.Sprintf("%s.%x", item.Value(), id))
}
