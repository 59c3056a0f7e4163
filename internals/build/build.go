/*
Package build turns a pack project into a resource pack.

A build runs a fixed list of tasks over a shared IO. Tasks process every
file they are responsible for and fail at the end if any file failed, so a
single run reports all broken files at once.
*/
package build

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/minepkg/propack/internals/content"
	"github.com/minepkg/propack/pkg/itemmodel"
	"github.com/minepkg/propack/pkg/manifest"
	"github.com/minepkg/propack/pkg/meshmap"
	"github.com/minepkg/propack/pkg/rpath"
)

// FileError is a failure while processing a single file
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Result describes the written build output
type Result struct {
	// Zip is the path of the resource pack zip. Empty when packaging was skipped
	Zip string
	// Sha1 of the zip as hex
	Sha1 string
	// Descriptor is the path of the written .propack file
	Descriptor string
	// Size of the zip in bytes
	Size     int64
	Files    int
	Duration time.Duration
}

// IO is the state shared by all tasks of a build
type IO struct {
	// Dir is the project directory
	Dir      string
	Manifest *manifest.Manifest
	Files    *content.Collection
	Models   *Registry
	Mapping  *meshmap.Builder
	Result   *Result
	Logger   *zap.Logger
}

// NewIO returns the IO for a build of the project in dir
func NewIO(dir string, m *manifest.Manifest, logger *zap.Logger) *IO {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IO{
		Dir:      dir,
		Manifest: m,
		Files:    content.NewCollection(),
		Models:   NewRegistry(),
		Mapping:  meshmap.NewBuilder(m.Build.CustomModelDataStart),
		Result:   &Result{},
		Logger:   logger,
	}
}

// OutputDir returns the absolute build directory
func (b *IO) OutputDir() string {
	return filepath.Join(b.Dir, b.Manifest.Build.OutputDir())
}

// Task is a step of the build
type Task interface {
	Name() string
	Run(ctx context.Context, b *IO) error
}

// Pipeline runs tasks in order
type Pipeline struct {
	Tasks []Task
	// OnTask is called before a task runs
	OnTask func(n int, total int, task Task)
}

// Options select the tasks of a default pipeline
type Options struct {
	// NoPackage skips writing the zip. The descriptor is still written
	NoPackage bool
}

// New returns the default pipeline
func New(opts Options) *Pipeline {
	tasks := []Task{
		&GatherTask{},
		&ModelsTask{},
		&LanguagesTask{},
		&AssetsTask{},
	}
	if !opts.NoPackage {
		tasks = append(tasks, &PackageTask{})
	}
	tasks = append(tasks, &SerializeTask{})
	return &Pipeline{Tasks: tasks}
}

// Run runs all tasks. It stops at the first failing task
func (p *Pipeline) Run(ctx context.Context, b *IO) error {
	start := time.Now()
	for i, task := range p.Tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.OnTask != nil {
			p.OnTask(i+1, len(p.Tasks), task)
		}
		b.Logger.Debug("running task", zap.String("task", task.Name()))
		if err := task.Run(ctx, b); err != nil {
			return errors.Wrapf(err, "task %s", task.Name())
		}
	}
	b.Result.Duration = time.Since(start)
	return nil
}

// Registry holds the item models of a build
type Registry struct {
	mu     sync.Mutex
	models map[rpath.Path]itemmodel.Variant
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{models: map[rpath.Path]itemmodel.Variant{}}
}

// Add registers v. Paths must be unique
func (r *Registry) Add(v itemmodel.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[v.Path()]; ok {
		return fmt.Errorf("item model %s is already registered", v.Path())
	}
	r.models[v.Path()] = v
	return nil
}

// Get returns the model at path
func (r *Registry) Get(path rpath.Path) (itemmodel.Variant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.models[path]
	return v, ok
}

// All returns every model sorted by path
func (r *Registry) All() []itemmodel.Variant {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := maps.Keys(r.models)
	slices.SortFunc(paths, rpath.Compare)
	out := make([]itemmodel.Variant, len(paths))
	for i, p := range paths {
		out[i] = r.models[p]
	}
	return out
}

// Len returns the number of models
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.models)
}
