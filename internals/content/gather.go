/*
Package content gathers the source files of a pack project.

Everything below "include/" and "content/" is read into a Collection.
File names are lower-cased and checked against the resource path rules,
json files may contain comments and trailing commas and are normalized
to plain json while reading.
*/
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/minepkg/propack/internals/workqueue"
	"github.com/minepkg/propack/pkg/manifest"
	"github.com/minepkg/propack/pkg/rpath"
)

// Options configure Gather
type Options struct {
	// Strict is one of the manifest.Strict* modes
	Strict string
	// Ignore holds doublestar patterns matched against the slash separated
	// path relative to the project directory
	Ignore []string
	Logger *zap.Logger
}

// InvalidNameError is returned in strict mode for names outside [a-z0-9._-]
type InvalidNameError struct {
	Path string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("%s: non [a-z0-9._-] character in file name", e.Path)
}

// Gather reads the include and content directories of the project at dir
func Gather(ctx context.Context, dir string, opts Options) (*Collection, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	files := NewCollection()
	queue := workqueue.New()
	var errs error

	for _, root := range []string{IncludeDir, ContentDir} {
		rootDir := filepath.Join(dir, root)
		if _, err := os.Stat(rootDir); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == rootDir {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if ignored(opts.Ignore, rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			name := strings.ToLower(d.Name())
			if !rpath.IsValidNamespace(name) {
				switch opts.Strict {
				case manifest.StrictWarn:
					log.Warn("skipping file with invalid name", zap.String("path", rel))
				case manifest.StrictDisabled:
				default:
					errs = multierr.Append(errs, &InvalidNameError{Path: rel})
				}
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			target := strings.ToLower(rel)
			queue.Add(workqueue.JobFunc(func(ctx context.Context) error {
				f, err := readFile(path, target)
				if err != nil {
					return err
				}
				files.Add(f)
				return nil
			}))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if errs != nil {
		return nil, errs
	}

	if err := queue.Start(ctx); err != nil {
		return nil, err
	}
	log.Debug("gathered sources", zap.Int("files", files.Len()))
	return files, nil
}

func ignored(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// readFile reads a file and normalizes json variants to ".json"
func readFile(path string, target string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := filepath.Ext(target)
	switch ext {
	case ".json", ".json5", ".jsonc":
		normalized := jsonc.ToJSON(data)
		if !json.Valid(normalized) {
			return nil, fmt.Errorf("%s: invalid json", target)
		}
		return &File{Path: strings.TrimSuffix(target, ext) + ".json", Data: normalized, JSON: true}, nil
	default:
		return &File{Path: target, Data: data}, nil
	}
}
