package build

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/minepkg/propack/internals/content"
	"github.com/minepkg/propack/pkg/rpath"
)

const (
	// LangJSONExt marks json language sources
	LangJSONExt = ".lang.json"
	// LangExt marks key=value language sources
	LangExt = ".lang"
)

// LanguagesTask merges the language sources of every namespace into
// assets/<ns>/lang/<code>.json and adds the global translations of the
// manifest to the configured languages
type LanguagesTask struct{}

func (t *LanguagesTask) Name() string { return "languages" }

func (t *LanguagesTask) Run(ctx context.Context, b *IO) error {
	outputs := map[string]map[string]string{}
	var errs error

	for _, ext := range []string{LangJSONExt, LangExt} {
		for _, f := range b.Files.Match(content.ContentDir+"/", ext) {
			p, err := content.ResourcePath(f.Path, ext)
			if err != nil || p.Dir() != "lang" {
				continue
			}
			b.Files.Remove(f.Path)

			entries, err := parseLanguage(f.Data, ext)
			if err != nil {
				b.Logger.Error("could not read language file", zap.String("file", f.Path), zap.Error(err))
				errs = multierr.Append(errs, &FileError{Path: f.Path, Err: err})
				continue
			}
			target := languageFile(p.Namespace(), p.Base())
			merge(outputs, target, substituteNamespace(entries, p.Namespace()))
		}
	}
	if errs != nil {
		return errs
	}

	if translations := b.Manifest.Build.Translations; len(translations) != 0 {
		for _, code := range b.Manifest.Build.Languages {
			merge(outputs, languageFile(rpath.DefaultNamespace, strings.ToLower(code)), translations)
		}
	}

	targets := maps.Keys(outputs)
	slices.Sort(targets)
	for _, target := range targets {
		entries := outputs[target]
		// files from include/ are kept, generated keys win
		if included, ok := b.Files.Get(content.IncludeDir + "/" + target); ok {
			existing := map[string]string{}
			if err := json.Unmarshal(included.Data, &existing); err != nil {
				return &FileError{Path: included.Path, Err: err}
			}
			for k, v := range entries {
				existing[k] = v
			}
			entries = existing
			b.Files.Remove(included.Path)
		}
		raw, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		b.Files.AddJSON(target, raw)
	}
	return nil
}

// languageFile returns "assets/<ns>/lang/<code>.json"
func languageFile(namespace, code string) string {
	return content.AssetsDir + "/" + namespace + "/lang/" + code + ".json"
}

func parseLanguage(data []byte, ext string) (map[string]string, error) {
	switch ext {
	case LangJSONExt:
		entries := map[string]string{}
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, errors.Wrap(err, "language files must be an object of strings")
		}
		return entries, nil
	default:
		loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
		props, err := loader.LoadBytes(data)
		if err != nil {
			return nil, err
		}
		return props.Map(), nil
	}
}

func substituteNamespace(entries map[string]string, namespace string) map[string]string {
	out := make(map[string]string, len(entries))
	for k, v := range entries {
		k = strings.ReplaceAll(k, rpath.NamespacePlaceholder, namespace)
		out[k] = strings.ReplaceAll(v, rpath.NamespacePlaceholder, namespace)
	}
	return out
}

func merge(outputs map[string]map[string]string, target string, entries map[string]string) {
	existing, ok := outputs[target]
	if !ok {
		existing = map[string]string{}
		outputs[target] = existing
	}
	for k, v := range entries {
		existing[k] = v
	}
}
