package content

import (
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// File is a file of the pack while it is being built. Paths always use
// forward slashes and are relative to the pack root ("content/ns/x.png",
// "assets/ns/models/x.json")
type File struct {
	Path string
	Data []byte
	// JSON is set for files whose Data is valid json
	JSON bool
}

// Collection holds the files of a build. It is safe for concurrent use;
// listings are sorted by path so builds are deterministic
type Collection struct {
	mu    sync.RWMutex
	files map[string]*File
}

// NewCollection returns an empty collection
func NewCollection() *Collection {
	return &Collection{files: map[string]*File{}}
}

// Add adds f, replacing a file with the same path
func (c *Collection) Add(f *File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[f.Path] = f
}

// AddJSON adds a json file
func (c *Collection) AddJSON(path string, data []byte) {
	c.Add(&File{Path: path, Data: data, JSON: true})
}

// Get returns the file at path
func (c *Collection) Get(path string) (*File, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.files[path]
	return f, ok
}

// Remove deletes the file at path if it exists
func (c *Collection) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

// Len returns the number of files
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.files)
}

// Paths returns all paths, sorted
func (c *Collection) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := maps.Keys(c.files)
	slices.Sort(paths)
	return paths
}

// Files returns all files sorted by path
func (c *Collection) Files() []*File {
	return c.Match("", "")
}

// Match returns the files whose path has the given prefix and suffix, sorted by path
func (c *Collection) Match(prefix, suffix string) []*File {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []*File{}
	for path, f := range c.files {
		if strings.HasPrefix(path, prefix) && strings.HasSuffix(path, suffix) {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b *File) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// Size returns the summed size of all files in bytes
func (c *Collection) Size() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var size int64
	for _, f := range c.files {
		size += int64(len(f.Data))
	}
	return size
}
