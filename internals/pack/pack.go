// Package pack writes and reads resource pack zip files
package pack

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mholt/archiver/v3"
)

// ModTime is set on every zip entry so equal inputs produce equal zips
var ModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry is a file that goes into the zip
type Entry struct {
	Name string
	Data []byte
}

// Options for Write
type Options struct {
	// CompressionLevel as accepted by compress/flate. 0 uses the default
	CompressionLevel int
}

// memInfo is the os.FileInfo of an in-memory file
type memInfo struct {
	name string
	size int64
}

func (m memInfo) Name() string       { return m.name }
func (m memInfo) Size() int64        { return m.size }
func (m memInfo) Mode() os.FileMode  { return 0644 }
func (m memInfo) ModTime() time.Time { return ModTime }
func (m memInfo) IsDir() bool        { return false }
func (m memInfo) Sys() interface{}   { return nil }

// Write writes entries as zip to w in the given order
func Write(w io.Writer, entries []Entry, opts Options) error {
	z := archiver.NewZip()
	z.CompressionLevel = flate.DefaultCompression
	if opts.CompressionLevel > 0 {
		z.CompressionLevel = opts.CompressionLevel
	}
	if err := z.Create(w); err != nil {
		return err
	}
	for _, e := range entries {
		info := memInfo{name: e.Name, size: int64(len(e.Data))}
		err := z.Write(archiver.File{
			FileInfo:   archiver.FileInfo{FileInfo: info, CustomName: e.Name},
			ReadCloser: io.NopCloser(bytes.NewReader(e.Data)),
		})
		if err != nil {
			z.Close()
			return fmt.Errorf("%s: %w", e.Name, err)
		}
	}
	return z.Close()
}

// WriteFile writes the zip to path and returns its sha1 as hex
func WriteFile(path string, entries []Entry, opts Options) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha1.New()
	if err := Write(io.MultiWriter(f, hasher), entries, opts); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Meta is the content of pack.mcmeta
type Meta struct {
	Pack struct {
		PackFormat  int    `json:"pack_format"`
		Description string `json:"description"`
	} `json:"pack"`
}

// NewMeta returns a pack.mcmeta payload
func NewMeta(format int, description string) *Meta {
	m := &Meta{}
	m.Pack.PackFormat = format
	m.Pack.Description = description
	return m
}

// Reader for a built resource pack zip
type Reader struct {
	zipReader *zip.Reader
}

// NewReader returns a Reader from a `io.ReaderAt`
func NewReader(reader io.ReaderAt, size int64) (*Reader, error) {
	zipReader, err := zip.NewReader(reader, size)
	if err != nil {
		return nil, err
	}
	return &Reader{zipReader}, nil
}

// Files returns all contained files of the underlying zip file
func (p *Reader) Files() []*zip.File {
	return p.zipReader.File
}

// ReadFile returns the content of the file called name
func (p *Reader) ReadFile(name string) ([]byte, error) {
	for _, file := range p.Files() {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, os.ErrNotExist
}

// Meta returns the parsed pack.mcmeta
func (p *Reader) Meta() (*Meta, error) {
	raw, err := p.ReadFile("pack.mcmeta")
	if err != nil {
		return nil, err
	}
	meta := &Meta{}
	if err := json.Unmarshal(raw, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// PackageFile is a local resource pack zip
type PackageFile struct {
	*os.File
	*Reader
}

// Open will open the zip file specified by name and return a PackageFile.
func Open(filePath string) (*PackageFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	fStats, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	reader, err := NewReader(file, fStats.Size())
	if err != nil {
		file.Close()
		return nil, err
	}
	return &PackageFile{file, reader}, nil
}
