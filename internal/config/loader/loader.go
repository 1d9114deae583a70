// Package loader reads configuration sources into nested maps.
//
// Each loader returns a map[string]any keyed by section ("editor",
// "logging", ...). Maps from several sources are combined with DeepMerge,
// later sources winning, before being decoded into the typed config.
package loader

import (
	"io"
	"io/fs"
	"os"
)

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is the file access the loaders need. fstest.MapFS satisfies
// it, which keeps tests off the real disk.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// DeepMerge recursively merges src into dst and returns dst.
// Values in src override values in dst; nested maps are merged.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}
