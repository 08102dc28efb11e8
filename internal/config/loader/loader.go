// Package loader decodes command-set files and environment variables into
// generic configuration maps.
//
// Decoders are selected by file extension. Every decoder returns a
// map[string]any whose values are strings, numbers, booleans, []any and
// nested map[string]any, regardless of the source format.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format identifies a configuration file format.
type Format int

const (
	// FormatUnknown is returned for unrecognized extensions.
	FormatUnknown Format = iota
	// FormatYAML is YAML (.yml, .yaml).
	FormatYAML
	// FormatTOML is TOML (.toml).
	FormatTOML
	// FormatJSON is JSON (.json).
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat is returned for files whose extension has no decoder.
var ErrUnknownFormat = errors.New("unknown config format")

// FormatFor returns the format implied by path's extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Decoder turns raw file contents into a configuration map.
type Decoder interface {
	// Decode parses data. source names the input in errors.
	Decode(source string, data []byte) (map[string]any, error)
}

// DecoderFor returns the decoder for a format, or nil for FormatUnknown.
func DecoderFor(f Format) Decoder {
	switch f {
	case FormatYAML:
		return YAMLDecoder{}
	case FormatTOML:
		return TOMLDecoder{}
	case FormatJSON:
		return JSONDecoder{}
	default:
		return nil
	}
}

// Decode parses data using the decoder selected by path's extension.
// Unknown extensions are decoded as YAML, the historical default.
func Decode(path string, data []byte) (map[string]any, error) {
	dec := DecoderFor(FormatFor(path))
	if dec == nil {
		dec = YAMLDecoder{}
	}
	return dec.Decode(path, data)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// LoadFile reads and decodes path from fsys.
// Read failures are returned as-is; decode failures are *ParseError.
func LoadFile(fsys FileSystem, path string) (map[string]any, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
