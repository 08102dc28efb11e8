package config

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dshills/ghop/internal/config/loader"
	"github.com/dshills/ghop/internal/integration/process"
)

// setsKey is the optional wrapper key holding all sets.
const setsKey = "sets"

// File is a parsed command-set file.
type File struct {
	// Path is the file the sets were read from.
	Path string

	sets map[string][]process.CommandSpec
}

// Load reads path and returns the commands of the named set.
func Load(path, set string) ([]process.CommandSpec, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Set(set)
}

// ReadFile reads and parses a command-set file from the OS file system.
func ReadFile(path string) (*File, error) {
	return ReadFileFS(loader.DefaultFS(), path)
}

// ReadFileFS reads and parses a command-set file from fsys.
func ReadFileFS(fsys loader.FileSystem, path string) (*File, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Kind: ErrReadConfig, Err: err}
	}

	raw, err := loader.Decode(path, data)
	if err != nil {
		return nil, &FileError{Path: path, Kind: ErrParseConfig, Err: err}
	}

	sets, err := decodeSets(raw)
	if err != nil {
		return nil, &FileError{Path: path, Kind: ErrParseConfig, Err: err}
	}

	return &File{Path: path, sets: sets}, nil
}

// Names returns the defined set names, sorted.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.sets))
	for name := range f.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the file defines the named set.
func (f *File) Has(name string) bool {
	_, ok := f.sets[name]
	return ok
}

// Set returns the commands of the named set.
func (f *File) Set(name string) ([]process.CommandSpec, error) {
	specs, ok := f.sets[name]
	if !ok {
		return nil, &SetError{Path: f.Path, Set: name, Available: f.Names(), Kind: ErrSetNotFound}
	}
	if len(specs) == 0 {
		return nil, &SetError{Path: f.Path, Set: name, Kind: ErrEmptySet}
	}
	return append([]process.CommandSpec(nil), specs...), nil
}

// decodeSets accepts either a flat map of sets or a map under "sets".
func decodeSets(raw map[string]any) (map[string][]process.CommandSpec, error) {
	if wrapped, ok := raw[setsKey].(map[string]any); ok {
		raw = wrapped
	}

	sets := make(map[string][]process.CommandSpec, len(raw))
	for name, val := range raw {
		list, ok := val.([]any)
		if !ok {
			return nil, errors.Errorf("set %q: expected a list of commands, got %s", name, typeName(val))
		}

		specs := make([]process.CommandSpec, 0, len(list))
		for i, item := range list {
			spec, err := decodeEntry(item)
			if err != nil {
				return nil, errors.Wrapf(err, "set %q entry %d", name, i+1)
			}
			specs = append(specs, spec)
		}
		sets[name] = specs
	}
	return sets, nil
}

// decodeEntry converts one list item into a CommandSpec.
func decodeEntry(item any) (process.CommandSpec, error) {
	switch v := item.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return process.CommandSpec{}, errors.New("empty command")
		}
		return process.CommandSpec{Text: v}, nil

	case map[string]any:
		text, ok := v["command"].(string)
		if !ok || strings.TrimSpace(text) == "" {
			return process.CommandSpec{}, errors.New("missing \"command\"")
		}
		spec := process.CommandSpec{Text: text}
		if t, ok := v["timeout"]; ok {
			d, err := parseTimeout(t)
			if err != nil {
				return process.CommandSpec{}, errors.Wrap(err, "timeout")
			}
			spec.Timeout = d
		}
		return spec, nil

	default:
		return process.CommandSpec{}, errors.Errorf("expected a string or an object, got %s", typeName(item))
	}
}

// parseTimeout accepts whole or fractional seconds, or a duration string.
// Zero means no timeout.
func parseTimeout(v any) (time.Duration, error) {
	var secs float64
	switch t := v.(type) {
	case int:
		secs = float64(t)
	case int64:
		secs = float64(t)
	case uint64:
		secs = float64(t)
	case float64:
		secs = t
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			return 0, err
		}
		if d < 0 {
			return 0, errors.Errorf("negative duration %s", t)
		}
		return d, nil
	default:
		return 0, errors.Errorf("expected seconds or a duration, got %s", typeName(v))
	}

	if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, errors.Errorf("invalid seconds %v", v)
	}
	if secs > float64(math.MaxInt64/int64(time.Second)) {
		return 0, errors.Errorf("timeout %v too large", v)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	case int, int64, uint64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
