package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dshills/ghop/internal/config/loader"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "GHOP_"

// Overrides holds settings taken from GHOP_ environment variables.
// Zero values mean "not set".
type Overrides struct {
	LogLevel   string   // GHOP_LOG_LEVEL
	LogFile    string   // GHOP_LOG_FILE
	Shell      []string // GHOP_SHELL, split on whitespace
	File       string   // GHOP_CONFIG
	BufferSize int      // GHOP_BUFFER
}

// LoadOverrides reads the process environment.
func LoadOverrides() (Overrides, error) {
	return overridesFrom(loader.NewEnvLoader(EnvPrefix))
}

func overridesFrom(l *loader.EnvLoader) (Overrides, error) {
	var o Overrides

	env, err := l.Load()
	if err != nil {
		return o, err
	}

	o.LogLevel = stringValue(env, "log.level")
	o.LogFile = stringValue(env, "log.file")
	o.File = stringValue(env, "config")
	if shell := stringValue(env, "shell"); shell != "" {
		o.Shell = strings.Fields(shell)
	}

	if v, ok := loader.Lookup(env, "buffer"); ok && v != "" {
		n, isInt := v.(int64)
		if !isInt || n <= 0 {
			return o, fmt.Errorf("%w: %sBUFFER=%v: expected a positive integer", ErrInvalidOverride, EnvPrefix, v)
		}
		o.BufferSize = int(n)
	}

	return o, nil
}

// stringValue returns the raw text of an override. Values the env loader
// converted to other types are formatted back.
func stringValue(env map[string]any, path string) string {
	v, ok := loader.Lookup(env, path)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case time.Duration:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
