package loader

import (
	"testing"
	"time"
)

func withEnviron(l *EnvLoader, env ...string) *EnvLoader {
	l.environ = func() []string { return env }
	return l
}

func TestEnvLoader_Load(t *testing.T) {
	loader := withEnviron(NewEnvLoader("GHOP_"),
		"GHOP_LOG_LEVEL=debug",
		"GHOP_SHELL=bash -c",
		"GHOP_BUFFER=64",
		"HOME=/home/test",
	)

	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := Lookup(config, "log.level"); !ok || val != "debug" {
		t.Errorf("log.level = %v, want 'debug'", val)
	}
	if val, ok := Lookup(config, "shell"); !ok || val != "bash -c" {
		t.Errorf("shell = %v, want 'bash -c'", val)
	}
	if val, ok := Lookup(config, "buffer"); !ok || val != int64(64) {
		t.Errorf("buffer = %v (%T), want 64", val, val)
	}
	if _, ok := config["home"]; ok {
		t.Error("unprefixed variables must be ignored")
	}
}

func TestEnvLoader_LoadUnmapped(t *testing.T) {
	loader := withEnviron(NewEnvLoader("GHOP_"), "GHOP_RUN_MAX_LINES=500")

	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if val, ok := Lookup(config, "run.maxLines"); !ok || val != int64(500) {
		t.Errorf("run.maxLines = %v, want 500", val)
	}
}

func TestEnvLoader_EmptyValue(t *testing.T) {
	loader := withEnviron(NewEnvLoader("GHOP_"), "GHOP_LOG_FILE=")

	config, _ := loader.Load()
	if val, ok := Lookup(config, "log.file"); !ok || val != "" {
		t.Errorf("log.file = %v (present %v), want empty string", val, ok)
	}
}

func TestEnvLoader_envToPath(t *testing.T) {
	loader := NewEnvLoader("GHOP_")

	tests := []struct {
		env      string
		expected string
	}{
		{"GHOP_LOG_LEVEL", "log.level"},
		{"GHOP_SIMPLE", "simple"},
		{"GHOP_RUN_MAX_LINES", "run.maxLines"},
		{"GHOP_DEEP__PATH", "deep.path"},
	}

	for _, tt := range tests {
		got := loader.envToPath(tt.env)
		if got != tt.expected {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.expected)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected any
	}{
		{"true", true},
		{"YES", true},
		{"off", false},
		{"1", int64(1)},
		{"0", int64(0)},
		{"42", int64(42)},
		{"-10", int64(-10)},
		{"3.14", 3.14},
		{"500ms", 500 * time.Millisecond},
		{"5m", 5 * time.Minute},
		{"hello", "hello"},
		{"bash -c", "bash -c"},
		{"", ""},
	}

	for _, tt := range tests {
		got := parseValue(tt.input)
		if got != tt.expected {
			t.Errorf("parseValue(%q) = %v (%T), want %v (%T)", tt.input, got, got, tt.expected, tt.expected)
		}
	}
}

func TestParseValue_JSON(t *testing.T) {
	arr, ok := parseValue(`["a","b","c"]`).([]any)
	if !ok || len(arr) != 3 {
		t.Errorf("expected 3-element slice, got %v", arr)
	}

	obj, ok := parseValue(`{"key":"value"}`).(map[string]any)
	if !ok || obj["key"] != "value" {
		t.Errorf("expected map with key, got %v", obj)
	}

	if s := parseValue(`[broken`); s != "[broken" {
		t.Errorf("invalid JSON should stay a string, got %v", s)
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	loader := withEnviron(NewEnvLoaderWithMapping("GHOP_", nil), "CUSTOM_VAR=custom_value")
	loader.AddMapping("CUSTOM_VAR", "custom.path")

	config, _ := loader.Load()

	if val, ok := Lookup(config, "custom.path"); !ok || val != "custom_value" {
		t.Errorf("custom.path = %v, want 'custom_value'", val)
	}
}

func TestLookup(t *testing.T) {
	data := map[string]any{
		"log": map[string]any{"level": "info"},
		"top": 1,
	}

	if v, ok := Lookup(data, "log.level"); !ok || v != "info" {
		t.Errorf("Lookup(log.level) = %v, %v", v, ok)
	}
	if _, ok := Lookup(data, "top.child"); ok {
		t.Error("Lookup through a scalar should fail")
	}
	if _, ok := Lookup(data, "missing"); ok {
		t.Error("Lookup of a missing key should fail")
	}
}
