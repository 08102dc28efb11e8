package app

import (
	"errors"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "op only",
			err:      &OperationError{Op: "open log file"},
			expected: "open log file",
		},
		{
			name:     "op and target",
			err:      &OperationError{Op: "open log file", Target: "/tmp/ghop.log"},
			expected: "open log file /tmp/ghop.log",
		},
		{
			name:     "op, target, and context",
			err:      &OperationError{Op: "open log file", Target: "/tmp/ghop.log", Context: "tui mode"},
			expected: "open log file /tmp/ghop.log (tui mode)",
		},
		{
			name:     "full error chain",
			err:      &OperationError{Op: "open log file", Target: "/tmp/ghop.log", Context: "tui mode", Err: errors.New("io error")},
			expected: "open log file /tmp/ghop.log (tui mode): io error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestOperationError_WithContext(t *testing.T) {
	err := NewOperationError("open log file", "a.log", nil).WithContext("retry")
	if err.Context != "retry" {
		t.Errorf("Context = %q, expected 'retry'", err.Context)
	}

	var nilErr *OperationError
	if nilErr.WithContext("x") != nil {
		t.Error("WithContext on nil should return nil")
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewOperationError("open", "x", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}

	var nilErr *OperationError
	if nilErr.Unwrap() != nil {
		t.Error("Unwrap on nil should return nil")
	}
}

func TestComponentError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ComponentError
		expected string
	}{
		{"nil error", nil, ""},
		{"component only", &ComponentError{Component: "viewer"}, "viewer"},
		{"with action", &ComponentError{Component: "viewer", Action: "run"}, "viewer: run"},
		{"with error", &ComponentError{Component: "viewer", Err: errors.New("boom")}, "viewer: boom"},
		{"full", &ComponentError{Component: "viewer", Action: "open terminal", Err: errors.New("no tty")}, "viewer: open terminal: no tty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestComponentError_Unwrap(t *testing.T) {
	err := NewComponentError("viewer", "run", ErrNotInteractive)

	if !errors.Is(err, ErrNotInteractive) {
		t.Error("errors.Is should find the wrapped error")
	}

	var nilErr *ComponentError
	if nilErr.Unwrap() != nil {
		t.Error("Unwrap on nil should return nil")
	}
}
