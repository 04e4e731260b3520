package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "document not found: %s", "a.json")

	if err.Code != ErrCodeNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNotFound)
	}

	if err.Message != "document not found: a.json" {
		t.Errorf("Message = %v, want %v", err.Message, "document not found: a.json")
	}

	expected := "NOT_FOUND: document not found: a.json"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeIOFailure, cause, "write failed")

	if err.Code != ErrCodeIOFailure {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeIOFailure)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestAtPosition(t *testing.T) {
	err := New(ErrCodeMalformed, "invalid JSON").At(Position{Line: 3, Column: 7})

	if !strings.Contains(err.Error(), "line 3, column 7") {
		t.Errorf("Error() = %q, want position", err.Error())
	}

	pos, ok := GetPosition(err)
	if !ok {
		t.Fatal("GetPosition() ok = false")
	}
	if pos.Line != 3 || pos.Column != 7 {
		t.Errorf("GetPosition() = %+v", pos)
	}

	if _, ok := GetPosition(errors.New("plain")); ok {
		t.Error("GetPosition() on plain error should report false")
	}
}

func TestPositionAt(t *testing.T) {
	data := []byte("{\n  \"a\": x\n}")

	tests := []struct {
		name   string
		offset int64
		line   int
		column int
	}{
		{"start", 0, 1, 1},
		{"first line end", 1, 1, 2},
		{"second line", 9, 2, 8},
		{"third line", 11, 3, 1},
		{"clamped", 1000, 3, 2},
		{"negative", -5, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := PositionAt(data, tt.offset)
			if pos.Line != tt.line || pos.Column != tt.column {
				t.Errorf("PositionAt(%d) = %d:%d, want %d:%d", tt.offset, pos.Line, pos.Column, tt.line, tt.column)
			}
		})
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeLocked, "test"),
			code:     ErrCodeLocked,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeLocked, "test"),
			code:     ErrCodeIOFailure,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeIOFailure, New(ErrCodeNotFound, "inner"), "outer"),
			code:     ErrCodeIOFailure,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeIntegrityViolation, "test"),
			expected: ErrCodeIntegrityViolation,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "with position",
			err:      New(ErrCodeMalformed, "bad json").At(Position{Line: 1, Column: 2}),
			expected: "bad json (line 1, column 2)",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
