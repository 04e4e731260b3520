package errors

import (
	"strings"
	"testing"
)

func TestValidateDocumentPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "board.circuit.json", false},
		{"absolute", "/tmp/work/board.circuit.json", false},
		{"nested", "designs/v2/board.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"directory", "designs/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateSuffix(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"backup", ".backup", false},
		{"lock", ".lock", false},
		{"plain", "~", false},

		{"empty", "", true},
		{"slash", "/x", true},
		{"backslash", "\\x", true},
		{"traversal", "..x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSuffix(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSuffix(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("json", "json", "cbor"); err != nil {
		t.Errorf("ValidateFormat(json) = %v", err)
	}
	err := ValidateFormat("xml", "json", "cbor")
	if err == nil {
		t.Fatal("ValidateFormat(xml) should fail")
	}
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
}
