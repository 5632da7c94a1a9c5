package errors

import (
	"testing"
)

func TestValidateEBDCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "E_0003", false},
		{"valid long", "E_10001", false},

		{"empty", "", true},
		{"missing underscore", "E0003", true},
		{"lowercase", "e_0003", true},
		{"suffix", "E_0003a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEBDCode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEBDCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "E_0003.puml", false},
		{"valid svg", "E_0003.dot.svg", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"with path /", "path/to/file", true},
		{"with path \\", "path\\to\\file", true},
		{"hidden file", ".hidden", true},
		{"parent", "..", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://kroki.io", false},
		{"http://localhost:8000", false},
		{"", true},
		{"ftp://kroki.io", true},
		{"kroki.io", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateLinkTemplate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"?ebd={ebd_code}", false},
		{"https://ebd.example.com/{ebd_code}.svg", false},
		{"https://ebd.example.com/", true},
		{`?ebd={ebd_code}"`, true},
	}

	for _, tt := range tests {
		err := ValidateLinkTemplate(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateLinkTemplate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateLinkTemplate(%q) code = %v, want INVALID_INPUT", tt.input, GetCode(err))
		}
	}
}
