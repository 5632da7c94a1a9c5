package table

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

// ReadJSON decodes a table from JSON. The table is not validated.
func ReadJSON(r io.Reader) (*Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode table JSON")
	}
	return &t, nil
}

// ReadYAML decodes a table from YAML. The table is not validated.
func ReadYAML(r io.Reader) (*Table, error) {
	var t Table
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode table YAML")
	}
	return &t, nil
}

// ReadFile reads a table from path, choosing the decoder by file extension
// (.yaml/.yml for YAML, anything else JSON), and validates it.
func ReadFile(path string, opts ...ValidateOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "table %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var t *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err = ReadYAML(f)
	default:
		t, err = ReadJSON(f)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(t, opts...); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteJSON encodes t as indented JSON.
func WriteJSON(t *Table, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
