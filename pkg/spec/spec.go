package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a planning request from a JSON or YAML file, chosen by extension.
func Load(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var req Request
		if err := yaml.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("parsing request YAML: %w", err)
		}
		return &req, nil
	default:
		return Decode(bytes.NewReader(data))
	}
}

// Decode parses a JSON planning request. Trailing data after the object is
// rejected.
func Decode(r io.Reader) (*Request, error) {
	dec := json.NewDecoder(r)
	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("parsing request JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parsing request JSON: unexpected data after request object")
	}
	return &req, nil
}
