// Package document reads JSON and YAML files into Go structures through mapstructure.
package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Read parses the file as YAML (.yaml, .yml) or JSON (anything else) into a generic map
func Read(path string) (map[string]any, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %v: %w", path, err)
	}

	var content map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &content)
	default:
		err = json.Unmarshal(bytes, &content)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse %v: %w", path, err)
	}

	return content, nil
}

// Decode reads the file and decodes it into target, which must be a pointer
func Decode(path string, target any) error {
	content, err := Read(path)
	if err != nil {
		return err
	}
	return DecodeMap(content, target)
}

func DecodeMap(content map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(content); err != nil {
		return fmt.Errorf("cannot decode document: %w", err)
	}
	return nil
}
