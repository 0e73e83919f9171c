package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads a configuration file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// The result starts from DefaultConfig, so omitted fields keep their
// defaults. The document is checked against the configuration schema and
// then validated semantically.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses configuration data.
//
// The format is determined by the file extension in path, or defaults to YAML
// if the path is empty or has an unknown extension.
func ParseConfig(data []byte, path string) (*Config, error) {
	doc, err := decodeDocument(data, path)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// decodeDocument decodes data into the generic JSON value model used for
// schema validation. YAML documents are normalized through JSON so that
// numbers and maps have the same shape as in a JSON document.
func decodeDocument(data []byte, path string) (interface{}, error) {
	var doc interface{}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		if ext == ".yaml" || ext == ".yml" || ext == "" {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
		return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
	}
	if doc == nil {
		return map[string]interface{}{}, nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("config is not representable as JSON: %w", err)
	}
	var normalized interface{}
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("config is not representable as JSON: %w", err)
	}
	return normalized, nil
}
