package batch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

func ParseBatchYAML(r io.Reader, opts ...Option) (*Batch, error) {
	yamlBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	jsonBytes, err := yaml.YAMLToJSON(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("yaml.YAMLToJSON: %w", err)
	}

	return ParseBatchJSON(bytes.NewReader(jsonBytes), opts...)
}

func ParseBatchJSON(r io.Reader, opts ...Option) (*Batch, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var def batchDef
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	return def.compile(newOptions(opts))
}

func LoadFile(filePath string, opts ...Option) (*Batch, error) {
	var parseBatch func(io.Reader, ...Option) (*Batch, error)
	switch filepath.Ext(filePath) {
	case ".json":
		parseBatch = ParseBatchJSON
	case ".yaml", ".yml":
		parseBatch = ParseBatchYAML
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	b, err := parseBatch(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("batch.Parse: %w", err)
	}
	return b, nil
}
