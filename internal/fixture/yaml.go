package fixture

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML fixtures
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse reads a YAML sequence of objects. An empty document is no objects.
func (c *YAMLCodec) Parse(r io.Reader) ([]Object, error) {
	var objects []Object
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&objects); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validate(objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// Export writes objects as a YAML sequence
func (c *YAMLCodec) Export(objects []Object, w io.Writer) error {
	if objects == nil {
		objects = []Object{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(objects); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
