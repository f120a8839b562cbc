package fixture

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON fixtures
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a JSON array of objects. Numbers are kept as their literal
// text so magnitudes are not rounded through float64.
func (c *JSONCodec) Parse(r io.Reader) ([]Object, error) {
	var objects []Object
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&objects); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	for _, o := range objects {
		for k, v := range o.Fields {
			if n, ok := v.(json.Number); ok {
				o.Fields[k] = n.String()
			}
		}
	}
	if err := validate(objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// Export writes objects as an indented JSON array
func (c *JSONCodec) Export(objects []Object, w io.Writer) error {
	if objects == nil {
		objects = []Object{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(objects); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
