// Package fixture reads and writes model rows in a neutral object layout:
//
//	{"model": "bales.haybale", "pk": 1, "fields": {"name": "grams", "weight": "100.0"}}
//
// Quantity fields hold their base-unit magnitude as a string, null fields
// hold null.
package fixture

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Object is one serialised model row.
type Object struct {
	Model  string         `json:"model" yaml:"model"`
	PK     int64          `json:"pk" yaml:"pk"`
	Fields map[string]any `json:"fields" yaml:"fields"`
}

// Options controls how objects are loaded back into models.
type Options struct {
	// IgnoreNonexistent drops fields the model does not have instead of
	// failing.
	IgnoreNonexistent bool
}

// Codec encodes and decodes objects in one format.
type Codec interface {
	Parse(r io.Reader) ([]Object, error)
	Export(objects []Object, w io.Writer) error
	Format() string
}

var codecs = map[string]Codec{
	"json": NewJSONCodec(),
	"yaml": NewYAMLCodec(),
}

// Lookup returns the codec for format ("json" or "yaml", "yml" being an alias).
func Lookup(format string) (Codec, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "yml" {
		format = "yaml"
	}
	c, ok := codecs[format]
	if !ok {
		return nil, fmt.Errorf("unknown fixture format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
	return c, nil
}

// Formats lists the registered formats.
func Formats() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serialize encodes objects in format.
func Serialize(format string, objects []Object, w io.Writer) error {
	c, err := Lookup(format)
	if err != nil {
		return err
	}
	return c.Export(objects, w)
}

// Deserialize decodes objects in format.
func Deserialize(format string, r io.Reader) ([]Object, error) {
	c, err := Lookup(format)
	if err != nil {
		return nil, err
	}
	return c.Parse(r)
}

func validate(objects []Object) error {
	for i, o := range objects {
		if o.Model == "" {
			return fmt.Errorf("object %d: missing model", i)
		}
		if o.Fields == nil {
			objects[i].Fields = map[string]any{}
		}
	}
	return nil
}
