package units

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"

	"gopkg.in/yaml.v3"
)

// default_units.yaml holds the definitions every NewRegistry starts with.
//
//go:embed default_units.yaml
var defaultDefinitions string

// definitionEntry is one unit in a YAML definitions document.
type definitionEntry struct {
	Name       string   `yaml:"name"`
	Symbol     string   `yaml:"symbol,omitempty"`
	Aliases    []string `yaml:"aliases,omitempty"`
	Dimension  string   `yaml:"dimension,omitempty"`
	Definition string   `yaml:"definition,omitempty"`
	Offset     float64  `yaml:"offset,omitempty"`
}

func (e definitionEntry) String() string {
	if e.Dimension != "" {
		return fmt.Sprintf("%s = [%s]", e.Name, e.Dimension)
	}
	return fmt.Sprintf("%s = %s", e.Name, e.Definition)
}

type definitionsFile struct {
	Units []definitionEntry `yaml:"units"`
}

// LoadDefinitions reads a YAML document of the form
//
//	units:
//	  - name: custom
//	    dimension: custom
//	  - name: kilocustom
//	    definition: 1000 * custom
//
// and adds every entry in order, so later entries may refer to earlier ones.
// If any entry fails none of the document's units are defined.
func (r *Registry) LoadDefinitions(rd io.Reader) error {
	var doc definitionsFile
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse unit definitions: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	byName, bySym, n := maps.Clone(r.byName), maps.Clone(r.bySym), len(r.defs)
	for _, e := range doc.Units {
		if err := r.addLocked(e); err != nil {
			r.byName, r.bySym, r.defs = byName, bySym, r.defs[:n]
			return err
		}
	}
	return nil
}
