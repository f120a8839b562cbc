// Package units resolves unit names, checks dimensional compatibility and
// converts magnitudes between units of the same dimension.
//
// A Registry owns a set of unit definitions. Units and quantities remember the
// registry they came from so callers can detect values that were built
// against a different set of definitions.
package units

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

type definition struct {
	name    string
	symbol  string
	aliases []string
	scale   float64
	offset  float64
	dim     Dimension
}

type prefix struct {
	name   string
	symbol string
	factor float64
}

// prefixes are tried longest name first so "deca" wins over "deci" lookups
// that share a leading letter.
var prefixes = []prefix{
	{"yotta", "Y", 1e24},
	{"zetta", "Z", 1e21},
	{"exa", "E", 1e18},
	{"peta", "P", 1e15},
	{"tera", "T", 1e12},
	{"giga", "G", 1e9},
	{"mega", "M", 1e6},
	{"kilo", "k", 1e3},
	{"hecto", "h", 1e2},
	{"deca", "da", 1e1},
	{"deci", "d", 1e-1},
	{"centi", "c", 1e-2},
	{"milli", "m", 1e-3},
	{"micro", "µ", 1e-6},
	{"micro", "u", 1e-6},
	{"nano", "n", 1e-9},
	{"pico", "p", 1e-12},
	{"femto", "f", 1e-15},
}

// Registry holds unit definitions. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*definition
	bySym  map[string]*definition
	defs   []*definition
}

// NewEmptyRegistry returns a registry with no definitions.
func NewEmptyRegistry() *Registry {
	return &Registry{
		byName: map[string]*definition{},
		bySym:  map[string]*definition{},
	}
}

// NewRegistry returns a registry loaded with the default definitions.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	if err := r.LoadDefinitions(strings.NewReader(defaultDefinitions)); err != nil {
		panic(fmt.Sprintf("units: loading default definitions: %v", err))
	}
	return r
}

var defaultRegistry atomic.Pointer[Registry]

func init() {
	defaultRegistry.Store(NewRegistry())
}

// Default returns the application registry. Fields built without an explicit
// registry use it.
func Default() *Registry {
	return defaultRegistry.Load()
}

// SetDefault replaces the application registry and returns the previous one.
func SetDefault(r *Registry) *Registry {
	if r == nil {
		r = NewRegistry()
	}
	return defaultRegistry.Swap(r)
}

// Define adds a unit from a single definition line. Accepted forms:
//
//	custom = [custom]
//	kilocustom = 1000 * custom
//	ounce = 28.349523125 gram = oz
//	degree_Celsius = kelvin; offset: 273.15 = degC = celsius
//
// The first trailer after the definition is the symbol ("_" for none); any
// further trailers are aliases.
func (r *Registry) Define(line string) error {
	fields := strings.Split(line, "=")
	if len(fields) < 2 {
		return &DefinitionError{Definition: line, Reason: "expected 'name = definition'"}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	entry := definitionEntry{Name: fields[0]}
	body := fields[1]
	if i := strings.Index(body, ";"); i >= 0 {
		opt := strings.TrimSpace(body[i+1:])
		body = strings.TrimSpace(body[:i])
		if !strings.HasPrefix(opt, "offset:") {
			return &DefinitionError{Definition: line, Reason: fmt.Sprintf("unknown option %q", opt)}
		}
		off, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(opt, "offset:")), 64)
		if err != nil {
			return &DefinitionError{Definition: line, Reason: "offset is not a number"}
		}
		entry.Offset = off
	}
	if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") {
		entry.Dimension = strings.TrimSuffix(strings.TrimPrefix(body, "["), "]")
	} else {
		entry.Definition = body
	}
	if len(fields) > 2 && fields[2] != "_" {
		entry.Symbol = fields[2]
	}
	if len(fields) > 3 {
		entry.Aliases = fields[3:]
	}
	return r.add(entry)
}

func (r *Registry) add(e definitionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(e)
}

// addLocked is add for callers that hold r.mu.
func (r *Registry) addLocked(e definitionEntry) error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return &DefinitionError{Definition: e.String(), Reason: "missing name"}
	}
	if _, exists := r.byName[name]; exists {
		return &DefinitionError{Definition: e.String(), Reason: fmt.Sprintf("'%s' is already defined", name)}
	}

	def := &definition{name: name, symbol: e.Symbol, aliases: e.Aliases, offset: e.Offset}
	switch {
	case e.Dimension != "" && e.Definition != "":
		return &DefinitionError{Definition: e.String(), Reason: "dimension and definition are mutually exclusive"}
	case e.Dimension != "":
		def.scale = 1
		def.dim = Dimension{e.Dimension: 1}
	case e.Definition != "":
		prod, err := r.evaluate(e.Definition)
		if err != nil {
			return &DefinitionError{Definition: e.String(), Reason: err.Error()}
		}
		base, err := compose(prod)
		if err != nil {
			return &DefinitionError{Definition: e.String(), Reason: err.Error()}
		}
		if base.offset != 0 {
			return &DefinitionError{Definition: e.String(), Reason: "cannot derive from an offset unit"}
		}
		def.scale = base.scale
		def.dim = base.dim
	default:
		return &DefinitionError{Definition: e.String(), Reason: "missing dimension or definition"}
	}
	if def.scale == 0 {
		return &DefinitionError{Definition: e.String(), Reason: "scale must not be zero"}
	}

	r.byName[name] = def
	for _, a := range def.aliases {
		r.byName[a] = def
	}
	if def.symbol != "" {
		r.bySym[def.symbol] = def
	}
	r.defs = append(r.defs, def)
	return nil
}

// resolve finds a single unit token. Callers must hold r.mu.
func (r *Registry) resolve(name string) (*definition, error) {
	if def := r.exact(name); def != nil {
		return def, nil
	}
	if def := r.prefixed(name); def != nil {
		return def, nil
	}
	for _, suffix := range []string{"s", "es"} {
		singular := strings.TrimSuffix(name, suffix)
		if singular == name || len(singular) < 2 {
			continue
		}
		if def, ok := r.byName[singular]; ok {
			return def, nil
		}
		if def := r.prefixedName(singular); def != nil {
			return def, nil
		}
	}
	return nil, &UndefinedUnitError{Name: name}
}

func (r *Registry) exact(name string) *definition {
	if def, ok := r.byName[name]; ok {
		return def
	}
	if def, ok := r.bySym[name]; ok {
		return def
	}
	return nil
}

func (r *Registry) prefixed(name string) *definition {
	if def := r.prefixedName(name); def != nil {
		return def
	}
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(name, p.symbol)
		if !ok || rest == "" {
			continue
		}
		if base, ok := r.bySym[rest]; ok && base.offset == 0 {
			return withPrefix(p, base)
		}
	}
	return nil
}

func (r *Registry) prefixedName(name string) *definition {
	for _, p := range prefixes {
		rest, ok := strings.CutPrefix(name, p.name)
		if !ok || rest == "" {
			continue
		}
		if base, ok := r.byName[rest]; ok && base.offset == 0 {
			return withPrefix(p, base)
		}
	}
	return nil
}

func withPrefix(p prefix, base *definition) *definition {
	def := &definition{
		name:  p.name + base.name,
		scale: p.factor * base.scale,
		dim:   base.dim,
	}
	if base.symbol != "" {
		def.symbol = p.symbol + base.symbol
	}
	return def
}

// Parse resolves a unit name, symbol, alias, prefixed or plural form, or a
// compound expression such as "kilogram * meter / second ** 2".
func (r *Registry) Parse(name string) (Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Unit{}, &UndefinedUnitError{Name: name}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, err := r.resolve(name); err == nil {
		return r.unit(def), nil
	}
	prod, err := r.evaluate(name)
	if err != nil {
		if _, ok := err.(*UndefinedUnitError); ok {
			return Unit{}, err
		}
		return Unit{}, &UndefinedUnitError{Name: name}
	}
	if prod.factor != 1 {
		return Unit{}, &UndefinedUnitError{Name: name}
	}
	def, err := compose(prod)
	if err != nil {
		return Unit{}, &UndefinedUnitError{Name: name}
	}
	return r.unit(def), nil
}

// MustParse is like Parse but panics on error.
func (r *Registry) MustParse(name string) Unit {
	u, err := r.Parse(name)
	if err != nil {
		panic(err)
	}
	return u
}

func (r *Registry) unit(def *definition) Unit {
	return Unit{
		name:   def.name,
		symbol: def.symbol,
		scale:  def.scale,
		offset: def.offset,
		dim:    def.dim,
		reg:    r,
	}
}

// Quantity builds a float quantity of mag in the named unit.
func (r *Registry) Quantity(mag float64, unit string) (Quantity, error) {
	u, err := r.Parse(unit)
	if err != nil {
		return Quantity{}, err
	}
	return New(mag, u), nil
}

// MustQuantity is like Quantity but panics on error.
func (r *Registry) MustQuantity(mag float64, unit string) Quantity {
	q, err := r.Quantity(mag, unit)
	if err != nil {
		panic(err)
	}
	return q
}

// ParseQuantity parses "10 ounce", "0.8oz" or "9.81 meter / second ** 2".
// Whole numbers produce Int quantities, anything else Float.
func (r *Registry) ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			end++
			continue
		}
		if (c == 'e' || c == 'E') && end+1 < len(s) && (s[end+1] >= '0' && s[end+1] <= '9' || s[end+1] == '-' || s[end+1] == '+') {
			end += 2
			continue
		}
		break
	}
	numText, unitText := s[:end], strings.TrimSpace(s[end:])
	if numText == "" {
		return Quantity{}, fmt.Errorf("quantity %q has no magnitude", s)
	}
	if unitText == "" {
		return Quantity{}, fmt.Errorf("quantity %q has no unit", s)
	}
	u, err := r.Parse(unitText)
	if err != nil {
		return Quantity{}, err
	}
	if i, err := strconv.ParseInt(numText, 10, 64); err == nil {
		return NewInt(i, u), nil
	}
	f, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("quantity %q: invalid magnitude: %w", s, err)
	}
	return New(f, u), nil
}

// Adopt re-resolves q's unit in r. It is how a quantity built against another
// registry is normalised before use.
func (r *Registry) Adopt(q Quantity) (Quantity, error) {
	if q.unit.reg == r {
		return q, nil
	}
	u, err := r.Parse(q.unit.name)
	if err != nil {
		return Quantity{}, err
	}
	q.unit = u
	return q, nil
}

// Names returns the defined unit names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for _, d := range r.defs {
		names = append(names, d.name)
	}
	sort.Strings(names)
	return names
}
