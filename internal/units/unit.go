package units

// Unit is a unit of measure resolved from a Registry.
//
// scale and offset relate the unit to the coherent unit of its dimension:
// coherent = value*scale + offset.
type Unit struct {
	name   string
	symbol string
	scale  float64
	offset float64
	dim    Dimension
	reg    *Registry
}

// Name returns the canonical name, e.g. "kilogram" or "meter / second".
func (u Unit) Name() string { return u.name }

// Symbol returns the short symbol, which may be empty for compound units.
func (u Unit) Symbol() string { return u.symbol }

// Dimensionality returns the physical dimension the unit measures.
func (u Unit) Dimensionality() Dimension { return u.dim }

// Registry returns the registry the unit was resolved from.
func (u Unit) Registry() *Registry { return u.reg }

// IsZero reports whether u is the zero Unit.
func (u Unit) IsZero() bool { return u.reg == nil && u.name == "" }

// IsCompatibleWith reports whether values in u can be converted to o.
func (u Unit) IsCompatibleWith(o Unit) bool {
	return u.dim.Equal(o.dim)
}

// Equal reports whether u and o are the same unit. Units from different
// registries are equal when they share a name and definition.
func (u Unit) Equal(o Unit) bool {
	return u.name == o.name && u.scale == o.scale && u.offset == o.offset && u.dim.Equal(o.dim)
}

func (u Unit) String() string { return u.name }

// isIdentity reports whether converting from u to o needs no arithmetic.
func (u Unit) isIdentity(o Unit) bool {
	return u.scale == o.scale && u.offset == o.offset
}
