// Package quantityfield adapts quantity values to numeric database columns.
//
// A Field is declared once per model column with a base unit. Values assigned
// to the column are coerced into quantities (plain numbers are taken to be in
// the base unit), checked for dimensional compatibility and converted to the
// base unit before they reach the database. Values read back come out as
// quantities in the base unit.
package quantityfield

import (
	"fmt"
	"strings"

	"github.com/banshee-data/quantityfield/internal/units"
)

// Kind selects the column type a Field stores its magnitude in.
type Kind int

const (
	Float Kind = iota
	Integer
	BigInteger
	Decimal
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "QuantityField"
	case Integer:
		return "IntegerQuantityField"
	case BigInteger:
		return "BigIntegerQuantityField"
	case Decimal:
		return "DecimalQuantityField"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// magnitudeKind is the quantity representation values of this column use.
func (k Kind) magnitudeKind() units.Kind {
	switch k {
	case Integer, BigInteger:
		return units.Int
	case Decimal:
		return units.Decimal
	default:
		return units.Float
	}
}

// Field describes one quantity-valued column.
type Field struct {
	kind          Kind
	units         units.Unit
	choices       []units.Unit
	registry      *units.Registry
	maxDigits     int
	decimalPlaces int
	null          bool
}

type options struct {
	choices       []string
	registry      *units.Registry
	maxDigits     *int
	decimalPlaces *int
	null          bool
}

// Option configures a Field.
type Option func(*options)

// WithUnitChoices lists the units a value may be entered in. Every choice
// must share the base unit's dimensionality.
func WithUnitChoices(names ...string) Option {
	return func(o *options) { o.choices = append(o.choices, names...) }
}

// WithRegistry resolves units in reg instead of the application registry.
func WithRegistry(reg *units.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithMaxDigits sets the total number of digits of a decimal field.
func WithMaxDigits(n int) Option {
	return func(o *options) { o.maxDigits = &n }
}

// WithDecimalPlaces sets the number of fractional digits of a decimal field.
func WithDecimalPlaces(n int) Option {
	return func(o *options) { o.decimalPlaces = &n }
}

// WithDecimalPrecision is WithMaxDigits and WithDecimalPlaces together.
func WithDecimalPrecision(maxDigits, decimalPlaces int) Option {
	return func(o *options) {
		WithMaxDigits(maxDigits)(o)
		WithDecimalPlaces(decimalPlaces)(o)
	}
}

// WithNull allows the column to hold null.
func WithNull() Option {
	return func(o *options) { o.null = true }
}

// NewField returns a float quantity field.
func NewField(baseUnits string, opts ...Option) (*Field, error) {
	return newField(Float, baseUnits, opts)
}

// NewIntegerField returns a 32-bit integer quantity field.
func NewIntegerField(baseUnits string, opts ...Option) (*Field, error) {
	return newField(Integer, baseUnits, opts)
}

// NewBigIntegerField returns a 64-bit integer quantity field.
func NewBigIntegerField(baseUnits string, opts ...Option) (*Field, error) {
	return newField(BigInteger, baseUnits, opts)
}

// NewDecimalField returns a fixed-point quantity field. Both WithMaxDigits and
// WithDecimalPlaces (or WithDecimalPrecision) are required.
func NewDecimalField(baseUnits string, opts ...Option) (*Field, error) {
	return newField(Decimal, baseUnits, opts)
}

// New builds a field of the given kind.
func New(kind Kind, baseUnits string, opts ...Option) (*Field, error) {
	return newField(kind, baseUnits, opts)
}

// MustNew is like New but panics on error. It is meant for package-level
// model declarations.
func MustNew(kind Kind, baseUnits string, opts ...Option) *Field {
	f, err := newField(kind, baseUnits, opts)
	if err != nil {
		panic(fmt.Sprintf("quantityfield: %s(%q): %v", kind, baseUnits, err))
	}
	return f
}

func newField(kind Kind, baseUnits string, opts []Option) (*Field, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(baseUnits) == "" {
		return nil, ErrBaseUnitsRequired
	}

	reg := o.registry
	if reg == nil {
		reg = units.Default()
	}
	base, err := reg.Parse(baseUnits)
	if err != nil {
		return nil, err
	}

	f := &Field{
		kind:     kind,
		units:    base,
		registry: reg,
		null:     o.null,
		choices:  []units.Unit{base},
	}

	for _, name := range o.choices {
		u, err := reg.Parse(name)
		if err != nil {
			return nil, err
		}
		if !u.IsCompatibleWith(base) {
			return nil, &units.DimensionalityError{
				From:    u.Name(),
				To:      base.Name(),
				FromDim: u.Dimensionality(),
				ToDim:   base.Dimensionality(),
			}
		}
		if !u.Equal(base) {
			f.choices = append(f.choices, u)
		}
	}

	switch {
	case kind == Decimal:
		if o.maxDigits == nil || o.decimalPlaces == nil {
			return nil, fmt.Errorf("%w: expected max_digits and decimal_places to be integers", ErrInvalidInit)
		}
		if *o.maxDigits < 1 || *o.decimalPlaces < 0 || *o.decimalPlaces > *o.maxDigits {
			return nil, fmt.Errorf("%w: max_digits and decimal_places must be positive and max_digits must be larger than decimal_places", ErrInvalidInit)
		}
		f.maxDigits = *o.maxDigits
		f.decimalPlaces = *o.decimalPlaces
	case o.maxDigits != nil || o.decimalPlaces != nil:
		return nil, fmt.Errorf("%w: decimal precision only applies to decimal fields", ErrInvalidInit)
	}

	return f, nil
}

// Kind returns the column kind.
func (f *Field) Kind() Kind { return f.kind }

// Units returns the base unit values are stored in.
func (f *Field) Units() units.Unit { return f.units }

// UnitChoices returns the base unit followed by the other configured choices.
func (f *Field) UnitChoices() []units.Unit {
	return append([]units.Unit(nil), f.choices...)
}

// Registry returns the registry the field resolves units in.
func (f *Field) Registry() *units.Registry { return f.registry }

// Nullable reports whether the column accepts null.
func (f *Field) Nullable() bool { return f.null }

// MaxDigits returns the total digits of a decimal field, zero otherwise.
func (f *Field) MaxDigits() int { return f.maxDigits }

// DecimalPlaces returns the fractional digits of a decimal field, zero otherwise.
func (f *Field) DecimalPlaces() int { return f.decimalPlaces }

// ColumnType returns the SQL column type for the field.
func (f *Field) ColumnType() string {
	var t string
	switch f.kind {
	case Integer:
		t = "INTEGER"
	case BigInteger:
		t = "BIGINT"
	case Decimal:
		t = fmt.Sprintf("DECIMAL(%d, %d)", f.maxDigits, f.decimalPlaces)
	default:
		t = "REAL"
	}
	if !f.null {
		t += " NOT NULL"
	}
	return t
}

func (f *Field) String() string {
	return fmt.Sprintf("%s(%s)", f.kind, f.units.Name())
}
