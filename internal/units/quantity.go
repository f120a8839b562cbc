package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the representation of a quantity's magnitude.
type Kind int

const (
	Float Kind = iota
	Int
	Decimal
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Decimal:
		return "decimal"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Quantity is a magnitude paired with a unit.
type Quantity struct {
	kind Kind
	f    float64
	i    int64
	d    decimal.Decimal
	unit Unit
}

// New returns a float quantity.
func New(mag float64, u Unit) Quantity {
	return Quantity{kind: Float, f: mag, unit: u}
}

// NewInt returns an integer quantity.
func NewInt(mag int64, u Unit) Quantity {
	return Quantity{kind: Int, i: mag, unit: u}
}

// NewDecimal returns a fixed-point quantity.
func NewDecimal(mag decimal.Decimal, u Unit) Quantity {
	return Quantity{kind: Decimal, d: mag, unit: u}
}

// Kind reports how the magnitude is represented.
func (q Quantity) Kind() Kind { return q.kind }

// Units returns the quantity's unit.
func (q Quantity) Units() Unit { return q.unit }

// Registry returns the registry the quantity's unit belongs to.
func (q Quantity) Registry() *Registry { return q.unit.reg }

// Magnitude returns the magnitude as float64, int64 or decimal.Decimal
// depending on Kind.
func (q Quantity) Magnitude() any {
	switch q.kind {
	case Int:
		return q.i
	case Decimal:
		return q.d
	default:
		return q.f
	}
}

// Float64 returns the magnitude as a float64.
func (q Quantity) Float64() float64 {
	switch q.kind {
	case Int:
		return float64(q.i)
	case Decimal:
		return q.d.InexactFloat64()
	default:
		return q.f
	}
}

// Int64 returns the magnitude truncated towards zero. Magnitudes outside
// the int64 range saturate at its bounds and NaN gives 0.
func (q Quantity) Int64() int64 {
	switch q.kind {
	case Int:
		return q.i
	case Decimal:
		switch {
		case q.d.LessThan(decimal.NewFromInt(math.MinInt64)):
			return math.MinInt64
		case q.d.GreaterThan(decimal.NewFromInt(math.MaxInt64)):
			return math.MaxInt64
		}
		return q.d.IntPart()
	default:
		switch {
		case math.IsNaN(q.f):
			return 0
		case q.f < -(1 << 63):
			return math.MinInt64
		case q.f >= 1<<63:
			return math.MaxInt64
		}
		return int64(q.f)
	}
}

// Decimal returns the magnitude as a decimal.Decimal.
func (q Quantity) Decimal() decimal.Decimal {
	switch q.kind {
	case Int:
		return decimal.NewFromInt(q.i)
	case Decimal:
		return q.d
	default:
		return decimal.NewFromFloat(q.f)
	}
}

// IsIntegral reports whether the magnitude has no fractional part.
func (q Quantity) IsIntegral() bool {
	switch q.kind {
	case Int:
		return true
	case Decimal:
		return q.d.IsInteger()
	default:
		return !math.IsInf(q.f, 0) && !math.IsNaN(q.f) && q.f == math.Trunc(q.f)
	}
}

// To converts q to u. Int quantities become Float unless no arithmetic is
// needed; Decimal quantities stay Decimal.
func (q Quantity) To(u Unit) (Quantity, error) {
	if !q.unit.IsCompatibleWith(u) {
		return Quantity{}, &DimensionalityError{
			From:    q.unit.name,
			To:      u.name,
			FromDim: q.unit.dim,
			ToDim:   u.dim,
		}
	}
	if q.unit.isIdentity(u) {
		q.unit = u
		return q, nil
	}

	if q.kind == Decimal {
		coherent := q.d.Mul(decimal.NewFromFloat(q.unit.scale))
		if q.unit.offset != 0 || u.offset != 0 {
			coherent = coherent.Add(decimal.NewFromFloat(q.unit.offset)).Sub(decimal.NewFromFloat(u.offset))
		}
		if u.scale != 1 {
			coherent = trimDecimal(coherent.Div(decimal.NewFromFloat(u.scale)))
		}
		return NewDecimal(coherent, u), nil
	}

	coherent := q.Float64()*q.unit.scale + q.unit.offset
	return New((coherent-u.offset)/u.scale, u), nil
}

// ToName converts q to the named unit of q's own registry.
func (q Quantity) ToName(name string) (Quantity, error) {
	if q.unit.reg == nil {
		return Quantity{}, &UndefinedUnitError{Name: name}
	}
	u, err := q.unit.reg.Parse(name)
	if err != nil {
		return Quantity{}, err
	}
	return q.To(u)
}

// trimDecimal drops trailing zeros left by division.
func trimDecimal(d decimal.Decimal) decimal.Decimal {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return d
	}
	return out
}

// FormatMagnitude renders the magnitude alone: floats always carry a decimal
// point, integers never do and decimals keep their fractional digits.
func (q Quantity) FormatMagnitude() string {
	switch q.kind {
	case Int:
		return strconv.FormatInt(q.i, 10)
	case Decimal:
		if exp := q.d.Exponent(); exp < 0 {
			return q.d.StringFixed(-exp)
		}
		return q.d.String()
	default:
		s := strconv.FormatFloat(q.f, 'f', -1, 64)
		if math.IsInf(q.f, 0) || math.IsNaN(q.f) || strings.ContainsAny(s, ".e") {
			return s
		}
		return s + ".0"
	}
}

// String renders "<magnitude> <unit name>", e.g. "100.0 gram".
func (q Quantity) String() string {
	return q.FormatMagnitude() + " " + q.unit.name
}
