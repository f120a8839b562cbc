package quantityfield

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/quantityfield/internal/monitoring"
	"github.com/banshee-data/quantityfield/internal/units"
)

const (
	minInt32 = -1 << 31
	maxInt32 = 1<<31 - 1
)

// Coerce turns an assigned value into a Value. Plain numbers are taken to be
// in the base unit; quantities are kept as assigned and only converted when
// they are prepared for the database.
func (f *Field) Coerce(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case *Value:
		if x == nil {
			return Null(), nil
		}
		return *x, nil
	case units.Quantity:
		return Of(x), nil
	case *units.Quantity:
		if x == nil {
			return Null(), nil
		}
		return Of(*x), nil
	case float64:
		return f.fromFloat(x)
	case float32:
		return f.fromFloat(float64(x))
	case int:
		return f.fromInt(int64(x)), nil
	case int8:
		return f.fromInt(int64(x)), nil
	case int16:
		return f.fromInt(int64(x)), nil
	case int32:
		return f.fromInt(int64(x)), nil
	case int64:
		return f.fromInt(x), nil
	case uint8:
		return f.fromInt(int64(x)), nil
	case uint16:
		return f.fromInt(int64(x)), nil
	case uint32:
		return f.fromInt(int64(x)), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Null(), fmt.Errorf("%w: %d", ErrOutOfRange, x)
		}
		return f.fromInt(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Null(), fmt.Errorf("%w: %d", ErrOutOfRange, x)
		}
		return f.fromInt(int64(x)), nil
	case decimal.Decimal:
		return f.fromDecimal(x, false)
	case decimal.NullDecimal:
		if !x.Valid {
			return Null(), nil
		}
		return f.fromDecimal(x.Decimal, false)
	case string:
		return f.Parse(x)
	default:
		return Null(), fmt.Errorf("%w: %T cannot be assigned to %s", ErrUnsupportedValue, v, f)
	}
}

// fitsInt64 reports whether x is finite and lies in the int64 range.
func fitsInt64(x float64) bool {
	return x >= -(1<<63) && x < 1<<63
}

var (
	minInt64Decimal = decimal.NewFromInt(math.MinInt64)
	maxInt64Decimal = decimal.NewFromInt(math.MaxInt64)
)

func (f *Field) fromFloat(x float64) (Value, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Null(), fmt.Errorf("%w: %v cannot be assigned to %s", ErrOutOfRange, x, f)
	}
	switch f.kind.magnitudeKind() {
	case units.Int:
		r := math.Round(x)
		if !fitsInt64(r) {
			return Null(), fmt.Errorf("%w: %v does not fit %s", ErrOutOfRange, x, f)
		}
		return Of(units.NewInt(int64(r), f.units)), nil
	case units.Decimal:
		return Of(units.NewDecimal(decimal.NewFromFloat(x), f.units)), nil
	default:
		return Of(units.New(x, f.units)), nil
	}
}

func (f *Field) fromInt(x int64) Value {
	switch f.kind.magnitudeKind() {
	case units.Int:
		return Of(units.NewInt(x, f.units))
	case units.Decimal:
		return Of(units.NewDecimal(decimal.NewFromInt(x), f.units))
	default:
		return Of(units.New(float64(x), f.units))
	}
}

// fromDecimal builds a base-unit value; quantize rounds decimal columns to
// their places the way values read from the database are.
func (f *Field) fromDecimal(x decimal.Decimal, quantize bool) (Value, error) {
	switch f.kind.magnitudeKind() {
	case units.Int:
		r := x.Round(0)
		if r.LessThan(minInt64Decimal) || r.GreaterThan(maxInt64Decimal) {
			return Null(), fmt.Errorf("%w: %s does not fit %s", ErrOutOfRange, x, f)
		}
		return Of(units.NewInt(r.IntPart(), f.units)), nil
	case units.Decimal:
		if quantize {
			x = x.Round(int32(f.decimalPlaces))
		}
		return Of(units.NewDecimal(x, f.units)), nil
	default:
		y := x.InexactFloat64()
		if math.IsInf(y, 0) {
			return Null(), fmt.Errorf("%w: %s does not fit %s", ErrOutOfRange, x, f)
		}
		return Of(units.New(y, f.units)), nil
	}
}

// toBase converts q to the field's base unit. A quantity from another
// registry is normalised with a warning rather than rejected.
func (f *Field) toBase(q units.Quantity) (units.Quantity, error) {
	if q.Registry() != f.registry {
		monitoring.Warnf("quantity %s was built with a different unit registry than %s; converting", q, f)
		adopted, err := f.registry.Adopt(q)
		if err != nil {
			return units.Quantity{}, err
		}
		q = adopted
	}
	return q.To(f.units)
}

// Prepare converts a Value into the column's native representation: nil,
// float64, int64, or a fixed-point string for decimal columns.
func (f *Field) Prepare(v Value) (driver.Value, error) {
	q, ok := v.Quantity()
	if !ok {
		if f.null {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", f, ErrNotNullable)
	}

	base, err := f.toBase(q)
	if err != nil {
		return nil, err
	}
	if base.Kind() == units.Float {
		if x := base.Float64(); math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%s in %s: %w", q, f, ErrOutOfRange)
		}
	}

	switch f.kind {
	case Integer, BigInteger:
		return f.prepareInt(q, base)
	case Decimal:
		return f.prepareDecimal(base)
	default:
		return base.Float64(), nil
	}
}

func (f *Field) prepareInt(orig, base units.Quantity) (driver.Value, error) {
	if !base.IsIntegral() {
		return nil, fmt.Errorf("storing %s as %s in %s would cause %w", orig, base, f, ErrLossOfPrecision)
	}

	var n int64
	switch base.Kind() {
	case units.Int:
		n = base.Int64()
	case units.Decimal:
		d := base.Decimal()
		if d.GreaterThan(maxInt64Decimal) || d.LessThan(minInt64Decimal) {
			return nil, fmt.Errorf("%s in %s: %w", base, f, ErrOutOfRange)
		}
		n = d.IntPart()
	default:
		x := base.Float64()
		if !fitsInt64(x) {
			return nil, fmt.Errorf("%s in %s: %w", base, f, ErrOutOfRange)
		}
		n = int64(x)
	}

	if f.kind == Integer && (n < minInt32 || n > maxInt32) {
		return nil, fmt.Errorf("%s in %s: %w", base, f, ErrOutOfRange)
	}
	return n, nil
}

func (f *Field) prepareDecimal(base units.Quantity) (driver.Value, error) {
	d := base.Decimal().Round(int32(f.decimalPlaces))
	whole := d.Abs().Truncate(0)
	wholeDigits := 0
	if !whole.IsZero() {
		wholeDigits = len(whole.String())
	}
	if wholeDigits > f.maxDigits-f.decimalPlaces {
		return nil, fmt.Errorf("%s in %s: %w: at most %d digits before the decimal point",
			base, f, ErrOutOfRange, f.maxDigits-f.decimalPlaces)
	}
	return d.StringFixed(int32(f.decimalPlaces)), nil
}

// FromDB converts a column value read from the database into a Value in the
// base unit.
func (f *Field) FromDB(src any) (Value, error) {
	switch x := src.(type) {
	case nil:
		return Null(), nil
	case int64:
		if f.kind == Decimal {
			return f.fromDecimal(decimal.NewFromInt(x), true)
		}
		return f.fromInt(x), nil
	case float64:
		if f.kind == Decimal && !math.IsNaN(x) && !math.IsInf(x, 0) {
			return f.fromDecimal(decimal.NewFromFloat(x), true)
		}
		return f.fromFloat(x)
	case []byte:
		return f.parseNumber(string(x), true)
	case string:
		return f.parseNumber(x, true)
	default:
		return Null(), fmt.Errorf("%w: cannot read %T into %s", ErrUnsupportedValue, src, f)
	}
}

func (f *Field) parseNumber(s string, quantize bool) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Null(), fmt.Errorf("%w: %q is not a number", ErrUnsupportedValue, s)
	}
	switch f.kind.magnitudeKind() {
	case units.Float:
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Null(), fmt.Errorf("%w: %q is not a number", ErrUnsupportedValue, s)
		}
		return f.fromFloat(x)
	default:
		return f.fromDecimal(d, quantize)
	}
}

// Parse is the inverse of ValueToString. It also accepts a magnitude with a
// unit, such as "10 ounce", resolved in the field's registry. The empty
// string is null.
func (f *Field) Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null(), nil
	}
	v, err := f.parseNumber(s, false)
	if err == nil || errors.Is(err, ErrOutOfRange) {
		return v, err
	}
	q, err := f.registry.ParseQuantity(s)
	if err != nil {
		return Null(), fmt.Errorf("%w: %q: %v", ErrUnsupportedValue, s, err)
	}
	return Of(q), nil
}

// ValueToString renders the stored magnitude in the base unit: "100.0" for
// float columns, "100" for integer columns, "5.00" for decimal columns. Null
// renders as the empty string.
func (f *Field) ValueToString(v Value) (string, error) {
	prepared, err := f.Prepare(v)
	if err != nil {
		return "", err
	}
	switch x := prepared.(type) {
	case nil:
		return "", nil
	case float64:
		return units.New(x, f.units).FormatMagnitude(), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case string:
		return x, nil
	default:
		return fmt.Sprint(x), nil
	}
}

type fieldValuer struct {
	f *Field
	v Value
}

func (x fieldValuer) Value() (driver.Value, error) { return x.f.Prepare(x.v) }

// Valuer binds v to the field so it can be passed straight to database/sql.
func (f *Field) Valuer(v Value) driver.Valuer {
	return fieldValuer{f: f, v: v}
}

type fieldScanner struct {
	f   *Field
	dst *Value
}

func (x fieldScanner) Scan(src any) error {
	v, err := x.f.FromDB(src)
	if err != nil {
		return err
	}
	*x.dst = v
	return nil
}

// Scanner returns an sql.Scanner that decodes a column of this field into dst.
func (f *Field) Scanner(dst *Value) sql.Scanner {
	return fieldScanner{f: f, dst: dst}
}
