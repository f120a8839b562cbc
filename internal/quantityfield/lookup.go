package quantityfield

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/quantityfield/internal/units"
)

// Lookup is a comparison applied to a quantity column in a query filter.
type Lookup string

const (
	Exact  Lookup = "exact"
	GT     Lookup = "gt"
	GTE    Lookup = "gte"
	LT     Lookup = "lt"
	LTE    Lookup = "lte"
	In     Lookup = "in"
	Range  Lookup = "range"
	IsNull Lookup = "isnull"
)

var lookupOperators = map[Lookup]string{
	Exact: "=",
	GT:    ">",
	GTE:   ">=",
	LT:    "<",
	LTE:   "<=",
}

// ParseLookup validates a lookup name such as "gt".
func ParseLookup(name string) (Lookup, error) {
	l := Lookup(strings.ToLower(strings.TrimSpace(name)))
	switch l {
	case Exact, GT, GTE, LT, LTE, In, Range, IsNull:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLookup, name)
}

// PrepareLookup unwraps the right-hand side of a lookup into base-unit
// magnitudes. Quantities are converted to the base unit, plain numbers are
// taken as already in it. In takes a slice, Range a two-element slice and
// IsNull a bool.
func (f *Field) PrepareLookup(op Lookup, v any) (any, error) {
	switch op {
	case Exact, GT, GTE, LT, LTE:
		return f.lookupMagnitude(v)
	case In:
		items, err := toSlice(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			m, err := f.lookupMagnitude(item)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
		return out, nil
	case Range:
		items, err := toSlice(v)
		if err != nil {
			return nil, err
		}
		if len(items) != 2 {
			return nil, fmt.Errorf("%w: range needs two bounds, got %d", ErrUnsupportedValue, len(items))
		}
		lo, err := f.lookupMagnitude(items[0])
		if err != nil {
			return nil, err
		}
		hi, err := f.lookupMagnitude(items[1])
		if err != nil {
			return nil, err
		}
		return []any{lo, hi}, nil
	case IsNull:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: isnull needs a bool, got %T", ErrUnsupportedValue, v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLookup, op)
	}
}

// lookupMagnitude returns nil for null, a plain number unchanged, or a
// quantity's base-unit magnitude as a float64 (int64 for integral values of
// integer columns).
func (f *Field) lookupMagnitude(v any) (any, error) {
	if n, ok := plainNumber(v); ok {
		if x, isFloat := n.(float64); isFloat && (math.IsNaN(x) || math.IsInf(x, 0)) {
			return nil, fmt.Errorf("%w: %v cannot be compared with %s", ErrOutOfRange, x, f)
		}
		return n, nil
	}
	val, err := f.Coerce(v)
	if err != nil {
		return nil, err
	}
	q, ok := val.Quantity()
	if !ok {
		return nil, nil
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
	if (f.kind == Integer || f.kind == BigInteger) && base.IsIntegral() && fitsInt64(base.Float64()) {
		return base.Int64(), nil
	}
	return base.Float64(), nil
}

// plainNumber normalises bare numbers without rounding them to the column.
func plainNumber(v any) (any, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case decimal.Decimal:
		return x.InexactFloat64(), true
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return fl, true
		}
	}
	return nil, false
}

func toSlice(v any) ([]any, error) {
	if items, ok := v.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrUnsupportedValue, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Where renders a SQL condition for column with its bind arguments.
func (f *Field) Where(column string, op Lookup, v any) (string, []any, error) {
	if !identifierRE.MatchString(column) {
		return "", nil, fmt.Errorf("invalid column name %q", column)
	}
	prepared, err := f.PrepareLookup(op, v)
	if err != nil {
		return "", nil, err
	}

	switch op {
	case In:
		items := prepared.([]any)
		if len(items) == 0 {
			return "1 = 0", nil, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(items)), ", ")
		return fmt.Sprintf("%s IN (%s)", column, marks), items, nil
	case Range:
		bounds := prepared.([]any)
		return fmt.Sprintf("%s BETWEEN ? AND ?", column), bounds, nil
	case IsNull:
		if prepared.(bool) {
			return column + " IS NULL", nil, nil
		}
		return column + " IS NOT NULL", nil, nil
	default:
		if prepared == nil {
			if op == Exact {
				return column + " IS NULL", nil, nil
			}
			return "", nil, fmt.Errorf("%w: %s lookup against null", ErrUnsupportedValue, op)
		}
		return fmt.Sprintf("%s %s ?", column, lookupOperators[op]), []any{prepared}, nil
	}
}
