package db

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/banshee-data/quantityfield/internal/quantityfield"
)

// Filter restricts a query to rows whose column satisfies the lookup. On
// quantity columns Value may be a quantity in any compatible unit or a plain
// number in the column's base unit.
type Filter struct {
	Column string
	Lookup quantityfield.Lookup
	Value  any
}

// Query selects model rows. OrderBy names columns, a leading "-" sorting
// descending; rows are ordered by id when it is empty. A zero Limit means no
// limit.
type Query struct {
	Filters []Filter
	OrderBy []string
	Limit   int
}

// filterOperators maps the comparison operators ParseFilter understands to
// their lookups, longest first.
var filterOperators = []struct {
	op     string
	lookup quantityfield.Lookup
}{
	{">=", quantityfield.GTE},
	{"<=", quantityfield.LTE},
	{">", quantityfield.GT},
	{"<", quantityfield.LT},
	{"=", quantityfield.Exact},
}

// ParseFilter parses expressions such as "weight>20 gram", "weight_int<=3"
// or "name=grams". Both the double-underscore "weight__gt=20 gram" form and the
// operator form are accepted. The value is kept as a string and resolved by
// the column's field when the query runs.
func ParseFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if m := lookupFilterRE.FindStringSubmatch(expr); m != nil {
		lookup, err := quantityfield.ParseLookup(m[2])
		if err != nil {
			return Filter{}, fmt.Errorf("invalid filter %q: %w", expr, err)
		}
		f, err := newFilter(m[1], lookup, m[3])
		if err != nil {
			return Filter{}, fmt.Errorf("invalid filter %q: %w", expr, err)
		}
		return f, nil
	}

	// The first operator in the expression splits it; the value may contain
	// further operator characters.
	at, match := -1, -1
	for n, o := range filterOperators {
		if i := strings.Index(expr, o.op); i >= 0 && (at < 0 || i < at) {
			at, match = i, n
		}
	}
	if at < 0 {
		return Filter{}, fmt.Errorf("invalid filter %q: expected column, operator and value", expr)
	}
	o := filterOperators[match]
	f, err := newFilter(expr[:at], o.lookup, expr[at+len(o.op):])
	if err != nil {
		return Filter{}, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	return f, nil
}

var lookupFilterRE = regexp.MustCompile(`^(\w+)__(\w+)\s*=(.*)$`)

func newFilter(column string, lookup quantityfield.Lookup, value string) (Filter, error) {
	column = strings.TrimSpace(column)
	value = strings.TrimSpace(value)
	if column == "" {
		return Filter{}, fmt.Errorf("missing column")
	}

	f := Filter{Column: column, Lookup: lookup, Value: value}
	switch lookup {
	case quantityfield.IsNull:
		isNull, err := strconv.ParseBool(value)
		if err != nil {
			return Filter{}, fmt.Errorf("isnull expects true or false, got %q", value)
		}
		f.Value = isNull
	case quantityfield.In, quantityfield.Range:
		parts := strings.Split(value, ",")
		items := make([]any, len(parts))
		for i, p := range parts {
			items[i] = strings.TrimSpace(p)
		}
		f.Value = items
	}
	return f, nil
}

var plainOperators = map[quantityfield.Lookup]string{
	quantityfield.Exact: "=",
	quantityfield.GT:    ">",
	quantityfield.GTE:   ">=",
	quantityfield.LT:    "<",
	quantityfield.LTE:   "<=",
}

func (t *table) where(filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(filters))
	var args []any
	for _, f := range filters {
		if !t.hasColumn(f.Column) {
			return "", nil, fmt.Errorf("%s has no column %q", t.model, f.Column)
		}

		var (
			clause string
			fargs  []any
			err    error
		)
		if field, ok := t.field(f.Column); ok {
			clause, fargs, err = field.Where(f.Column, f.Lookup, f.Value)
		} else {
			clause, fargs, err = plainWhere(f.Column, f.Lookup, f.Value)
		}
		if err != nil {
			return "", nil, fmt.Errorf("filter on %s.%s: %w", t.model, f.Column, err)
		}
		clauses = append(clauses, clause)
		args = append(args, fargs...)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// plainWhere renders a filter on a column that is not a quantity.
func plainWhere(column string, lookup quantityfield.Lookup, v any) (string, []any, error) {
	switch lookup {
	case quantityfield.IsNull:
		isNull, ok := v.(bool)
		if !ok {
			return "", nil, fmt.Errorf("%w: isnull needs a bool, got %T", quantityfield.ErrUnsupportedValue, v)
		}
		if isNull {
			return column + " IS NULL", nil, nil
		}
		return column + " IS NOT NULL", nil, nil
	case quantityfield.In:
		items, ok := v.([]any)
		if !ok {
			return "", nil, fmt.Errorf("%w: in needs a list, got %T", quantityfield.ErrUnsupportedValue, v)
		}
		if len(items) == 0 {
			return "1 = 0", nil, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(items)), ", ")
		return fmt.Sprintf("%s IN (%s)", column, marks), items, nil
	case quantityfield.Range:
		items, ok := v.([]any)
		if !ok || len(items) != 2 {
			return "", nil, fmt.Errorf("%w: range needs two bounds", quantityfield.ErrUnsupportedValue)
		}
		return column + " BETWEEN ? AND ?", items, nil
	}

	op, ok := plainOperators[lookup]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", quantityfield.ErrUnsupportedLookup, lookup)
	}
	if v == nil {
		if lookup == quantityfield.Exact {
			return column + " IS NULL", nil, nil
		}
		return "", nil, fmt.Errorf("%w: %s lookup against null", quantityfield.ErrUnsupportedValue, lookup)
	}
	return fmt.Sprintf("%s %s ?", column, op), []any{v}, nil
}

func (t *table) orderBy(order []string) (string, error) {
	if len(order) == 0 {
		return " ORDER BY id", nil
	}
	terms := make([]string, 0, len(order))
	for _, o := range order {
		name, dir := o, "ASC"
		if strings.HasPrefix(o, "-") {
			name, dir = o[1:], "DESC"
		}
		if !t.hasColumn(name) {
			return "", fmt.Errorf("%s has no column %q to order by", t.model, name)
		}
		terms = append(terms, name+" "+dir)
	}
	// id breaks ties so results are stable
	terms = append(terms, "id")
	return " ORDER BY " + strings.Join(terms, ", "), nil
}

func (t *table) selectSQL(q Query) (string, []any, error) {
	where, args, err := t.where(q.Filters)
	if err != nil {
		return "", nil, err
	}
	order, err := t.orderBy(q.OrderBy)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf("SELECT id, %s FROM %s%s%s",
		strings.Join(t.columnNames(), ", "), t.name, where, order)
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	return query, args, nil
}
