package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/quantityfield/internal/quantityfield"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// column is one stored column of a model table besides the id. Quantity
// columns carry their field; plain decimal columns carry their places.
type column struct {
	name   string
	field  *quantityfield.Field
	places int32
}

type table struct {
	name    string
	model   string
	columns []column
}

// record is a model bound to its table. fields returns pointers in column
// order: *string, *quantityfield.Value or *decimal.NullDecimal.
type record interface {
	table() *table
	pk() *int64
	fields() []any
}

func (t *table) column(name string) (column, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

func (t *table) field(name string) (*quantityfield.Field, bool) {
	c, ok := t.column(name)
	if !ok || c.field == nil {
		return nil, false
	}
	return c.field, true
}

func (t *table) hasColumn(name string) bool {
	if name == "id" {
		return true
	}
	_, ok := t.column(name)
	return ok
}

func (t *table) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// args prepares a record's values for the driver. Quantity values go
// through their field so conversion and precision errors surface here,
// before the statement runs.
func (t *table) args(ptrs []any) ([]any, error) {
	args := make([]any, len(t.columns))
	for i, c := range t.columns {
		switch p := ptrs[i].(type) {
		case *quantityfield.Value:
			v, err := c.field.Prepare(*p)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.name, c.name, err)
			}
			args[i] = v
		case *decimal.NullDecimal:
			if p.Valid {
				args[i] = p.Decimal.Round(c.places).StringFixed(c.places)
			}
		case *string:
			args[i] = *p
		default:
			return nil, fmt.Errorf("%s.%s: unsupported field %T", t.name, c.name, p)
		}
	}
	return args, nil
}

// assign coerces v into the named column of r.
func assign(r record, column string, v any) error {
	t := r.table()
	ptrs := r.fields()
	for i, c := range t.columns {
		if c.name != column {
			continue
		}
		switch p := ptrs[i].(type) {
		case *quantityfield.Value:
			val, err := c.field.Coerce(v)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", t.model, column, err)
			}
			*p = val
		case *decimal.NullDecimal:
			d, err := toNullDecimal(v)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", t.model, column, err)
			}
			*p = d
		case *string:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s.%s: expected a string, got %T", t.model, column, v)
			}
			*p = s
		}
		return nil
	}
	return fmt.Errorf("%s has no column %q", t.model, column)
}

func toNullDecimal(v any) (decimal.NullDecimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.NullDecimal{}, nil
	case decimal.Decimal:
		return decimal.NewNullDecimal(x), nil
	case decimal.NullDecimal:
		return x, nil
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(x)), nil
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(x))), nil
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(x)), nil
	case string:
		if x == "" {
			return decimal.NullDecimal{}, nil
		}
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		return decimal.NewNullDecimal(d), nil
	default:
		return decimal.NullDecimal{}, fmt.Errorf("%w: %T is not a decimal", quantityfield.ErrUnsupportedValue, v)
	}
}

// decimalColumn scans a plain decimal column, quantized to its places.
type decimalColumn struct {
	dst    *decimal.NullDecimal
	places int32
}

func (d decimalColumn) Scan(src any) error {
	if err := d.dst.Scan(src); err != nil {
		return err
	}
	if d.dst.Valid {
		d.dst.Decimal = d.dst.Decimal.Round(d.places)
	}
	return nil
}

func (t *table) scanDest(r record) []any {
	ptrs := r.fields()
	dest := make([]any, 0, len(ptrs)+1)
	dest = append(dest, r.pk())
	for i, p := range ptrs {
		switch x := p.(type) {
		case *quantityfield.Value:
			dest = append(dest, t.columns[i].field.Scanner(x))
		case *decimal.NullDecimal:
			dest = append(dest, decimalColumn{dst: x, places: t.columns[i].places})
		default:
			dest = append(dest, p)
		}
	}
	return dest
}

func (s *Store) insert(ctx context.Context, r record) error {
	t := r.table()
	args, err := t.args(r.fields())
	if err != nil {
		return err
	}

	marks := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columnNames(), ", "), marks)
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read %s id: %w", t.name, err)
	}
	*r.pk() = id
	return nil
}

func (s *Store) update(ctx context.Context, r record) error {
	t := r.table()
	args, err := t.args(r.fields())
	if err != nil {
		return err
	}

	sets := make([]string, len(t.columns))
	for i, name := range t.columnNames() {
		sets[i] = name + " = ?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, strings.Join(sets, ", "))
	res, err := s.q.ExecContext(ctx, query, append(args, *r.pk())...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", t.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %d: %w", t.model, *r.pk(), ErrNotFound)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, t *table, q Query) (int64, error) {
	where, args, err := t.where(q.Filters)
	if err != nil {
		return 0, err
	}
	res, err := s.q.ExecContext(ctx, "DELETE FROM "+t.name+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	return res.RowsAffected()
}

func (s *Store) count(ctx context.Context, t *table, q Query) (int, error) {
	where, args, err := t.where(q.Filters)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.name+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.name, err)
	}
	return n, nil
}

// list runs q against t, binding each row to a fresh T through bind.
func list[T any](ctx context.Context, s *Store, t *table, q Query, bind func(*T) record) ([]T, error) {
	query, args, err := t.selectSQL(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var item T
		if err := rows.Scan(t.scanDest(bind(&item))...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// one returns the single row of q with its limit forced to 1.
func one[T any](ctx context.Context, s *Store, t *table, q Query, bind func(*T) record) (T, error) {
	q.Limit = 1
	items, err := list(ctx, s, t, q, bind)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(items) == 0 {
		var zero T
		return zero, fmt.Errorf("%s: %w", t.model, ErrNotFound)
	}
	return items[0], nil
}

func byID(id int64) Query {
	return Query{Filters: []Filter{{Column: "id", Lookup: quantityfield.Exact, Value: id}}}
}

var (
	firstQuery = Query{OrderBy: []string{"id"}}
	lastQuery  = Query{OrderBy: []string{"-id"}}
)
