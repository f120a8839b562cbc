package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/quantityfield/internal/fixture"
	"github.com/banshee-data/quantityfield/internal/quantityfield"
)

// tables lists every model table in dump order.
var tables = []*table{
	hayBales,
	nullableBales[quantityfield.Float],
	nullableBales[quantityfield.Integer],
	nullableBales[quantityfield.BigInteger],
	nullableBales[quantityfield.Decimal],
	customBales,
	customDecimalBales,
}

func tableForModel(model string) (*table, bool) {
	for _, t := range tables {
		if t.model == model {
			return t, true
		}
	}
	return nil, false
}

// toObject renders r as a fixture object. Quantity fields are written as
// their base-unit magnitude string, null as nil.
func toObject(r record) (fixture.Object, error) {
	t := r.table()
	obj := fixture.Object{Model: t.model, PK: *r.pk(), Fields: make(map[string]any, len(t.columns))}
	for i, p := range r.fields() {
		c := t.columns[i]
		switch x := p.(type) {
		case *quantityfield.Value:
			if x.IsNull() {
				obj.Fields[c.name] = nil
				continue
			}
			s, err := c.field.ValueToString(*x)
			if err != nil {
				return fixture.Object{}, fmt.Errorf("%s.%s: %w", t.model, c.name, err)
			}
			obj.Fields[c.name] = s
		case *decimal.NullDecimal:
			if !x.Valid {
				obj.Fields[c.name] = nil
				continue
			}
			obj.Fields[c.name] = x.Decimal.StringFixed(c.places)
		case *string:
			obj.Fields[c.name] = *x
		}
	}
	return obj, nil
}

// fromObject fills r from obj. Unknown fields fail unless opts says to
// ignore them.
func fromObject(obj fixture.Object, r record, opts fixture.Options) error {
	t := r.table()
	*r.pk() = obj.PK
	for name, v := range obj.Fields {
		if _, ok := t.column(name); !ok {
			if opts.IgnoreNonexistent {
				continue
			}
			return fmt.Errorf("%s has no field %q", t.model, name)
		}
		if err := assign(r, name, v); err != nil {
			return err
		}
	}
	return nil
}

// ObjectFor renders a model as a fixture object. m is a *HayBale,
// *CustomBale or *CustomDecimalBale; nullable bales go through
// NullableBaleObject.
func ObjectFor(m any) (fixture.Object, error) {
	r, ok := m.(record)
	if !ok {
		return fixture.Object{}, fmt.Errorf("%T is not a model", m)
	}
	return toObject(r)
}

// NullableBaleObject renders b as a row of the nullable table of kind.
func NullableBaleObject(kind quantityfield.Kind, b *NullableBale) (fixture.Object, error) {
	t, err := nullableTableFor(kind)
	if err != nil {
		return fixture.Object{}, err
	}
	return toObject(nullableBale{NullableBale: b, t: t})
}

// DecodeObject turns obj back into a model value: a *HayBale, *NullableBale,
// *CustomBale or *CustomDecimalBale.
func DecodeObject(obj fixture.Object, opts fixture.Options) (any, error) {
	t, ok := tableForModel(obj.Model)
	if !ok {
		return nil, fmt.Errorf("unknown model %q", obj.Model)
	}
	var (
		r   record
		out any
	)
	switch t {
	case hayBales:
		b := &HayBale{}
		r, out = b, b
	case customBales:
		b := &CustomBale{}
		r, out = b, b
	case customDecimalBales:
		b := &CustomDecimalBale{}
		r, out = b, b
	default:
		b := &NullableBale{}
		r, out = nullableBale{NullableBale: b, t: t}, b
	}
	if err := fromObject(obj, r, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// Dump returns every row of every model table as fixture objects.
func (s *Store) Dump(ctx context.Context) ([]fixture.Object, error) {
	var objects []fixture.Object
	for _, t := range tables {
		rows, err := s.dumpTable(ctx, t)
		if err != nil {
			return nil, err
		}
		objects = append(objects, rows...)
	}
	return objects, nil
}

func (s *Store) dumpTable(ctx context.Context, t *table) ([]fixture.Object, error) {
	var records []record
	switch t {
	case hayBales:
		bales, err := s.ListHayBales(ctx, Query{})
		if err != nil {
			return nil, err
		}
		for i := range bales {
			records = append(records, &bales[i])
		}
	case customBales:
		bales, err := s.ListCustomBales(ctx, Query{})
		if err != nil {
			return nil, err
		}
		for i := range bales {
			records = append(records, &bales[i])
		}
	case customDecimalBales:
		bales, err := s.ListCustomDecimalBales(ctx, Query{})
		if err != nil {
			return nil, err
		}
		for i := range bales {
			records = append(records, &bales[i])
		}
	default:
		bales, err := list(ctx, s, t, Query{}, bindNullableBale(t))
		if err != nil {
			return nil, err
		}
		for i := range bales {
			records = append(records, nullableBale{NullableBale: &bales[i], t: t})
		}
	}

	objects := make([]fixture.Object, 0, len(records))
	for _, r := range records {
		obj, err := toObject(r)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// Load inserts objects, keeping their primary keys; a row with the same key
// is replaced. Run it inside WithTx to load all or nothing.
func (s *Store) Load(ctx context.Context, objects []fixture.Object, opts fixture.Options) (int, error) {
	for i, obj := range objects {
		t, ok := tableForModel(obj.Model)
		if !ok {
			return i, fmt.Errorf("object %d: unknown model %q", i, obj.Model)
		}
		var r record
		switch t {
		case hayBales:
			r = &HayBale{}
		case customBales:
			r = &CustomBale{}
		case customDecimalBales:
			r = &CustomDecimalBale{}
		default:
			r = nullableBale{NullableBale: &NullableBale{}, t: t}
		}
		if err := fromObject(obj, r, opts); err != nil {
			return i, fmt.Errorf("object %d: %w", i, err)
		}
		if err := s.upsert(ctx, r); err != nil {
			return i, fmt.Errorf("object %d: %w", i, err)
		}
	}
	return len(objects), nil
}

// upsert writes r under its own primary key, or a new one when it is zero.
func (s *Store) upsert(ctx context.Context, r record) error {
	if *r.pk() == 0 {
		return s.insert(ctx, r)
	}
	t := r.table()
	if _, err := s.q.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = ?", *r.pk()); err != nil {
		return fmt.Errorf("failed to replace %s %d: %w", t.model, *r.pk(), err)
	}
	return s.insertWithID(ctx, r)
}

func (s *Store) insertWithID(ctx context.Context, r record) error {
	t := r.table()
	args, err := t.args(r.fields())
	if err != nil {
		return err
	}
	cols := append([]string{"id"}, t.columnNames()...)
	marks := "?"
	for range t.columns {
		marks += ", ?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(cols, ", "), marks)
	if _, err := s.q.ExecContext(ctx, query, append([]any{*r.pk()}, args...)...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	return nil
}
