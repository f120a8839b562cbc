package db

import (
	"context"
	"fmt"

	"github.com/banshee-data/quantityfield/internal/quantityfield"
)

func bindHayBale(b *HayBale) record { return b }

// CreateHayBale inserts b and sets its ID.
func (s *Store) CreateHayBale(ctx context.Context, b *HayBale) error {
	return s.insert(ctx, b)
}

// UpdateHayBale writes every column of b back to its row.
func (s *Store) UpdateHayBale(ctx context.Context, b *HayBale) error {
	return s.update(ctx, b)
}

// GetHayBale returns the bale with the given id.
func (s *Store) GetHayBale(ctx context.Context, id int64) (HayBale, error) {
	return one(ctx, s, hayBales, byID(id), bindHayBale)
}

// GetHayBaleByName returns the first bale called name.
func (s *Store) GetHayBaleByName(ctx context.Context, name string) (HayBale, error) {
	q := Query{Filters: []Filter{{Column: "name", Lookup: quantityfield.Exact, Value: name}}}
	return one(ctx, s, hayBales, q, bindHayBale)
}

func (s *Store) ListHayBales(ctx context.Context, q Query) ([]HayBale, error) {
	return list(ctx, s, hayBales, q, bindHayBale)
}

func (s *Store) FirstHayBale(ctx context.Context) (HayBale, error) {
	return one(ctx, s, hayBales, firstQuery, bindHayBale)
}

func (s *Store) LastHayBale(ctx context.Context) (HayBale, error) {
	return one(ctx, s, hayBales, lastQuery, bindHayBale)
}

func (s *Store) CountHayBales(ctx context.Context, q Query) (int, error) {
	return s.count(ctx, hayBales, q)
}

// DeleteHayBales removes the bales matching q and returns how many went.
func (s *Store) DeleteHayBales(ctx context.Context, q Query) (int64, error) {
	return s.delete(ctx, hayBales, q)
}

func nullableTableFor(kind quantityfield.Kind) (*table, error) {
	t, ok := nullableBales[kind]
	if !ok {
		return nil, fmt.Errorf("no nullable bale table for %s", kind)
	}
	return t, nil
}

func bindNullableBale(t *table) func(*NullableBale) record {
	return func(b *NullableBale) record { return nullableBale{NullableBale: b, t: t} }
}

// CreateNullableBale inserts b into the table of the given column kind.
func (s *Store) CreateNullableBale(ctx context.Context, kind quantityfield.Kind, b *NullableBale) error {
	t, err := nullableTableFor(kind)
	if err != nil {
		return err
	}
	return s.insert(ctx, nullableBale{NullableBale: b, t: t})
}

func (s *Store) ListNullableBales(ctx context.Context, kind quantityfield.Kind, q Query) ([]NullableBale, error) {
	t, err := nullableTableFor(kind)
	if err != nil {
		return nil, err
	}
	return list(ctx, s, t, q, bindNullableBale(t))
}

func (s *Store) FirstNullableBale(ctx context.Context, kind quantityfield.Kind) (NullableBale, error) {
	t, err := nullableTableFor(kind)
	if err != nil {
		return NullableBale{}, err
	}
	return one(ctx, s, t, firstQuery, bindNullableBale(t))
}

func (s *Store) LastNullableBale(ctx context.Context, kind quantityfield.Kind) (NullableBale, error) {
	t, err := nullableTableFor(kind)
	if err != nil {
		return NullableBale{}, err
	}
	return one(ctx, s, t, lastQuery, bindNullableBale(t))
}

func (s *Store) DeleteNullableBales(ctx context.Context, kind quantityfield.Kind, q Query) (int64, error) {
	t, err := nullableTableFor(kind)
	if err != nil {
		return 0, err
	}
	return s.delete(ctx, t, q)
}

func bindCustomBale(b *CustomBale) record { return b }

func (s *Store) CreateCustomBale(ctx context.Context, b *CustomBale) error {
	return s.insert(ctx, b)
}

func (s *Store) ListCustomBales(ctx context.Context, q Query) ([]CustomBale, error) {
	return list(ctx, s, customBales, q, bindCustomBale)
}

func (s *Store) FirstCustomBale(ctx context.Context) (CustomBale, error) {
	return one(ctx, s, customBales, firstQuery, bindCustomBale)
}

func (s *Store) LastCustomBale(ctx context.Context) (CustomBale, error) {
	return one(ctx, s, customBales, lastQuery, bindCustomBale)
}

func (s *Store) DeleteCustomBales(ctx context.Context, q Query) (int64, error) {
	return s.delete(ctx, customBales, q)
}

func bindCustomDecimalBale(b *CustomDecimalBale) record { return b }

func (s *Store) CreateCustomDecimalBale(ctx context.Context, b *CustomDecimalBale) error {
	return s.insert(ctx, b)
}

func (s *Store) ListCustomDecimalBales(ctx context.Context, q Query) ([]CustomDecimalBale, error) {
	return list(ctx, s, customDecimalBales, q, bindCustomDecimalBale)
}

func (s *Store) FirstCustomDecimalBale(ctx context.Context) (CustomDecimalBale, error) {
	return one(ctx, s, customDecimalBales, firstQuery, bindCustomDecimalBale)
}

func (s *Store) LastCustomDecimalBale(ctx context.Context) (CustomDecimalBale, error) {
	return one(ctx, s, customDecimalBales, lastQuery, bindCustomDecimalBale)
}

func (s *Store) DeleteCustomDecimalBales(ctx context.Context, q Query) (int64, error) {
	return s.delete(ctx, customDecimalBales, q)
}
