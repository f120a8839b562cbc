package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/quantityfield/internal/quantityfield"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		expr string
		want Filter
	}{
		{"weight>20 gram", Filter{Column: "weight", Lookup: quantityfield.GT, Value: "20 gram"}},
		{"weight >= 0.8 ounce", Filter{Column: "weight", Lookup: quantityfield.GTE, Value: "0.8 ounce"}},
		{"weight_int<=3", Filter{Column: "weight_int", Lookup: quantityfield.LTE, Value: "3"}},
		{"weight<1", Filter{Column: "weight", Lookup: quantityfield.LT, Value: "1"}},
		{"name=grams", Filter{Column: "name", Lookup: quantityfield.Exact, Value: "grams"}},
		{"weight__gt=2", Filter{Column: "weight", Lookup: quantityfield.GT, Value: "2"}},
		{"weight_int__isnull=true", Filter{Column: "weight_int", Lookup: quantityfield.IsNull, Value: true}},
		{"weight__in=1, 1 kilogram", Filter{Column: "weight", Lookup: quantityfield.In, Value: []any{"1", "1 kilogram"}}},
		{"weight__range=10,20", Filter{Column: "weight", Lookup: quantityfield.Range, Value: []any{"10", "20"}}},
		{"weight__isnull=0", Filter{Column: "weight", Lookup: quantityfield.IsNull, Value: false}},
		{"name=hay__bale", Filter{Column: "name", Lookup: quantityfield.Exact, Value: "hay__bale"}},
		{"name=a>b", Filter{Column: "name", Lookup: quantityfield.Exact, Value: "a>b"}},
		{"name=a<=b", Filter{Column: "name", Lookup: quantityfield.Exact, Value: "a<=b"}},
		{"weight>=1=2", Filter{Column: "weight", Lookup: quantityfield.GTE, Value: "1=2"}},
		{"weight_int__gt=a__b", Filter{Column: "weight_int", Lookup: quantityfield.GT, Value: "a__b"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{
		"weight", ">3", "weight__gt", "weight__contains=3", "",
		"weight__isnull=yes", "weight__isnull=",
	} {
		_, err := ParseFilter(bad)
		assert.Error(t, err, bad)
	}
}

func TestSelectSQL(t *testing.T) {
	query, args, err := hayBales.selectSQL(Query{
		Filters: []Filter{
			{Column: "weight", Lookup: quantityfield.GT, Value: 2},
			{Column: "name", Lookup: quantityfield.In, Value: []any{"a", "b"}},
		},
		OrderBy: []string{"-weight_int", "name"},
		Limit:   5,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, name, weight, weight_int, weight_bigint, weight_decimal FROM hay_bales"+
			" WHERE weight > ? AND name IN (?, ?) ORDER BY weight_int DESC, name ASC, id LIMIT 5",
		query)
	assert.Equal(t, []any{int64(2), "a", "b"}, args)

	query, args, err = hayBales.selectSQL(Query{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, weight, weight_int, weight_bigint, weight_decimal FROM hay_bales ORDER BY id", query)
	assert.Empty(t, args)
}

func TestSelectSQL_Errors(t *testing.T) {
	_, _, err := hayBales.selectSQL(Query{OrderBy: []string{"colour"}})
	assert.ErrorContains(t, err, "no column")

	_, _, err = hayBales.selectSQL(Query{Filters: []Filter{{Column: "colour", Lookup: quantityfield.Exact, Value: 1}}})
	assert.ErrorContains(t, err, "no column")

	_, _, err = hayBales.selectSQL(Query{Filters: []Filter{{Column: "name", Lookup: quantityfield.Lookup("contains"), Value: "x"}}})
	assert.ErrorIs(t, err, quantityfield.ErrUnsupportedLookup)
}

func TestPlainWhere(t *testing.T) {
	clause, args, err := plainWhere("id", quantityfield.Exact, int64(3))
	require.NoError(t, err)
	assert.Equal(t, "id = ?", clause)
	assert.Equal(t, []any{int64(3)}, args)

	clause, _, err = plainWhere("compare", quantityfield.IsNull, false)
	require.NoError(t, err)
	assert.Equal(t, "compare IS NOT NULL", clause)

	clause, _, err = plainWhere("name", quantityfield.Exact, nil)
	require.NoError(t, err)
	assert.Equal(t, "name IS NULL", clause)

	clause, args, err = plainWhere("id", quantityfield.Range, []any{1, 9})
	require.NoError(t, err)
	assert.Equal(t, "id BETWEEN ? AND ?", clause)
	assert.Equal(t, []any{1, 9}, args)

	clause, _, err = plainWhere("id", quantityfield.In, []any{})
	require.NoError(t, err)
	assert.Equal(t, "1 = 0", clause)

	_, _, err = plainWhere("id", quantityfield.GT, nil)
	assert.ErrorIs(t, err, quantityfield.ErrUnsupportedValue)
}
