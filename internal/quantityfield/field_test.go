package quantityfield

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/quantityfield/internal/units"
)

// constructors maps every field kind to its constructor and the options it
// needs to be valid.
var constructors = []struct {
	kind     Kind
	build    func(string, ...Option) (*Field, error)
	required []Option
}{
	{Float, NewField, nil},
	{Integer, NewIntegerField, nil},
	{BigInteger, NewBigIntegerField, nil},
	{Decimal, NewDecimalField, []Option{WithDecimalPrecision(10, 2)}},
}

func TestFieldCreate(t *testing.T) {
	for _, c := range constructors {
		c := c
		build := func(base string, opts ...Option) (*Field, error) {
			return c.build(base, append(append([]Option(nil), c.required...), opts...)...)
		}

		t.Run(c.kind.String(), func(t *testing.T) {
			t.Run("sets units", func(t *testing.T) {
				f, err := build("gram")
				require.NoError(t, err)
				assert.True(t, f.Units().Equal(units.Default().MustParse("gram")))
				assert.Equal(t, c.kind, f.Kind())
				assert.Same(t, units.Default(), f.Registry())
			})

			t.Run("fails with unknown units", func(t *testing.T) {
				_, err := build("zinghie")
				var undefined *units.UndefinedUnitError
				assert.True(t, errors.As(err, &undefined), "got %v", err)
			})

			t.Run("base units are required", func(t *testing.T) {
				_, err := build("")
				assert.ErrorIs(t, err, ErrBaseUnitsRequired)
				_, err = build("   ")
				assert.ErrorIs(t, err, ErrBaseUnitsRequired)
			})

			t.Run("base units by symbol", func(t *testing.T) {
				f, err := build("m")
				require.NoError(t, err)
				assert.Equal(t, "meter", f.Units().Name())
			})

			t.Run("unit choices must be valid units", func(t *testing.T) {
				_, err := build("mile", WithUnitChoices("gunzu"))
				var undefined *units.UndefinedUnitError
				assert.True(t, errors.As(err, &undefined), "got %v", err)
			})

			t.Run("unit choices must match base dimensionality", func(t *testing.T) {
				_, err := build("gram", WithUnitChoices("meter", "ounces"))
				var dimErr *units.DimensionalityError
				require.True(t, errors.As(err, &dimErr), "got %v", err)
				assert.Equal(t, "meter", dimErr.From)
			})

			t.Run("unit choices start with base", func(t *testing.T) {
				f, err := build("gram", WithUnitChoices("ounces", "gram", "kg"))
				require.NoError(t, err)
				var names []string
				for _, u := range f.UnitChoices() {
					names = append(names, u.Name())
				}
				assert.Equal(t, []string{"gram", "ounce", "kilogram"}, names)
			})
		})
	}
}

func TestFieldCreate_EveryDefaultUnit(t *testing.T) {
	for _, name := range units.Default().Names() {
		f, err := NewField(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, f.Units().Name())
	}
}

func TestDecimalInit(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	failures := []struct {
		maxDigits, decimalPlaces *int
		message                  string
	}{
		{nil, nil, "expected max_digits and decimal_places to be integers"},
		{intPtr(10), nil, "expected max_digits and decimal_places to be integers"},
		{nil, intPtr(2), "expected max_digits and decimal_places to be integers"},
		{intPtr(-1), intPtr(2), "must be positive and max_digits must be larger than decimal_places"},
		{intPtr(2), intPtr(-1), "must be positive and max_digits must be larger than decimal_places"},
		{intPtr(2), intPtr(3), "must be positive and max_digits must be larger than decimal_places"},
	}
	for _, tt := range failures {
		var opts []Option
		name := "digits=nil"
		if tt.maxDigits != nil {
			opts = append(opts, WithMaxDigits(*tt.maxDigits))
			name = fmt.Sprintf("digits=%d", *tt.maxDigits)
		}
		if tt.decimalPlaces != nil {
			opts = append(opts, WithDecimalPlaces(*tt.decimalPlaces))
			name += fmt.Sprintf(",places=%d", *tt.decimalPlaces)
		}
		t.Run(name, func(t *testing.T) {
			_, err := NewDecimalField("meter", opts...)
			require.ErrorIs(t, err, ErrInvalidInit)
			assert.Contains(t, err.Error(), "invalid initialization")
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	for _, ok := range [][2]int{{2, 0}, {2, 2}, {1, 0}} {
		f, err := NewDecimalField("meter", WithDecimalPrecision(ok[0], ok[1]))
		require.NoError(t, err)
		assert.Equal(t, ok[0], f.MaxDigits())
		assert.Equal(t, ok[1], f.DecimalPlaces())
	}
}

func TestPrecisionOnlyForDecimal(t *testing.T) {
	_, err := NewField("gram", WithDecimalPrecision(10, 2))
	assert.ErrorIs(t, err, ErrInvalidInit)
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { MustNew(Float, "zinghie") })
	assert.NotPanics(t, func() { MustNew(Integer, "gram", WithNull()) })
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, "REAL NOT NULL", MustNew(Float, "gram").ColumnType())
	assert.Equal(t, "INTEGER", MustNew(Integer, "gram", WithNull()).ColumnType())
	assert.Equal(t, "BIGINT NOT NULL", MustNew(BigInteger, "gram").ColumnType())
	assert.Equal(t, "DECIMAL(10, 2)", MustNew(Decimal, "gram", WithNull(), WithDecimalPrecision(10, 2)).ColumnType())
}

func TestCustomRegistryField(t *testing.T) {
	reg := units.NewRegistry()
	require.NoError(t, reg.Define("custom = [custom]"))
	require.NoError(t, reg.Define("kilocustom = 1000 * custom"))

	f, err := NewField("custom", WithRegistry(reg), WithUnitChoices("kilocustom"))
	require.NoError(t, err)
	assert.Same(t, reg, f.Registry())

	_, err = NewField("custom")
	var undefined *units.UndefinedUnitError
	assert.True(t, errors.As(err, &undefined), "custom is unknown to the application registry")
}
