package units

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name     string
		input    string
		wantName string
		wantDim  string
	}{
		{"base unit", "gram", "gram", "[mass]"},
		{"symbol", "g", "gram", "[mass]"},
		{"alias", "metre", "meter", "[length]"},
		{"plural", "ounces", "ounce", "[mass]"},
		{"plural es", "inches", "inch", "[length]"},
		{"long prefix", "kilogram", "kilogram", "[mass]"},
		{"symbol prefix", "mm", "millimeter", "[length]"},
		{"prefixed plural", "kilometers", "kilometer", "[length]"},
		{"symbol wins over prefix", "min", "minute", "[time]"},
		{"millisecond symbol", "ms", "millisecond", "[time]"},
		{"compound", "meter / second", "meter / second", "[length] / [time]"},
		{"compound with power", "kilogram * meter / second ** 2", "kilogram * meter / second ** 2", "[length] * [mass] / [time] ** 2"},
		{"caret power", "meter^3", "meter ** 3", "[length] ** 3"},
		{"speed unit", "mph", "mph", "[length] / [time]"},
		{"speed alias", "kmph", "kph", "[length] / [time]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := reg.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, u.Name())
			assert.Equal(t, tt.wantDim, u.Dimensionality().String())
			assert.Same(t, reg, u.Registry())
		})
	}
}

func TestParse_Undefined(t *testing.T) {
	reg := NewRegistry()

	for _, name := range []string{"zinghie", "gunzu", "", "meter / zinghie", "3 meter"} {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Parse(name)
			var undefined *UndefinedUnitError
			require.True(t, errors.As(err, &undefined), "expected UndefinedUnitError, got %v", err)
		})
	}
}

func TestDefine_CustomDimension(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Define("custom = [custom]"))
	require.NoError(t, reg.Define("kilocustom = 1000 * custom"))

	q, err := reg.Quantity(5, "kilocustom")
	require.NoError(t, err)

	got, err := q.ToName("custom")
	require.NoError(t, err)
	assert.Equal(t, "5000.0 custom", got.String())

	_, err = q.ToName("gram")
	var dimErr *DimensionalityError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, "[custom]", dimErr.FromDim.String())
	assert.Equal(t, "[mass]", dimErr.ToDim.String())
}

func TestDefine_SymbolAliasAndOffset(t *testing.T) {
	reg := NewEmptyRegistry()
	require.NoError(t, reg.Define("kelvin = [temperature] = K"))
	require.NoError(t, reg.Define("degree_Celsius = kelvin; offset: 273.15 = degC = celsius"))

	for _, name := range []string{"degree_Celsius", "degC", "celsius"} {
		u, err := reg.Parse(name)
		require.NoError(t, err, name)
		assert.Equal(t, "degree_Celsius", u.Name())
	}

	q, err := reg.Quantity(100, "celsius")
	require.NoError(t, err)
	k, err := q.ToName("K")
	require.NoError(t, err)
	assert.InDelta(t, 373.15, k.Float64(), 1e-9)
}

func TestDefine_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"no equals", "custom"},
		{"undefined reference", "thing = 3 zinghie"},
		{"duplicate", "gram = [mass]"},
		{"bad offset", "x = kelvin; offset: warm"},
		{"unknown option", "x = kelvin; scale: 2"},
		{"zero scale", "nothing = 0 gram"},
		{"offset base", "warmer = 2 degC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Define(tt.line)
			require.Error(t, err)
		})
	}
}

func TestLoadDefinitions(t *testing.T) {
	reg := NewEmptyRegistry()
	doc := `
units:
  - name: custom
    dimension: custom
  - name: kilocustom
    definition: 1000 * custom
    symbol: kc
`
	require.NoError(t, reg.LoadDefinitions(strings.NewReader(doc)))
	assert.Equal(t, []string{"custom", "kilocustom"}, reg.Names())

	u, err := reg.Parse("kc")
	require.NoError(t, err)
	assert.Equal(t, "kilocustom", u.Name())
}

func TestLoadDefinitions_AllOrNothing(t *testing.T) {
	reg := NewRegistry()
	before := reg.Names()
	bad := `
units:
  - name: custom
    dimension: custom
    symbol: cu
  - name: kilocustom
    definition: 1000 * custom
    aliases: [kcustom]
  - name: broken
    definition: 3 * nosuchunit
`
	err := reg.LoadDefinitions(strings.NewReader(bad))
	var defErr *DefinitionError
	require.True(t, errors.As(err, &defErr), "got %v", err)

	assert.Equal(t, before, reg.Names())
	for _, name := range []string{"custom", "cu", "kilocustom", "kcustom", "broken"} {
		_, err := reg.Parse(name)
		assert.Error(t, err, name)
	}

	fixed := strings.Replace(bad, "3 * nosuchunit", "3 * kilocustom", 1)
	require.NoError(t, reg.LoadDefinitions(strings.NewReader(fixed)))
	u, err := reg.Parse("kcustom")
	require.NoError(t, err)
	assert.Equal(t, "kilocustom", u.Name())
	_, err = reg.Parse("broken")
	assert.NoError(t, err)
}

func TestLoadDefinitions_RejectsUnknownFields(t *testing.T) {
	reg := NewEmptyRegistry()
	err := reg.LoadDefinitions(strings.NewReader("units:\n  - name: x\n    dimensions: y\n"))
	require.Error(t, err)
}

func TestParseQuantity(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		input    string
		wantKind Kind
		want     string
	}{
		{"10 ounce", Int, "10 ounce"},
		{"0.8oz", Float, "0.8 ounce"},
		{"-3.5 degC", Float, "-3.5 degree_Celsius"},
		{"1e3 gram", Float, "1000.0 gram"},
		{"9.81 meter / second ** 2", Float, "9.81 meter / second ** 2"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := reg.ParseQuantity(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, q.Kind())
			assert.Equal(t, tt.want, q.String())
		})
	}

	for _, bad := range []string{"", "gram", "12", "1..2 gram"} {
		_, err := reg.ParseQuantity(bad)
		assert.Error(t, err, bad)
	}
}

func TestAdopt(t *testing.T) {
	app := NewRegistry()
	other := NewRegistry()

	q := other.MustQuantity(5, "kilogram")
	assert.Same(t, other, q.Registry())

	adopted, err := app.Adopt(q)
	require.NoError(t, err)
	assert.Same(t, app, adopted.Registry())
	assert.Equal(t, "5.0 kilogram", adopted.String())

	same, err := app.Adopt(adopted)
	require.NoError(t, err)
	assert.Same(t, app, same.Registry())
}

func TestSetDefault(t *testing.T) {
	custom := NewRegistry()
	previous := SetDefault(custom)
	defer SetDefault(previous)

	assert.Same(t, custom, Default())
	assert.NotSame(t, previous, Default())
}

func TestRegistry_ConcurrentDefineAndParse(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = reg.Parse("kilogram")
			}
		}()
	}
	require.NoError(t, reg.Define("bale = 25 kilogram"))
	wg.Wait()

	q := reg.MustQuantity(2, "bale")
	kg, err := q.ToName("kilogram")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, kg.Float64(), 1e-9)
}
