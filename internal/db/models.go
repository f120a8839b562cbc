package db

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/quantityfield/internal/quantityfield"
	"github.com/banshee-data/quantityfield/internal/units"
)

//go:embed custom_units.yaml
var customUnits []byte

var (
	customOnce     sync.Once
	customRegistry *units.Registry
)

// CustomRegistry returns the registry the custom bale models resolve units
// in: the default units plus custom and kilocustom.
func CustomRegistry() *units.Registry {
	customOnce.Do(func() {
		reg := units.NewRegistry()
		if err := reg.LoadDefinitions(bytes.NewReader(customUnits)); err != nil {
			panic(fmt.Sprintf("db: loading custom units: %v", err))
		}
		customRegistry = reg
	})
	return customRegistry
}

// HayBale weighs its bale in every column kind.
type HayBale struct {
	ID            int64
	Name          string
	Weight        quantityfield.Value
	WeightInt     quantityfield.Value
	WeightBigInt  quantityfield.Value
	WeightDecimal quantityfield.Value
}

var (
	HayBaleWeight        = quantityfield.MustNew(quantityfield.Float, "gram")
	HayBaleWeightInt     = quantityfield.MustNew(quantityfield.Integer, "gram", quantityfield.WithNull())
	HayBaleWeightBigInt  = quantityfield.MustNew(quantityfield.BigInteger, "gram", quantityfield.WithNull())
	HayBaleWeightDecimal = quantityfield.MustNew(quantityfield.Decimal, "gram",
		quantityfield.WithNull(), quantityfield.WithDecimalPrecision(10, 2))
)

var hayBales = &table{
	name:  "hay_bales",
	model: "bales.haybale",
	columns: []column{
		{name: "name"},
		{name: "weight", field: HayBaleWeight},
		{name: "weight_int", field: HayBaleWeightInt},
		{name: "weight_bigint", field: HayBaleWeightBigInt},
		{name: "weight_decimal", field: HayBaleWeightDecimal},
	},
}

func (b *HayBale) table() *table { return hayBales }
func (b *HayBale) pk() *int64    { return &b.ID }
func (b *HayBale) fields() []any {
	return []any{&b.Name, &b.Weight, &b.WeightInt, &b.WeightBigInt, &b.WeightDecimal}
}

// Set assigns v to the named column, coercing it through the column's field.
func (b *HayBale) Set(column string, v any) error { return assign(b, column, v) }

// NullableBale has a single nullable weight column. The column kind selects
// the table; decimal bales also carry a plain decimal column to compare the
// stored weight against.
type NullableBale struct {
	ID      int64
	Name    string
	Weight  quantityfield.Value
	Compare decimal.NullDecimal
}

var nullableBales = map[quantityfield.Kind]*table{
	quantityfield.Float:      nullableTable("nullable_bales_float", "bales.nullablebalefloat", quantityfield.Float),
	quantityfield.Integer:    nullableTable("nullable_bales_int", "bales.nullablebaleint", quantityfield.Integer),
	quantityfield.BigInteger: nullableTable("nullable_bales_bigint", "bales.nullablebalebigint", quantityfield.BigInteger),
	quantityfield.Decimal:    nullableTable("nullable_bales_decimal", "bales.nullablebaledecimal", quantityfield.Decimal),
}

func nullableTable(name, model string, kind quantityfield.Kind) *table {
	opts := []quantityfield.Option{quantityfield.WithNull()}
	if kind == quantityfield.Decimal {
		opts = append(opts, quantityfield.WithDecimalPrecision(10, 2))
	}
	t := &table{
		name:  name,
		model: model,
		columns: []column{
			{name: "name"},
			{name: "weight", field: quantityfield.MustNew(kind, "gram", opts...)},
		},
	}
	if kind == quantityfield.Decimal {
		t.columns = append(t.columns, column{name: "compare", places: 2})
	}
	return t
}

// NullableBaleWeight returns the weight field of the nullable table of kind.
func NullableBaleWeight(kind quantityfield.Kind) *quantityfield.Field {
	f, _ := nullableBales[kind].field("weight")
	return f
}

// nullableBale binds a NullableBale to the table of one kind.
type nullableBale struct {
	*NullableBale
	t *table
}

func (b nullableBale) table() *table { return b.t }
func (b nullableBale) pk() *int64    { return &b.ID }
func (b nullableBale) fields() []any {
	ptrs := []any{&b.Name, &b.Weight}
	if len(b.t.columns) > 2 {
		ptrs = append(ptrs, &b.Compare)
	}
	return ptrs
}

// Set assigns v to the named column of the table of the given kind.
func (b *NullableBale) Set(kind quantityfield.Kind, column string, v any) error {
	t, err := nullableTableFor(kind)
	if err != nil {
		return err
	}
	return assign(nullableBale{NullableBale: b, t: t}, column, v)
}

// CustomBale stores custom units in every integer and float column kind.
type CustomBale struct {
	ID           int64
	Custom       quantityfield.Value
	CustomInt    quantityfield.Value
	CustomBigInt quantityfield.Value
}

var (
	CustomBaleCustom = quantityfield.MustNew(quantityfield.Float, "custom",
		quantityfield.WithRegistry(CustomRegistry()), quantityfield.WithNull())
	CustomBaleCustomInt = quantityfield.MustNew(quantityfield.Integer, "custom",
		quantityfield.WithRegistry(CustomRegistry()), quantityfield.WithNull())
	CustomBaleCustomBigInt = quantityfield.MustNew(quantityfield.BigInteger, "custom",
		quantityfield.WithRegistry(CustomRegistry()), quantityfield.WithNull())
)

var customBales = &table{
	name:  "custom_bales",
	model: "bales.custombale",
	columns: []column{
		{name: "custom", field: CustomBaleCustom},
		{name: "custom_int", field: CustomBaleCustomInt},
		{name: "custom_bigint", field: CustomBaleCustomBigInt},
	},
}

func (b *CustomBale) table() *table { return customBales }
func (b *CustomBale) pk() *int64    { return &b.ID }
func (b *CustomBale) fields() []any {
	return []any{&b.Custom, &b.CustomInt, &b.CustomBigInt}
}

func (b *CustomBale) Set(column string, v any) error { return assign(b, column, v) }

// CustomDecimalBale stores custom units in a decimal column.
type CustomDecimalBale struct {
	ID            int64
	CustomDecimal quantityfield.Value
}

var CustomDecimalBaleCustomDecimal = quantityfield.MustNew(quantityfield.Decimal, "custom",
	quantityfield.WithRegistry(CustomRegistry()), quantityfield.WithNull(),
	quantityfield.WithDecimalPrecision(10, 2))

var customDecimalBales = &table{
	name:  "custom_decimal_bales",
	model: "bales.customdecimalbale",
	columns: []column{
		{name: "custom_decimal", field: CustomDecimalBaleCustomDecimal},
	},
}

func (b *CustomDecimalBale) table() *table { return customDecimalBales }
func (b *CustomDecimalBale) pk() *int64    { return &b.ID }
func (b *CustomDecimalBale) fields() []any {
	return []any{&b.CustomDecimal}
}

func (b *CustomDecimalBale) Set(column string, v any) error { return assign(b, column, v) }
