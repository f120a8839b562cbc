package quantityfield

import "github.com/banshee-data/quantityfield/internal/units"

// Value is what a quantity field holds: either null or a quantity. The zero
// Value is null.
type Value struct {
	q     units.Quantity
	valid bool
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Of wraps q.
func Of(q units.Quantity) Value { return Value{q: q, valid: true} }

// IsNull reports whether v holds no quantity.
func (v Value) IsNull() bool { return !v.valid }

// Quantity returns the held quantity and whether there is one.
func (v Value) Quantity() (units.Quantity, bool) { return v.q, v.valid }

func (v Value) String() string {
	if !v.valid {
		return "<null>"
	}
	return v.q.String()
}
