package units

import (
	"sort"
	"strconv"
	"strings"
)

// Dimension is a product of named base dimensions raised to integer powers.
// The zero value is dimensionless.
type Dimension map[string]int

// Equal reports whether d and o describe the same physical dimension.
func (d Dimension) Equal(o Dimension) bool {
	if len(d) != len(o) {
		return false
	}
	for k, v := range d {
		if o[k] != v {
			return false
		}
	}
	return true
}

// IsDimensionless reports whether d has no base dimensions.
func (d Dimension) IsDimensionless() bool {
	return len(d) == 0
}

func (d Dimension) mul(o Dimension, exp int) Dimension {
	out := make(Dimension, len(d)+len(o))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range o {
		out[k] += v * exp
		if out[k] == 0 {
			delete(out, k)
		}
	}
	return out
}

// String renders the dimension as "[length] / [time] ** 2".
func (d Dimension) String() string {
	if len(d) == 0 {
		return "dimensionless"
	}
	names := make([]string, 0, len(d))
	for k := range d {
		names = append(names, k)
	}
	sort.Strings(names)

	var num, den []string
	for _, k := range names {
		exp := d[k]
		term := "[" + k + "]"
		abs := exp
		if abs < 0 {
			abs = -abs
		}
		if abs != 1 {
			term += " ** " + strconv.Itoa(abs)
		}
		if exp > 0 {
			num = append(num, term)
		} else {
			den = append(den, term)
		}
	}

	var b strings.Builder
	if len(num) == 0 {
		b.WriteString("1")
	} else {
		b.WriteString(strings.Join(num, " * "))
	}
	for _, t := range den {
		b.WriteString(" / ")
		b.WriteString(t)
	}
	return b.String()
}
