package quantityfield

import "errors"

var (
	// ErrBaseUnitsRequired is returned when a field is built without a base unit.
	ErrBaseUnitsRequired = errors.New("base_units is required")

	// ErrInvalidInit is returned for bad decimal precision parameters.
	ErrInvalidInit = errors.New("invalid initialization")

	// ErrLossOfPrecision is returned when a non-integral magnitude is stored
	// in an integer column.
	ErrLossOfPrecision = errors.New("loss of precision")

	// ErrOutOfRange is returned when a magnitude does not fit the column.
	ErrOutOfRange = errors.New("value out of range")

	// ErrNotNullable is returned when a null value is stored in a field that
	// does not allow it.
	ErrNotNullable = errors.New("field is not nullable")

	// ErrUnsupportedValue is returned when a value cannot be coerced into a
	// quantity.
	ErrUnsupportedValue = errors.New("unsupported value")

	// ErrUnsupportedLookup is returned for lookups the field does not handle.
	ErrUnsupportedLookup = errors.New("unsupported lookup")
)
