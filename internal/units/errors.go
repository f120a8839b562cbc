package units

import "fmt"

// UndefinedUnitError is returned when a unit name cannot be resolved in a
// registry.
type UndefinedUnitError struct {
	Name string
}

func (e *UndefinedUnitError) Error() string {
	return fmt.Sprintf("'%s' is not defined in the unit registry", e.Name)
}

// DimensionalityError is returned when two units measure different physical
// dimensions.
type DimensionalityError struct {
	From    string
	To      string
	FromDim Dimension
	ToDim   Dimension
}

func (e *DimensionalityError) Error() string {
	return fmt.Sprintf("cannot convert from '%s' (%s) to '%s' (%s)", e.From, e.FromDim, e.To, e.ToDim)
}

// DefinitionError is returned when a unit definition line or file is
// malformed.
type DefinitionError struct {
	Definition string
	Reason     string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid unit definition %q: %s", e.Definition, e.Reason)
}
