package weather

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Unit is a temperature unit.
type Unit string

const (
	Celsius    Unit = "c"
	Fahrenheit Unit = "f"
)

// ErrUnsupportedUnit is the error returned for temperature units other than
// Celsius and Fahrenheit.
var ErrUnsupportedUnit = errors.New("unsupported unit")

// ParseUnit parses a unit name case-insensitively.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case Celsius, Fahrenheit:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedUnit, s)
}

// Other returns the opposite unit.
// Units other than Celsius and Fahrenheit have no opposite.
func (u Unit) Other() (Unit, error) {
	switch u.norm() {
	case Celsius:
		return Fahrenheit, nil
	case Fahrenheit:
		return Celsius, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedUnit, string(u))
}

// Label is the unit as displayed to users, e.g. "C".
func (u Unit) Label() string {
	return strings.ToUpper(string(u))
}

func (u Unit) norm() Unit {
	return Unit(strings.ToLower(string(u)))
}

// Convert expresses a temperature given in from in the opposite unit,
// rounded to one decimal place.
func Convert(temp float64, from Unit) (float64, error) {
	var r float64
	switch from.norm() {
	case Fahrenheit:
		r = (temp - 32) * 5 / 9
	case Celsius:
		r = temp*9/5 + 32
	default:
		return 0, fmt.Errorf("couldn't convert from %q: %w", string(from), ErrUnsupportedUnit)
	}
	return math.Round(r*10) / 10, nil
}
