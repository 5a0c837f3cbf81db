// Package temperature holds the pure unit-conversion and target-validation
// rules shared by the session controller and the temperature sources.
package temperature

import "pantemp/internal/models"

// ToFahrenheit converts a Celsius value.
func ToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// ToCelsius converts a Fahrenheit value.
func ToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Convert translates v between units. Identity when from == to.
func Convert(v float64, from, to models.Unit) float64 {
	if from == to {
		return v
	}
	if to == models.Fahrenheit {
		return ToFahrenheit(v)
	}
	return ToCelsius(v)
}
