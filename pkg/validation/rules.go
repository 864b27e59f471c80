package validation

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidLatitude reports whether v is a usable latitude in degrees.
func ValidLatitude(v float64) bool {
	return validate.Var(v, "latitude") == nil
}

// ValidLongitude reports whether v is a usable longitude in degrees.
func ValidLongitude(v float64) bool {
	return validate.Var(v, "longitude") == nil
}

// ValidCoordinates reports whether the pair is a usable geographic point.
func ValidCoordinates(lat, lng float64) bool {
	return ValidLatitude(lat) && ValidLongitude(lng)
}
