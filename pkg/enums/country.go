package enums

import (
	"fmt"
	"strings"
)

// CountryCode identifies one of the markets a product can be configured for.
type CountryCode string

const (
	CountryChile   CountryCode = "cl"
	CountryPeru    CountryCode = "pe"
	CountryEcuador CountryCode = "ec"
	CountryBolivia CountryCode = "bo"
)

// countryOrder is the display order of the regional settings.
var countryOrder = []CountryCode{
	CountryChile,
	CountryPeru,
	CountryEcuador,
	CountryBolivia,
}

var countryNames = map[CountryCode]string{
	CountryChile:   "Chile",
	CountryPeru:    "Perú",
	CountryEcuador: "Ecuador",
	CountryBolivia: "Bolivia",
}

// String implements fmt.Stringer.
func (c CountryCode) String() string {
	return string(c)
}

// DisplayName returns the country name, or the capitalised code when unknown.
func (c CountryCode) DisplayName() string {
	if name, ok := countryNames[c]; ok {
		return name
	}
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// IsValid reports whether the value is a known CountryCode.
func (c CountryCode) IsValid() bool {
	_, ok := countryNames[c]
	return ok
}

// Countries returns the configured countries in display order.
func Countries() []CountryCode {
	return append([]CountryCode(nil), countryOrder...)
}

// ParseCountryCode converts raw input into a CountryCode.
func ParseCountryCode(value string) (CountryCode, error) {
	code := CountryCode(strings.ToLower(strings.TrimSpace(value)))
	if code.IsValid() {
		return code, nil
	}
	return "", fmt.Errorf("invalid country code %q", value)
}
