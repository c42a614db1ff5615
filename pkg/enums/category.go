package enums

import "fmt"

// CategoryCode classifies a product's supply behaviour in a country.
// The empty code is the "no selection" sentinel.
type CategoryCode string

const (
	CategoryNone       CategoryCode = ""
	CategoryPlanned    CategoryCode = "A"
	CategoryCommercial CategoryCode = "B"
	CategoryOnDemand   CategoryCode = "C"
	CategoryOrder      CategoryCode = "I"
	CategoryObsolete   CategoryCode = "O"
	CategoryPhaseOut   CategoryCode = "Z"
)

// CategoryOption is one entry of the category selector.
type CategoryOption struct {
	Code  CategoryCode `json:"value"`
	Label string       `json:"label"`
}

var categoryOptions = []CategoryOption{
	{Code: CategoryNone, Label: "--- Seleccionar Categoría ---"},
	{Code: CategoryPlanned, Label: "A - Planificados"},
	{Code: CategoryCommercial, Label: "B - Iniciativa Comercial"},
	{Code: CategoryOnDemand, Label: "C - A Pedido"},
	{Code: CategoryOrder, Label: "I - Pedido"},
	{Code: CategoryObsolete, Label: "O - Obsoleto"},
	{Code: CategoryPhaseOut, Label: "Z - Primario en Fase de salida"},
}

// String implements fmt.Stringer.
func (c CategoryCode) String() string {
	return string(c)
}

// IsNone reports whether c is the sentinel option.
func (c CategoryCode) IsNone() bool {
	return c == CategoryNone
}

// Label returns the option label for c.
func (c CategoryCode) Label() string {
	for _, option := range categoryOptions {
		if option.Code == c {
			return option.Label
		}
	}
	return ""
}

// IsValid reports whether the value is one of the selector options.
func (c CategoryCode) IsValid() bool {
	for _, option := range categoryOptions {
		if option.Code == c {
			return true
		}
	}
	return false
}

// CategoryOptions returns the selector options, sentinel first.
func CategoryOptions() []CategoryOption {
	return append([]CategoryOption(nil), categoryOptions...)
}

// ParseCategoryCode converts raw input into a CategoryCode.
func ParseCategoryCode(value string) (CategoryCode, error) {
	code := CategoryCode(value)
	if code.IsValid() {
		return code, nil
	}
	return "", fmt.Errorf("invalid category code %q", value)
}
