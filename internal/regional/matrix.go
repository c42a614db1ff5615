package regional

import (
	"fmt"

	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

// Setting is the per-country override record, in wire shape.
type Setting struct {
	CountryCode  enums.CountryCode  `json:"country_code"`
	Enabled      bool               `json:"enabled"`
	Sellable     bool               `json:"sellable"`
	CategoryCode enums.CategoryCode `json:"category_code"`
	Category     *string            `json:"category"`
	Related      string             `json:"related"`
	Substitute   string             `json:"substitute"`
}

// Field names an editable column of a Setting.
type Field string

const (
	FieldEnabled    Field = "enabled"
	FieldSellable   Field = "sellable"
	FieldCategory   Field = "category"
	FieldRelated    Field = "related"
	FieldSubstitute Field = "substitute"
)

// ParseField converts raw input into a Field.
func ParseField(value string) (Field, error) {
	switch f := Field(value); f {
	case FieldEnabled, FieldSellable, FieldCategory, FieldRelated, FieldSubstitute:
		return f, nil
	}
	return "", fmt.Errorf("invalid country field %q", value)
}

// Matrix is an immutable set of country settings, at most one per country.
// Every update returns a new Matrix and leaves the receiver untouched.
type Matrix struct {
	settings []Setting
}

// NewMatrix builds a matrix from loaded settings. The first record of a
// country wins; records without a country code are dropped. Records for
// countries outside the console's set are kept so a save does not lose them.
func NewMatrix(settings []Setting) Matrix {
	out := make([]Setting, 0, len(settings))
	seen := make(map[enums.CountryCode]struct{}, len(settings))
	for _, s := range settings {
		if s.CountryCode == "" {
			continue
		}
		if _, dup := seen[s.CountryCode]; dup {
			continue
		}
		seen[s.CountryCode] = struct{}{}
		out = append(out, cloneSetting(s))
	}
	return Matrix{settings: out}
}

// Country is one configurable market.
type Country struct {
	Code enums.CountryCode `json:"code"`
	Name string            `json:"name"`
}

// Countries returns the markets in display order.
func Countries() []Country {
	codes := enums.Countries()
	out := make([]Country, 0, len(codes))
	for _, code := range codes {
		out = append(out, Country{Code: code, Name: code.DisplayName()})
	}
	return out
}

// Categories returns the category selector options, sentinel first.
func Categories() []enums.CategoryOption {
	return enums.CategoryOptions()
}

// Default is the projection of a country without a stored record.
func Default(code enums.CountryCode) Setting {
	return Setting{CountryCode: code, CategoryCode: enums.CategoryNone}
}

// Get returns the stored record for code or its default projection.
func (m Matrix) Get(code enums.CountryCode) Setting {
	if idx := m.indexOf(code); idx >= 0 {
		return cloneSetting(m.settings[idx])
	}
	return Default(code)
}

// Has reports whether a record is stored for code.
func (m Matrix) Has(code enums.CountryCode) bool {
	return m.indexOf(code) >= 0
}

func (m Matrix) Len() int {
	return len(m.settings)
}

// Update sets field of the record for code, creating the record on demand.
//
// Enabled and sellable take a bool. Category takes an enums.CategoryCode or
// its string form and stores the option label alongside, nil for the empty
// option. Related and substitute take []ProductRef and store the joined SKUs.
func (m Matrix) Update(code enums.CountryCode, field Field, value any) (Matrix, error) {
	if !code.IsValid() {
		return m, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown country %q", code))
	}
	next := m.Get(code)

	switch field {
	case FieldEnabled, FieldSellable:
		flag, ok := value.(bool)
		if !ok {
			return m, invalidValue(field, value)
		}
		if field == FieldEnabled {
			next.Enabled = flag
		} else {
			next.Sellable = flag
		}
	case FieldCategory:
		category, err := categoryValue(value)
		if err != nil {
			return m, err
		}
		next.CategoryCode = category
		next.Category = nil
		if !category.IsNone() {
			label := category.Label()
			next.Category = &label
		}
	case FieldRelated, FieldSubstitute:
		refs, ok := value.([]ProductRef)
		if !ok && value != nil {
			return m, invalidValue(field, value)
		}
		if field == FieldRelated {
			next.Related = Serialize(refs)
		} else {
			next.Substitute = Serialize(refs)
		}
	default:
		return m, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown country field %q", field))
	}

	return m.with(next), nil
}

// Settings returns the stored records, console countries first in display
// order, for the save payload.
func (m Matrix) Settings() []Setting {
	out := make([]Setting, 0, len(m.settings))
	for _, code := range enums.Countries() {
		if idx := m.indexOf(code); idx >= 0 {
			out = append(out, cloneSetting(m.settings[idx]))
		}
	}
	for _, s := range m.settings {
		if !s.CountryCode.IsValid() {
			out = append(out, cloneSetting(s))
		}
	}
	return out
}

// Row is the resolved view of one country for the editor.
type Row struct {
	Country     enums.CountryCode  `json:"country"`
	DisplayName string             `json:"display_name"`
	Stored      bool               `json:"stored"`
	Enabled     bool               `json:"enabled"`
	Sellable    bool               `json:"sellable"`
	Category    enums.CategoryCode `json:"category_code"`
	Label       *string            `json:"category"`
	Related     []ProductRef       `json:"related"`
	Substitute  []ProductRef       `json:"substitute"`
}

// Rows resolves every console country against lookup.
func (m Matrix) Rows(lookup Lookup) []Row {
	countries := Countries()
	rows := make([]Row, 0, len(countries))
	for _, c := range countries {
		s := m.Get(c.Code)
		rows = append(rows, Row{
			Country:     c.Code,
			DisplayName: c.Name,
			Stored:      m.Has(c.Code),
			Enabled:     s.Enabled,
			Sellable:    s.Sellable,
			Category:    s.CategoryCode,
			Label:       s.Category,
			Related:     lookup.Resolve(s.Related),
			Substitute:  lookup.Resolve(s.Substitute),
		})
	}
	return rows
}

func (m Matrix) with(s Setting) Matrix {
	out := make([]Setting, 0, len(m.settings)+1)
	replaced := false
	for _, existing := range m.settings {
		if existing.CountryCode == s.CountryCode {
			out = append(out, s)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, s)
	}
	return Matrix{settings: out}
}

func (m Matrix) indexOf(code enums.CountryCode) int {
	for i, s := range m.settings {
		if s.CountryCode == code {
			return i
		}
	}
	return -1
}

func cloneSetting(s Setting) Setting {
	if s.Category != nil {
		label := *s.Category
		s.Category = &label
	}
	return s
}

func categoryValue(value any) (enums.CategoryCode, error) {
	var raw string
	switch v := value.(type) {
	case enums.CategoryCode:
		raw = string(v)
	case string:
		raw = v
	case nil:
		raw = ""
	default:
		return "", invalidValue(FieldCategory, value)
	}
	code, err := enums.ParseCategoryCode(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return code, nil
}

func invalidValue(field Field, value any) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid value %T for country field %q", value, field))
}
