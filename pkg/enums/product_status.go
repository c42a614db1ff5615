package enums

import "fmt"

// ProductStatus is a product's position in the approval/publication workflow.
type ProductStatus string

const (
	ProductStatusDraft           ProductStatus = "draft"
	ProductStatusEditing         ProductStatus = "editing"
	ProductStatusPendingApproval ProductStatus = "pending_approval"
	ProductStatusPublished       ProductStatus = "published"
	ProductStatusDeactivated     ProductStatus = "deactivated"
)

var validProductStatuses = []ProductStatus{
	ProductStatusDraft,
	ProductStatusEditing,
	ProductStatusPendingApproval,
	ProductStatusPublished,
	ProductStatusDeactivated,
}

var productStatusLabels = map[ProductStatus]string{
	ProductStatusDraft:           "Borrador",
	ProductStatusEditing:         "En edición",
	ProductStatusPendingApproval: "Pendiente de aprobación",
	ProductStatusPublished:       "Publicado",
	ProductStatusDeactivated:     "Desactivado",
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// Label returns the display name shown in the console.
func (s ProductStatus) Label() string {
	if label, ok := productStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ProductStatuses returns every status in lifecycle order.
func ProductStatuses() []ProductStatus {
	return append([]ProductStatus(nil), validProductStatuses...)
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
