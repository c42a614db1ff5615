package products

import (
	"github.com/angelmondragon/pim-console/pkg/enums"
	"github.com/angelmondragon/pim-console/pkg/textsearch"
)

// ListFilter describes the knobs of the product list screen.
type ListFilter struct {
	Query       string               `json:"q,omitempty"`
	ProductType string               `json:"product_type,omitempty"`
	Status      *enums.ProductStatus `json:"status,omitempty"`
	Published   *bool                `json:"published,omitempty"`
}

// FilterProducts keeps the products matching every set knob. The query is
// matched accent- and case-insensitively against name, SKU, brand, area,
// family and subfamily. Order is preserved.
func FilterProducts(list []Product, filter ListFilter) []Product {
	out := make([]Product, 0, len(list))
	for _, p := range list {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Published != nil && p.Published != *filter.Published {
			continue
		}
		if filter.ProductType != "" && (p.ProductType == nil || p.ProductType.Code != filter.ProductType) {
			continue
		}
		if !textsearch.Matches(filter.Query, p.Name, p.SKU, p.Brand, p.Area, p.Family, p.Subfamily) {
			continue
		}
		out = append(out, p)
	}
	return out
}
