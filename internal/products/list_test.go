package products

import (
	"testing"

	"github.com/angelmondragon/pim-console/pkg/enums"
)

func TestFilterProducts(t *testing.T) {
	list := []Product{
		{ID: 1, Name: "Taladro Percutor", SKU: "T-1", Brand: "Bosch", Status: enums.ProductStatusPublished, Published: true, ProductType: &Catalog{Code: "simple"}},
		{ID: 2, Name: "Sierra", SKU: "S-2", Family: "Eléctricas", Status: enums.ProductStatusDraft},
		{ID: 3, Name: "Cámara", SKU: "C-3", Area: "Electrónica", Status: enums.ProductStatusDraft, ProductType: &Catalog{Code: "kit"}},
	}
	published := enums.ProductStatusPublished
	draft := enums.ProductStatusDraft
	no := false

	tests := []struct {
		name   string
		filter ListFilter
		want   []int
	}{
		{name: "empty", filter: ListFilter{}, want: []int{1, 2, 3}},
		{name: "accent insensitive family", filter: ListFilter{Query: "electricas"}, want: []int{2}},
		{name: "accent in query", filter: ListFilter{Query: "CÁMARA"}, want: []int{3}},
		{name: "sku", filter: ListFilter{Query: "t-1"}, want: []int{1}},
		{name: "status", filter: ListFilter{Status: &published}, want: []int{1}},
		{name: "status and query", filter: ListFilter{Status: &draft, Query: "electr"}, want: []int{2, 3}},
		{name: "published flag", filter: ListFilter{Published: &no}, want: []int{2, 3}},
		{name: "product type", filter: ListFilter{ProductType: "kit"}, want: []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterProducts(list, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %d products", tt.want, len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}
