package products

import (
	"strings"
	"time"

	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/pkg/enums"
)

// ShortDescriptionMaxRunes bounds Product.ShortDescription.
const ShortDescriptionMaxRunes = 193

// ProductRef is an entry of the related/substitute lookup table.
type ProductRef = regional.ProductRef

// Catalog is a reference row (product type or status) as served upstream.
type Catalog struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// RelatedUser is a user allowed to edit the product through a subfamily
// assignment.
type RelatedUser struct {
	Email string `json:"email"`
}

// Product is the console's working copy of a product record.
type Product struct {
	ID               int                 `json:"id"`
	SKU              string              `json:"sku"`
	Name             string              `json:"name"`
	ProductType      *Catalog            `json:"product_type,omitempty"`
	Status           enums.ProductStatus `json:"status"`
	StatusName       string              `json:"status_name,omitempty"`
	Published        bool                `json:"published"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"short_description"`
	Specifications   string              `json:"specifications"`
	Applications     string              `json:"applications"`
	Brand            string              `json:"brand"`
	Area             string              `json:"area"`
	Family           string              `json:"family"`
	Subfamily        string              `json:"subfamily"`
	URL              string              `json:"url"`
	CreatedAt        *time.Time          `json:"created_at,omitempty"`
	RelatedUsers     []RelatedUser       `json:"related_users"`
	CountrySettings  []regional.Setting  `json:"country_settings"`
}

// HasRelatedUser reports whether email is among the product's related users.
func (p Product) HasRelatedUser(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, u := range p.RelatedUsers {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of p.
func (p Product) Clone() Product {
	out := p
	if p.ProductType != nil {
		pt := *p.ProductType
		out.ProductType = &pt
	}
	if p.CreatedAt != nil {
		created := *p.CreatedAt
		out.CreatedAt = &created
	}
	out.RelatedUsers = append([]RelatedUser(nil), p.RelatedUsers...)
	out.CountrySettings = regional.NewMatrix(p.CountrySettings).Settings()
	return out
}

// HistoryUser is the actor of a workflow history entry.
type HistoryUser struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Picture  string `json:"picture,omitempty"`
}

// HistoryEntry records one status transition. Entries are server-produced
// and never mutated locally.
type HistoryEntry struct {
	ID        int                 `json:"id"`
	ProductID int                 `json:"product_id"`
	User      HistoryUser         `json:"user"`
	OldStatus enums.ProductStatus `json:"old_status,omitempty"`
	NewStatus enums.ProductStatus `json:"new_status"`
	Message   string              `json:"message,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// Video is a persisted product video.
type Video struct {
	ID         int    `json:"id"`
	YouTubeURL string `json:"youtube_url"`
	Order      int    `json:"order"`
}

// ProductUpdate is the full-replace payload of SaveProduct.
type ProductUpdate struct {
	SKU              string             `json:"sku"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	ShortDescription string             `json:"short_description"`
	Specifications   string             `json:"specifications"`
	Applications     string             `json:"applications"`
	Brand            string             `json:"brand"`
	Area             string             `json:"area"`
	Family           string             `json:"family"`
	Subfamily        string             `json:"subfamily"`
	URL              string             `json:"url"`
	CountrySettings  []regional.Setting `json:"country_settings"`
}

// UpdateFor merges p's editable fields with the given country settings.
func UpdateFor(p Product, settings []regional.Setting) ProductUpdate {
	if settings == nil {
		settings = []regional.Setting{}
	}
	return ProductUpdate{
		SKU:              p.SKU,
		Name:             strings.TrimSpace(p.Name),
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Specifications:   p.Specifications,
		Applications:     p.Applications,
		Brand:            p.Brand,
		Area:             p.Area,
		Family:           p.Family,
		Subfamily:        p.Subfamily,
		URL:              p.URL,
		CountrySettings:  settings,
	}
}

// StatusUpdate is the PATCH payload of a workflow transition.
type StatusUpdate struct {
	StatusCode enums.ProductStatus `json:"status_code"`
	Published  *bool               `json:"published,omitempty"`
	Message    *string             `json:"message,omitempty"`
}
