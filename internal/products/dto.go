package products

import (
	"fmt"
	"time"

	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/pkg/enums"
)

// productDTO mirrors the upstream product payload. Text columns may be null.
type productDTO struct {
	ID               int                 `json:"id"`
	SKU              *string             `json:"sku"`
	Name             *string             `json:"name"`
	ProductType      *Catalog            `json:"product_type"`
	Status           *Catalog            `json:"status"`
	Published        bool                `json:"published"`
	Description      *string             `json:"description"`
	ShortDescription *string             `json:"short_description"`
	Specifications   *string             `json:"specifications"`
	Applications     *string             `json:"applications"`
	Brand            *string             `json:"brand"`
	Area             *string             `json:"area"`
	Family           *string             `json:"family"`
	Subfamily        *string             `json:"subfamily"`
	URL              *string             `json:"url"`
	CreatedAt        *time.Time          `json:"created_at"`
	RelatedUsers     []RelatedUser       `json:"related_users"`
	CountrySettings  []countrySettingDTO `json:"country_settings"`
}

type countrySettingDTO struct {
	CountryCode  string  `json:"country_code"`
	Enabled      bool    `json:"enabled"`
	Sellable     bool    `json:"sellable"`
	CategoryCode *string `json:"category_code"`
	Category     *string `json:"category"`
	Related      *string `json:"related"`
	Substitute   *string `json:"substitute"`
}

type historyDTO struct {
	ID        int         `json:"id"`
	Product   int         `json:"product"`
	User      HistoryUser `json:"user"`
	OldStatus *Catalog    `json:"old_status"`
	NewStatus *Catalog    `json:"new_status"`
	Message   *string     `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}

type videoDTO struct {
	ID         int    `json:"id"`
	YouTubeURL string `json:"youtube_url"`
	Order      int    `json:"order"`
}

type videoPayload struct {
	YouTubeURL string `json:"youtube_url"`
}

// toProduct converts the wire payload. Unknown status codes are rejected; a
// product without a status is treated as a draft.
func toProduct(dto productDTO) (Product, error) {
	status := enums.ProductStatusDraft
	statusName := ""
	if dto.Status != nil {
		parsed, err := enums.ParseProductStatus(dto.Status.Code)
		if err != nil {
			return Product{}, fmt.Errorf("product %d: %w", dto.ID, err)
		}
		status = parsed
		statusName = dto.Status.Name
	}

	settings := make([]regional.Setting, 0, len(dto.CountrySettings))
	for _, cs := range dto.CountrySettings {
		setting, err := toSetting(cs)
		if err != nil {
			return Product{}, fmt.Errorf("product %d: %w", dto.ID, err)
		}
		settings = append(settings, setting)
	}

	related := dto.RelatedUsers
	if related == nil {
		related = []RelatedUser{}
	}

	return Product{
		ID:               dto.ID,
		SKU:              deref(dto.SKU),
		Name:             deref(dto.Name),
		ProductType:      dto.ProductType,
		Status:           status,
		StatusName:       statusName,
		Published:        dto.Published,
		Description:      deref(dto.Description),
		ShortDescription: deref(dto.ShortDescription),
		Specifications:   deref(dto.Specifications),
		Applications:     deref(dto.Applications),
		Brand:            deref(dto.Brand),
		Area:             deref(dto.Area),
		Family:           deref(dto.Family),
		Subfamily:        deref(dto.Subfamily),
		URL:              deref(dto.URL),
		CreatedAt:        dto.CreatedAt,
		RelatedUsers:     related,
		CountrySettings:  settings,
	}, nil
}

func toSetting(dto countrySettingDTO) (regional.Setting, error) {
	category, err := enums.ParseCategoryCode(deref(dto.CategoryCode))
	if err != nil {
		return regional.Setting{}, err
	}
	return regional.Setting{
		CountryCode:  enums.CountryCode(dto.CountryCode),
		Enabled:      dto.Enabled,
		Sellable:     dto.Sellable,
		CategoryCode: category,
		Category:     dto.Category,
		Related:      deref(dto.Related),
		Substitute:   deref(dto.Substitute),
	}, nil
}

func toHistory(dtos []historyDTO) ([]HistoryEntry, error) {
	out := make([]HistoryEntry, 0, len(dtos))
	for _, dto := range dtos {
		entry := HistoryEntry{
			ID:        dto.ID,
			ProductID: dto.Product,
			User:      dto.User,
			Message:   deref(dto.Message),
			CreatedAt: dto.CreatedAt,
		}
		if dto.OldStatus != nil {
			old, err := enums.ParseProductStatus(dto.OldStatus.Code)
			if err != nil {
				return nil, fmt.Errorf("history %d: %w", dto.ID, err)
			}
			entry.OldStatus = old
		}
		if dto.NewStatus != nil {
			next, err := enums.ParseProductStatus(dto.NewStatus.Code)
			if err != nil {
				return nil, fmt.Errorf("history %d: %w", dto.ID, err)
			}
			entry.NewStatus = next
		}
		out = append(out, entry)
	}
	return out, nil
}

func toVideos(dtos []videoDTO) []Video {
	out := make([]Video, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, Video{ID: dto.ID, YouTubeURL: dto.YouTubeURL, Order: dto.Order})
	}
	return out
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
