package products

import (
	"context"
	"path"
	"strconv"

	"github.com/angelmondragon/pim-console/internal/media"
)

// MediaSource serves the gallery and documentation of a product.
type MediaSource interface {
	Gallery(ctx context.Context, productID int) ([]media.Item, error)
	Documentation(ctx context.Context, productID int) ([]media.Item, error)
}

// FixtureMedia serves static gallery and documentation lists while the
// upstream API has no endpoints for them.
type FixtureMedia struct {
	GalleryPaths       []string
	DocumentationPaths []string
}

// DefaultFixtureMedia returns the fixture lists every product shows.
func DefaultFixtureMedia() FixtureMedia {
	return FixtureMedia{
		GalleryPaths: []string{
			"/product/gallery/4667_3043.jpg",
			"/product/gallery/4668_3043.jpg",
			"/product/gallery/4669_3043.jpg",
		},
		DocumentationPaths: []string{
			"/product/documentation/4550_3043_4.pdf",
			"/product/documentation/4551_3043_4.pdf",
		},
	}
}

func (f FixtureMedia) Gallery(ctx context.Context, _ int) ([]media.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pathItems(f.GalleryPaths, "image/jpeg"), nil
}

func (f FixtureMedia) Documentation(ctx context.Context, _ int) ([]media.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pathItems(f.DocumentationPaths, "application/pdf"), nil
}

func pathItems(paths []string, mimeType string) []media.Item {
	items := make([]media.Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, media.Item{ID: p, URL: p, Name: path.Base(p), MIMEType: mimeType})
	}
	return items
}

// VideoItems converts persisted videos into collection items keyed by their
// server id.
func VideoItems(videos []Video) []media.Item {
	items := make([]media.Item, 0, len(videos))
	for _, v := range videos {
		items = append(items, media.VideoItem(videoItemID(v), v.YouTubeURL))
	}
	return items
}

func videoItemID(v Video) string {
	if v.ID > 0 {
		return "video-" + strconv.Itoa(v.ID)
	}
	return "video-" + media.ExtractVideoID(v.YouTubeURL)
}

// ReferenceSource serves the products that can be picked as related or
// substitute.
type ReferenceSource interface {
	References(ctx context.Context) ([]ProductRef, error)
}

// FixtureReferences is the static lookup table of the regional editor.
type FixtureReferences []ProductRef

// DefaultFixtureReferences returns the five-entry lookup table.
func DefaultFixtureReferences() FixtureReferences {
	return FixtureReferences{
		{ID: "prod-A", SKU: "12345", Name: "Producto A (SKU: 12345)"},
		{ID: "prod-B", SKU: "67890", Name: "Producto B (SKU: 67890)"},
		{ID: "prod-C", SKU: "11223", Name: "Producto C (SKU: 11223)"},
		{ID: "prod-D", SKU: "44556", Name: "Producto D (SKU: 44556)"},
		{ID: "prod-E", SKU: "77889", Name: "Producto E (SKU: 77889)"},
	}
}

func (f FixtureReferences) References(ctx context.Context) ([]ProductRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]ProductRef(nil), f...), nil
}

// References serves the lookup table from the product list.
func (c *Client) References(ctx context.Context) ([]ProductRef, error) {
	list, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]ProductRef, 0, len(list))
	for _, p := range list {
		if p.SKU == "" {
			continue
		}
		refs = append(refs, ProductRef{ID: strconv.Itoa(p.ID), SKU: p.SKU, Name: p.Name})
	}
	return refs, nil
}
