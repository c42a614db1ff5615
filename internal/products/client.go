package products

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/angelmondragon/pim-console/internal/gateway"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

// Client is the typed façade over the upstream product endpoints. It keeps
// no state between calls; callers decide what to do with results.
type Client struct {
	req gateway.Requester
}

// NewClient builds a product client issuing requests through req.
func NewClient(req gateway.Requester) (*Client, error) {
	if req == nil {
		return nil, errors.New("requester is required")
	}
	return &Client{req: req}, nil
}

func productPath(id int, suffix string) string {
	return fmt.Sprintf("/v1/products/%d/%s", id, suffix)
}

// ListProducts returns every product visible to the session.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	resp, err := c.req.Do(ctx, http.MethodGet, "/v1/products/", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fetchError(resp, "No se pudieron obtener los productos.")
	}
	var dtos []productDTO
	if err := resp.Decode(&dtos); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product list")
	}
	out := make([]Product, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toProduct(dto)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid product in list")
		}
		out = append(out, p)
	}
	return out, nil
}

// GetProductDetails fetches the product core fields.
func (c *Client) GetProductDetails(ctx context.Context, id int) (Product, error) {
	resp, err := c.req.Do(ctx, http.MethodGet, productPath(id, ""), nil)
	if err != nil {
		return Product{}, err
	}
	if !resp.OK() {
		return Product{}, fetchError(resp, "No se pudieron obtener los detalles del producto.")
	}
	return decodeProduct(resp)
}

// GetProductHistory fetches the workflow history, newest first.
func (c *Client) GetProductHistory(ctx context.Context, id int) ([]HistoryEntry, error) {
	resp, err := c.req.Do(ctx, http.MethodGet, productPath(id, "history/"), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fetchError(resp, "No se pudo obtener el historial del producto.")
	}
	var dtos []historyDTO
	if err := resp.Decode(&dtos); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product history")
	}
	entries, err := toHistory(dtos)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid product history")
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// GetProductVideos fetches the persisted videos in display order.
func (c *Client) GetProductVideos(ctx context.Context, id int) ([]Video, error) {
	resp, err := c.req.Do(ctx, http.MethodGet, productPath(id, "videos/"), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fetchError(resp, "No se pudieron obtener los videos del producto.")
	}
	var dtos []videoDTO
	if err := resp.Decode(&dtos); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product videos")
	}
	return toVideos(dtos), nil
}

// SaveProduct replaces the product representation.
func (c *Client) SaveProduct(ctx context.Context, id int, update ProductUpdate) (Product, error) {
	resp, err := c.req.Do(ctx, http.MethodPut, productPath(id, ""), update)
	if err != nil {
		return Product{}, err
	}
	if !resp.OK() {
		return Product{}, writeError(resp, "Error al guardar el producto")
	}
	return decodeProduct(resp)
}

// SaveProductVideos replaces the product's videos, keeping urls' order.
func (c *Client) SaveProductVideos(ctx context.Context, id int, urls []string) error {
	payload := make([]videoPayload, 0, len(urls))
	for _, u := range urls {
		payload = append(payload, videoPayload{YouTubeURL: u})
	}
	resp, err := c.req.Do(ctx, http.MethodPut, productPath(id, "videos/"), payload)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return writeError(resp, "Error al guardar los videos")
	}
	return nil
}

// UpdateProductStatus requests a workflow transition and returns the
// product as the server left it.
func (c *Client) UpdateProductStatus(ctx context.Context, id int, update StatusUpdate) (Product, error) {
	resp, err := c.req.Do(ctx, http.MethodPatch, productPath(id, "status/update/"), update)
	if err != nil {
		return Product{}, err
	}
	if !resp.OK() {
		return Product{}, writeError(resp, "Error al actualizar el estado")
	}
	return decodeProduct(resp)
}

func decodeProduct(resp *gateway.Response) (Product, error) {
	var dto productDTO
	if err := resp.Decode(&dto); err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product")
	}
	p, err := toProduct(dto)
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid product")
	}
	return p, nil
}

func fetchError(resp *gateway.Response, message string) error {
	code := pkgerrors.CodeDependency
	if resp.Status == http.StatusNotFound {
		code = pkgerrors.CodeNotFound
	}
	return pkgerrors.Wrap(code, fmt.Errorf("status %d", resp.Status), message)
}

// writeError embeds the raw server body in the message.
func writeError(resp *gateway.Response, prefix string) error {
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s: %s", prefix, resp.Text())).
		WithDetails(map[string]any{"status": resp.Status})
}
