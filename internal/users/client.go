package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/angelmondragon/pim-console/internal/gateway"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

// Client wraps the upstream user-management endpoints.
type Client struct {
	req gateway.Requester
}

// NewClient builds a user client issuing requests through req.
func NewClient(req gateway.Requester) (*Client, error) {
	if req == nil {
		return nil, errors.New("requester is required")
	}
	return &Client{req: req}, nil
}

func userPath(id int, suffix string) string {
	return fmt.Sprintf("/v1/users/%d/%s", id, suffix)
}

// ListUsers returns every console account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	resp, err := c.req.Do(ctx, http.MethodGet, "/v1/users/", nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, statusError(resp, "Error al obtener los usuarios")
	}
	var out []User
	if err := resp.Decode(&out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode user list")
	}
	if out == nil {
		out = []User{}
	}
	return out, nil
}

// GetUser fetches a single account.
func (c *Client) GetUser(ctx context.Context, id int) (User, error) {
	resp, err := c.req.Do(ctx, http.MethodGet, userPath(id, ""), nil)
	if err != nil {
		return User{}, err
	}
	if !resp.OK() {
		return User{}, statusError(resp, "Error al obtener los detalles del usuario")
	}
	var out User
	if err := resp.Decode(&out); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode user")
	}
	return out, nil
}

// UpdateUser applies a partial update.
func (c *Client) UpdateUser(ctx context.Context, id int, patch UserPatch) (User, error) {
	resp, err := c.req.Do(ctx, http.MethodPatch, userPath(id, ""), patch)
	if err != nil {
		return User{}, err
	}
	if !resp.OK() {
		return User{}, bodyError(resp, "Error al actualizar el usuario")
	}
	var out User
	if err := resp.Decode(&out); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode user")
	}
	return out, nil
}

// AssignFamilies replaces the user's family assignments.
func (c *Client) AssignFamilies(ctx context.Context, id int, assignments []FamilyAssignment) error {
	resp, err := c.req.Do(ctx, http.MethodPut, userPath(id, "families/assign"), toAssignmentPayload(assignments))
	if err != nil {
		return err
	}
	if !resp.OK() {
		return bodyError(resp, "Error al asignar familias")
	}
	return nil
}

func statusError(resp *gateway.Response, message string) error {
	code := pkgerrors.CodeDependency
	if resp.Status == http.StatusNotFound {
		code = pkgerrors.CodeNotFound
	}
	return pkgerrors.Wrap(code, fmt.Errorf("status %d", resp.Status), message)
}

func bodyError(resp *gateway.Response, prefix string) error {
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s: %s", prefix, resp.Text())).
		WithDetails(map[string]any{"status": resp.Status})
}
