package controllers

import (
	"context"

	"github.com/angelmondragon/pim-console/internal/gateway"
	"github.com/angelmondragon/pim-console/internal/productdetail"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/internal/users"
)

// ProductAPI is the product surface of the upstream API for one session.
type ProductAPI interface {
	productdetail.Backend
	ListProducts(ctx context.Context) ([]products.Product, error)
}

// UserAPI is the user-management surface of the upstream API for one session.
type UserAPI interface {
	users.Service
	GetUser(ctx context.Context, id int) (users.User, error)
}

// Upstream builds resource clients bound to a console session.
type Upstream interface {
	Products(sessionID string) (ProductAPI, error)
	Users(sessionID string) (UserAPI, error)
}

// GatewayUpstream serves resource clients over the authenticated gateway.
type GatewayUpstream struct {
	Client *gateway.Client
}

func (g GatewayUpstream) Products(sessionID string) (ProductAPI, error) {
	c, err := products.NewClient(g.Client.For(sessionID))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (g GatewayUpstream) Users(sessionID string) (UserAPI, error) {
	c, err := users.NewClient(g.Client.For(sessionID))
	if err != nil {
		return nil, err
	}
	return c, nil
}
