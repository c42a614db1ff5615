package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/pim-console/api/middleware"
	"github.com/angelmondragon/pim-console/api/responses"
	"github.com/angelmondragon/pim-console/api/validators"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/logger"
)

const maxQueryLen = 120

// ProductList serves the product list screen: every product visible to the
// caller, narrowed by the q, product_type, status and published filters.
func ProductList(upstream Upstream, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		api, err := upstream.Products(middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "product client unavailable"))
			return
		}
		list, err := api.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products.FilterProducts(list, filter))
	}
}

func parseListFilter(r *http.Request) (products.ListFilter, error) {
	q := r.URL.Query()
	filter := products.ListFilter{
		Query:       validators.SanitizeString(q.Get("q"), maxQueryLen),
		ProductType: strings.TrimSpace(q.Get("product_type")),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseProductStatus(raw)
		if err != nil {
			return products.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "estado desconocido").
				WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}
	published, err := validators.ParseQueryBool(r, "published")
	if err != nil {
		return products.ListFilter{}, err
	}
	filter.Published = published
	return filter, nil
}
