package controllers

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/pkg/auth"
	"github.com/angelmondragon/pim-console/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

func TestCountryValueByField(t *testing.T) {
	cases := []struct {
		field regional.Field
		raw   string
		want  string
		fails bool
	}{
		{regional.FieldEnabled, `true`, "true", false},
		{regional.FieldSellable, `"yes"`, "", true},
		{regional.FieldCategory, `"premium"`, "premium", false},
		{regional.FieldRelated, `["12345","67890"]`, "[12345 67890]", false},
		{regional.FieldSubstitute, `null`, "[]", false},
		{regional.FieldRelated, `"12345"`, "", true},
	}
	for _, tc := range cases {
		got, err := countryValue(tc.field, json.RawMessage(tc.raw))
		if tc.fails {
			if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
				t.Fatalf("%s %s: expected validation error, got %v", tc.field, tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s %s: unexpected error %v", tc.field, tc.raw, err)
		}
		if s := fmt.Sprint(got); s != tc.want {
			t.Fatalf("%s %s: got %s want %s", tc.field, tc.raw, s, tc.want)
		}
	}
}

func TestOpenErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code pkgerrors.Code
	}{
		{auth.ErrExpiredToken, pkgerrors.CodeUnauthorized},
		{fmt.Errorf("%w: bad segment", auth.ErrInvalidToken), pkgerrors.CodeUnauthorized},
		{auth.ErrRoleChanged, pkgerrors.CodeUnauthorized},
		{session.ErrMissingEmail, pkgerrors.CodeValidation},
		{fmt.Errorf("%w: %q", session.ErrInvalidRole, "owner"), pkgerrors.CodeValidation},
		{fmt.Errorf("dial tcp: refused"), pkgerrors.CodeDependency},
	}
	for _, tc := range cases {
		if got := pkgerrors.CodeOf(openError(tc.err)); got != tc.code {
			t.Fatalf("%v: got %s want %s", tc.err, got, tc.code)
		}
	}
}

func TestGatewayUpstreamSatisfiesInterfaces(t *testing.T) {
	var _ Upstream = GatewayUpstream{}
	var _ ProductAPI = (*products.Client)(nil)
}
