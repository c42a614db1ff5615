package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

type sampleBody struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,user_role"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.cl","role":"administrator"}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Email != "a@b.cl" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.cl","extra":1}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","role":"owner"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["email"] != "debe ser un correo válido" || details["role"] != "rol desconocido" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?published=true&bad=maybe", nil)
	got, err := ParseQueryBool(req, "published")
	if err != nil || got == nil || !*got {
		t.Fatalf("expected true, got %v err=%v", got, err)
	}
	if got, err := ParseQueryBool(req, "missing"); err != nil || got != nil {
		t.Fatalf("expected nil for missing key")
	}
	if _, err := ParseQueryBool(req, "bad"); err == nil {
		t.Fatalf("expected error for non-boolean")
	}
}

func TestParsePathID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", "42")
	rctx.URLParams.Add("bad", "-1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	id, err := ParsePathID(req, "productID")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d err=%v", id, err)
	}
	if _, err := ParsePathID(req, "bad"); err == nil {
		t.Fatalf("expected error for non-positive id")
	}
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	if got := SanitizeString("  ñandú  ", 3); got != "ñan" {
		t.Fatalf("unexpected %q", got)
	}
	if got := SanitizeString(" x ", 0); got != "x" {
		t.Fatalf("unexpected %q", got)
	}
}
