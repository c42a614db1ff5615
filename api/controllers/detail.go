package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pim-console/api/middleware"
	"github.com/angelmondragon/pim-console/api/responses"
	"github.com/angelmondragon/pim-console/api/validators"
	"github.com/angelmondragon/pim-console/internal/productdetail"
	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/internal/workflow"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/logger"
)

const maxCommentLen = 2000

// Detail groups the collaborators of the product detail handlers.
type Detail struct {
	Registry       *productdetail.Registry
	Upstream       Upstream
	Logger         *logger.Logger
	MaxUploadBytes int64
}

type fieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

type countryRequest struct {
	Field string          `json:"field" validate:"required"`
	Value json.RawMessage `json:"value"`
}

type confirmationRequest struct {
	Action string `json:"action" validate:"required,workflow_action"`
}

type submitRequest struct {
	Comment string `json:"comment"`
}

// session resolves the open detail session of the caller for the product
// in the URL, writing the error response when there is none.
func (d Detail) session(w http.ResponseWriter, r *http.Request) (*productdetail.Session, bool) {
	productID, err := validators.ParsePathID(r, "productID")
	if err != nil {
		responses.WriteError(r.Context(), d.Logger, w, err)
		return nil, false
	}
	s, ok := d.Registry.Get(middleware.SessionIDFromContext(r.Context()), productID)
	if !ok || s.Closed() {
		responses.WriteError(r.Context(), d.Logger, w, pkgerrors.New(pkgerrors.CodeNotFound, "El detalle del producto no está abierto."))
		return nil, false
	}
	return s, true
}

// respond writes the session view, or err when set.
func (d Detail) respond(w http.ResponseWriter, r *http.Request, s *productdetail.Session, err error) {
	if err != nil {
		responses.WriteError(r.Context(), d.Logger, w, detailError(err))
		return
	}
	responses.WriteSuccess(w, s.View())
}

func detailError(err error) error {
	if errors.Is(err, productdetail.ErrDiscarded) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "La carga fue reemplazada por una más reciente.")
	}
	return err
}

// Mount opens (or reuses) the caller's session for the product and loads it.
func (d Detail) Mount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		owner := middleware.SessionIDFromContext(r.Context())
		user, ok := middleware.ActorFromContext(r.Context())
		if owner == "" || !ok {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Sesión requerida"))
			return
		}

		backend, err := d.Upstream.Products(owner)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "product client unavailable"))
			return
		}
		actor := workflow.Actor{Email: user.Email, Role: user.Role}
		s, _, err := d.Registry.Open(owner, productID, actor, backend)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open product session"))
			return
		}
		d.respond(w, r, s, s.Mount(r.Context()))
	}
}

func (d Detail) View() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		responses.WriteSuccess(w, s.View())
	}
}

// Close ends the caller's session for the product and frees its uploads.
func (d Detail) Close() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		closed := d.Registry.Close(middleware.SessionIDFromContext(r.Context()), productID)
		responses.WriteSuccess(w, map[string]bool{"closed": closed})
	}
}

func (d Detail) SetField() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		var payload fieldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		field, err := productdetail.ParseField(payload.Field)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		d.respond(w, r, s, s.SetField(field, payload.Value))
	}
}

func (d Detail) BeginNameEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		d.respond(w, r, s, s.BeginNameEdit())
	}
}

func (d Detail) CancelNameEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		d.respond(w, r, s, s.CancelNameEdit())
	}
}

// UpdateCountry edits one cell of the regional matrix. The JSON type of
// value follows the field: bool for enabled/sellable, a category code for
// category and a list of SKUs for related/substitute.
func (d Detail) UpdateCountry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		code, err := enums.ParseCountryCode(chi.URLParam(r, "country"))
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "país desconocido"))
			return
		}
		var payload countryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		field, err := regional.ParseField(payload.Field)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "campo desconocido"))
			return
		}
		value, err := countryValue(field, payload.Value)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		_, err = s.UpdateCountry(code, field, value)
		d.respond(w, r, s, err)
	}
}

func countryValue(field regional.Field, raw json.RawMessage) (any, error) {
	invalid := func(err error) error {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "valor inválido").
			WithDetails(map[string]string{"field": string(field)})
	}
	switch field {
	case regional.FieldEnabled, regional.FieldSellable:
		var flag bool
		if err := json.Unmarshal(raw, &flag); err != nil {
			return nil, invalid(err)
		}
		return flag, nil
	case regional.FieldCategory:
		var code string
		if err := json.Unmarshal(raw, &code); err != nil {
			return nil, invalid(err)
		}
		return code, nil
	case regional.FieldRelated, regional.FieldSubstitute:
		var skus []string
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &skus); err != nil {
				return nil, invalid(err)
			}
		}
		if skus == nil {
			skus = []string{}
		}
		return skus, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "campo desconocido")
}

func (d Detail) Save() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		d.respond(w, r, s, s.Save(r.Context()))
	}
}

func (d Detail) OpenConfirmation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		var payload confirmationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		_, err := s.OpenConfirmation(enums.WorkflowAction(payload.Action))
		d.respond(w, r, s, err)
	}
}

// AdvanceConfirmation moves a reject prompt to its comment step.
func (d Detail) AdvanceConfirmation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		_, err := s.AdvanceConfirmation()
		d.respond(w, r, s, err)
	}
}

func (d Detail) CancelConfirmation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		s.CancelConfirmation()
		d.respond(w, r, s, nil)
	}
}

func (d Detail) SubmitConfirmation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		var payload submitRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), d.Logger, w, err)
				return
			}
		}
		comment := validators.SanitizeString(payload.Comment, maxCommentLen)
		d.respond(w, r, s, s.Confirm(r.Context(), comment))
	}
}

// Notifications drains the toasts queued by the session since the last call.
func (d Detail) Notifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		responses.WriteSuccess(w, s.Notifications().Drain())
	}
}

// Blob serves the bytes of a file added in this session but not yet saved.
func (d Detail) Blob() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		ref := strings.TrimSpace(chi.URLParam(r, "ref"))
		blob, found := s.Blob("blob:" + strings.TrimPrefix(ref, "blob:"))
		if !found {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.New(pkgerrors.CodeNotFound, "Archivo no encontrado"))
			return
		}
		w.Header().Set("Content-Type", blob.MIMEType)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(blob.Data)
	}
}
