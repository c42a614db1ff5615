package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pim-console/api/responses"
	"github.com/angelmondragon/pim-console/api/validators"
	"github.com/angelmondragon/pim-console/internal/media"
	"github.com/angelmondragon/pim-console/internal/productdetail"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

const (
	uploadField           = "files"
	defaultMaxUploadBytes = 64 << 20
)

type videoRequest struct {
	URL string `json:"url"`
}

type reorderRequest struct {
	FromID string `json:"from_id" validate:"required"`
	ToID   string `json:"to_id" validate:"required"`
}

type dragRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

type dropRequest struct {
	ToID string `json:"to_id" validate:"required"`
}

type uploadResponse struct {
	Result media.AddResult    `json:"result"`
	View   productdetail.View `json:"view"`
}

type videoResponse struct {
	Item *media.Item        `json:"item,omitempty"`
	View productdetail.View `json:"view"`
}

func mediaKind(r *http.Request) (enums.MediaKind, error) {
	kind, err := enums.ParseMediaKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "colección desconocida")
	}
	return kind, nil
}

// Uploads adds the multipart "files" parts to the gallery or documentation,
// in the order they were sent.
func (d Detail) Uploads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		kind, err := mediaKind(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		limit := d.MaxUploadBytes
		if limit <= 0 {
			limit = defaultMaxUploadBytes
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Formulario de archivos inválido"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		uploads, err := readUploads(r.MultipartForm.File[uploadField])
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}

		result, note, err := s.AddUploads(kind, uploads)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		var notification any
		if !note.IsZero() {
			notification = note
		}
		responses.WriteNotified(w, uploadResponse{Result: result, View: s.View()}, notification)
	}
}

func readUploads(headers []*multipart.FileHeader) ([]media.Upload, error) {
	uploads := make([]media.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "No se pudo leer el archivo "+fh.Filename)
		}
		uploads = append(uploads, media.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return uploads, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// AddVideo appends a YouTube link. Refusals come back as the notification.
func (d Detail) AddVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		var payload videoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		item, note, err := s.AddVideo(payload.URL)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		responses.WriteNotified(w, videoResponse{Item: item, View: s.View()}, note)
	}
}

// RemoveItem deletes one item. Item ids may contain slashes and are sent
// path-escaped.
func (d Detail) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		kind, err := mediaKind(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		itemID, err := url.PathUnescape(chi.URLParam(r, "itemID"))
		if err != nil || strings.TrimSpace(itemID) == "" {
			responses.WriteError(r.Context(), d.Logger, w, pkgerrors.New(pkgerrors.CodeValidation, "identificador inválido"))
			return
		}
		_, err = s.RemoveMedia(kind, itemID)
		d.respond(w, r, s, err)
	}
}

func (d Detail) Reorder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		kind, err := mediaKind(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		var payload reorderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		_, err = s.ReorderMedia(kind, payload.FromID, payload.ToID)
		d.respond(w, r, s, err)
	}
}

func (d Detail) DragStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		kind, err := mediaKind(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		var payload dragRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		_, err = s.DragStart(kind, payload.ItemID)
		d.respond(w, r, s, err)
	}
}

// Drop ends a drag on the target item, reordering the collection.
func (d Detail) Drop() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		kind, err := mediaKind(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		var payload dropRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		_, err = s.DragEnd(kind, payload.ToID)
		d.respond(w, r, s, err)
	}
}

func (d Detail) DragCancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := d.session(w, r)
		if !ok {
			return
		}
		kind, err := mediaKind(r)
		if err != nil {
			responses.WriteError(r.Context(), d.Logger, w, err)
			return
		}
		d.respond(w, r, s, s.DragCancel(kind))
	}
}
