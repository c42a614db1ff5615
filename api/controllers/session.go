package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pim-console/api/middleware"
	"github.com/angelmondragon/pim-console/api/responses"
	"github.com/angelmondragon/pim-console/api/validators"
	"github.com/angelmondragon/pim-console/pkg/auth"
	"github.com/angelmondragon/pim-console/pkg/auth/session"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/logger"
)

// SessionStore opens and ends console sessions.
type SessionStore interface {
	Open(ctx context.Context, access, refresh string, user auth.Actor) (session.Credentials, error)
	Terminate(ctx context.Context, sessionID, reason string) error
	LogoutReason(ctx context.Context, sessionID string) (string, error)
}

// OwnerCloser drops every detail session of a console session.
type OwnerCloser interface {
	CloseOwner(owner string) int
}

type openSessionRequest struct {
	Access  string          `json:"access" validate:"required"`
	Refresh string          `json:"refresh" validate:"required"`
	User    openSessionUser `json:"user" validate:"required"`
}

type openSessionUser struct {
	ID       int    `json:"id"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name"`
	Role     string `json:"role" validate:"omitempty,user_role"`
	Picture  string `json:"picture"`
}

type sessionResponse struct {
	SessionID string     `json:"session_id"`
	User      auth.Actor `json:"user"`
	OpenedAt  time.Time  `json:"opened_at"`
}

// SessionOpen stores the tokens handed over by the login flow and returns
// the console session id the shell presents from then on.
func SessionOpen(store SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload openSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user := auth.Actor{
			ID:       payload.User.ID,
			Email:    strings.TrimSpace(payload.User.Email),
			FullName: strings.TrimSpace(payload.User.FullName),
			Role:     enums.UserRole(payload.User.Role),
			Picture:  payload.User.Picture,
		}
		creds, err := store.Open(r.Context(), payload.Access, payload.Refresh, user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, openError(err))
			return
		}

		ctx := logg.WithSessionID(r.Context(), creds.SessionID)
		logg.Info(logg.WithActor(ctx, creds.User.Email, string(creds.User.Role)), "session.opened")

		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			SessionID: creds.SessionID,
			User:      creds.User,
			OpenedAt:  creds.OpenedAt,
		})
	}
}

func openError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, auth.ErrExpiredToken.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, auth.ErrInvalidToken.Error())
	case errors.Is(err, auth.ErrRoleChanged):
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, auth.ErrRoleChanged.Error())
	case errors.Is(err, session.ErrMissingEmail):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, session.ErrMissingEmail.Error())
	case errors.Is(err, session.ErrInvalidRole):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, session.ErrInvalidRole.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "no se pudo abrir la sesión")
}

// SessionClose logs the caller out and drops their detail sessions.
func SessionClose(store SessionStore, details OwnerCloser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Sesión requerida"))
			return
		}
		if err := store.Terminate(r.Context(), sessionID, ""); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
			return
		}
		closed := 0
		if details != nil {
			closed = details.CloseOwner(sessionID)
		}
		logg.Info(logg.WithField(r.Context(), "detail_sessions_closed", closed), "session.closed")
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// SessionLogoutReason returns, once, why the gateway ended a session.
func SessionLogoutReason(store SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "identificador inválido"))
			return
		}
		reason, err := store.LogoutReason(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read logout reason"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"reason": reason})
	}
}
