package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/pim-console/api/responses"
	"github.com/angelmondragon/pim-console/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/logger"
)

const sessionHeader = "X-PIM-Session"

// SessionLoader resolves a console session id to its stored credentials.
type SessionLoader interface {
	Load(ctx context.Context, sessionID string) (session.Credentials, error)
}

// SessionIDFromRequest reads the console session id from the X-PIM-Session
// header, falling back to a bearer Authorization header.
func SessionIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(sessionHeader)); id != "" {
		return id
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}

// ConsoleSession loads the caller's console session and seeds the request
// context with its id and actor.
func ConsoleSession(loader SessionLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := SessionIDFromRequest(r)
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Sesión requerida"))
				return
			}

			creds, err := loader.Load(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, session.ErrSessionNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Sesión no encontrada o expirada"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}

			ctx := WithSession(r.Context(), creds.SessionID, creds.User)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, creds.SessionID)
				ctx = logg.WithActor(ctx, creds.User.Email, string(creds.User.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
