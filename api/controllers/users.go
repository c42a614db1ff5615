package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/pim-console/api/middleware"
	"github.com/angelmondragon/pim-console/api/responses"
	"github.com/angelmondragon/pim-console/api/validators"
	"github.com/angelmondragon/pim-console/internal/users"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/logger"
)

type saveUserRequest struct {
	IsActive          *bool               `json:"is_active" validate:"required"`
	Role              string              `json:"role" validate:"required,user_role"`
	FamilyAssignments []assignmentRequest `json:"family_assignments" validate:"dive"`
}

type assignmentRequest struct {
	AreaID      *int `json:"area_id" validate:"omitempty,gt=0"`
	FamilyID    *int `json:"family_id" validate:"omitempty,gt=0"`
	SubfamilyID *int `json:"subfamily_id" validate:"omitempty,gt=0"`
}

func (r saveUserRequest) assignments() []users.FamilyAssignment {
	out := make([]users.FamilyAssignment, 0, len(r.FamilyAssignments))
	for _, a := range r.FamilyAssignments {
		out = append(out, users.FamilyAssignment{AreaID: a.AreaID, FamilyID: a.FamilyID, SubfamilyID: a.SubfamilyID})
	}
	return out
}

func directoryFor(upstream Upstream, r *http.Request, logg *logger.Logger) (UserAPI, *users.Directory, error) {
	api, err := upstream.Users(middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "user client unavailable")
	}
	dir, err := users.NewDirectory(api, logg)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "user directory unavailable")
	}
	return api, dir, nil
}

// UserList serves the user-management screen, filtered by search,
// is_active and role.
func UserList(upstream Upstream, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := users.Filter{Search: validators.SanitizeString(r.URL.Query().Get("search"), maxQueryLen)}
		active, err := validators.ParseQueryBool(r, "is_active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.IsActive = active
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			role, err := enums.ParseUserRole(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "rol desconocido"))
				return
			}
			filter.Role = role
		}

		_, dir, err := directoryFor(upstream, r, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := dir.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// UserSave applies the edit form of one user and returns the refreshed list.
func UserSave(upstream Upstream, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.ParsePathID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload saveUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		api, dir, err := directoryFor(upstream, r, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		current, err := api.GetUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form := users.Form{IsActive: *payload.IsActive, Role: enums.UserRole(payload.Role)}
		list, note, err := dir.Save(r.Context(), current, form, payload.assignments())
		if err != nil {
			responses.WriteErrorNotified(r.Context(), logg, w, err, note)
			return
		}
		responses.WriteNotified(w, list, note)
	}
}
