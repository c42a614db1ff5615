package users

import (
	"github.com/angelmondragon/pim-console/pkg/enums"
)

// Role is the role object embedded in the upstream user payload.
type Role struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// FamilyAssignment scopes a user to an area/family/subfamily triple.
// Nil ids widen the scope to every value at that level.
type FamilyAssignment struct {
	ID          int  `json:"id,omitempty"`
	AreaID      *int `json:"area_id"`
	FamilyID    *int `json:"family_id"`
	SubfamilyID *int `json:"subfamily_id"`
}

// User is a console account as returned by the user endpoints.
type User struct {
	ID                int                `json:"id"`
	Email             string             `json:"email"`
	FullName          string             `json:"full_name"`
	Picture           string             `json:"picture,omitempty"`
	IsActive          bool               `json:"is_active"`
	Role              *Role              `json:"role"`
	FamilyAssignments []FamilyAssignment `json:"family_assignments"`
}

// RoleCode returns the user's role, or the empty role when unset or unknown.
func (u User) RoleCode() enums.UserRole {
	if u.Role == nil {
		return ""
	}
	role, err := enums.ParseUserRole(u.Role.Code)
	if err != nil {
		return ""
	}
	return role
}

// UserPatch carries only the fields being changed.
type UserPatch struct {
	IsActive *bool `json:"is_active,omitempty"`
	RoleID   *int  `json:"role_id,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.IsActive == nil && p.RoleID == nil
}

type assignmentPayload struct {
	AreaID      *int `json:"area_id"`
	FamilyID    *int `json:"family_id"`
	SubfamilyID *int `json:"subfamily_id"`
}

func toAssignmentPayload(assignments []FamilyAssignment) []assignmentPayload {
	out := make([]assignmentPayload, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, assignmentPayload{
			AreaID:      a.AreaID,
			FamilyID:    a.FamilyID,
			SubfamilyID: a.SubfamilyID,
		})
	}
	return out
}
