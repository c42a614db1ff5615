package enums

import "fmt"

// UserRole is the console-wide role carried in the access token.
type UserRole string

const (
	UserRoleAdministrator  UserRole = "administrator"
	UserRoleProductManager UserRole = "product_manager"
	UserRoleDefaultUser    UserRole = "default_user"
)

var validUserRoles = []UserRole{
	UserRoleAdministrator,
	UserRoleProductManager,
	UserRoleDefaultUser,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

var userRoleIDs = map[UserRole]int{
	UserRoleAdministrator:  1,
	UserRoleProductManager: 2,
	UserRoleDefaultUser:    3,
}

// ID returns the upstream role identifier, or 0 for an unknown role.
func (r UserRole) ID() int {
	return userRoleIDs[r]
}

// UserRoleByID maps an upstream role identifier back to its code.
func UserRoleByID(id int) (UserRole, bool) {
	for role, roleID := range userRoleIDs {
		if roleID == id {
			return role, true
		}
	}
	return "", false
}
