package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/pim-console/internal/notifications"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/enums"
	"github.com/angelmondragon/pim-console/pkg/logger"
	"github.com/angelmondragon/pim-console/pkg/textsearch"
)

const notificationSource = "users"

// Service is the subset of Client the directory depends on.
type Service interface {
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id int, patch UserPatch) (User, error)
	AssignFamilies(ctx context.Context, id int, assignments []FamilyAssignment) error
}

// Filter narrows the user list. Zero values disable each criterion.
type Filter struct {
	Search   string
	IsActive *bool
	Role     enums.UserRole
}

// Form is the edited state of a single user.
type Form struct {
	IsActive bool
	Role     enums.UserRole
}

// Directory backs the user-management screen.
type Directory struct {
	svc  Service
	logg *logger.Logger
}

// NewDirectory binds a directory to svc. A nil logg discards output.
func NewDirectory(svc Service, logg *logger.Logger) (*Directory, error) {
	if svc == nil {
		return nil, errors.New("user service is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Directory{svc: svc, logg: logg}, nil
}

// List returns the users matching f.
func (d *Directory) List(ctx context.Context, f Filter) ([]User, error) {
	all, err := d.svc.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return FilterUsers(all, f), nil
}

// FilterUsers applies f to users, keeping input order.
func FilterUsers(users []User, f Filter) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if !textsearch.Matches(f.Search, u.FullName, u.Email) {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		if f.Role != "" && u.RoleCode() != f.Role {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Diff computes the patch turning current into form.
func Diff(current User, form Form) (UserPatch, error) {
	var patch UserPatch
	if form.IsActive != current.IsActive {
		active := form.IsActive
		patch.IsActive = &active
	}
	if form.Role != "" {
		if !form.Role.IsValid() {
			return UserPatch{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rol desconocido %q", form.Role))
		}
		if form.Role != current.RoleCode() {
			id := form.Role.ID()
			patch.RoleID = &id
		}
	}
	return patch, nil
}

// Save patches the changed fields of current, replaces its family
// assignments and returns the refreshed user list. The notification always
// describes the outcome.
func (d *Directory) Save(ctx context.Context, current User, form Form, assignments []FamilyAssignment) ([]User, notifications.Notification, error) {
	patch, err := Diff(current, form)
	if err != nil {
		return nil, saveFailed(err), err
	}
	ctx = d.logg.WithField(ctx, "user_id", current.ID)

	if !patch.Empty() {
		if _, err := d.svc.UpdateUser(ctx, current.ID, patch); err != nil {
			d.logg.Error(ctx, "update user", err)
			return nil, saveFailed(err), err
		}
	}
	if assignments == nil {
		assignments = []FamilyAssignment{}
	}
	if err := d.svc.AssignFamilies(ctx, current.ID, assignments); err != nil {
		d.logg.Error(ctx, "assign families", err)
		return nil, saveFailed(err), err
	}
	refreshed, err := d.svc.ListUsers(ctx)
	if err != nil {
		d.logg.Error(ctx, "refresh users", err)
		return nil, saveFailed(err), err
	}
	d.logg.Info(ctx, "user saved")
	return refreshed, notifications.Success(notificationSource, "Usuario guardado exitosamente"), nil
}

func saveFailed(err error) notifications.Notification {
	return notifications.Error(notificationSource, "Error al guardar: "+pkgerrors.MessageOf(err))
}
