package workflow

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

type actorGate int

const (
	gateEditor actorGate = iota
	gateEditorNotAdmin
	gateAdmin
)

type transition struct {
	action          enums.WorkflowAction
	from            func(products.Product) bool
	to              enums.ProductStatus
	published       *bool
	gate            actorGate
	requiresComment bool
	forbidden       string
}

func statusIn(statuses ...enums.ProductStatus) func(products.Product) bool {
	return func(p products.Product) bool {
		for _, s := range statuses {
			if p.Status == s {
				return true
			}
		}
		return false
	}
}

func boolPtr(v bool) *bool {
	return &v
}

var transitions = map[enums.WorkflowAction]transition{
	enums.WorkflowActionRequestApproval: {
		action:    enums.WorkflowActionRequestApproval,
		from:      statusIn(enums.ProductStatusDraft, enums.ProductStatusEditing, enums.ProductStatusDeactivated),
		to:        enums.ProductStatusPendingApproval,
		gate:      gateEditorNotAdmin,
		forbidden: "No tiene permiso para solicitar aprobación para este producto.",
	},
	enums.WorkflowActionPublish: {
		action:    enums.WorkflowActionPublish,
		from:      statusIn(enums.ProductStatusPendingApproval, enums.ProductStatusDraft, enums.ProductStatusEditing, enums.ProductStatusDeactivated),
		to:        enums.ProductStatusPublished,
		published: boolPtr(true),
		gate:      gateAdmin,
		forbidden: "Solo los administradores pueden publicar un producto.",
	},
	enums.WorkflowActionReject: {
		action:          enums.WorkflowActionReject,
		from:            statusIn(enums.ProductStatusPendingApproval),
		to:              enums.ProductStatusEditing,
		gate:            gateAdmin,
		requiresComment: true,
		forbidden:       "Solo los administradores pueden rechazar una solicitud de aprobación.",
	},
	enums.WorkflowActionUnpublish: {
		action:    enums.WorkflowActionUnpublish,
		from:      HasBeenPublished,
		to:        enums.ProductStatusDeactivated,
		published: boolPtr(false),
		gate:      gateAdmin,
		forbidden: "Solo los administradores pueden despublicar un producto.",
	},
	enums.WorkflowActionReturnToEdit: {
		action:    enums.WorkflowActionReturnToEdit,
		from:      statusIn(enums.ProductStatusPublished),
		to:        enums.ProductStatusEditing,
		gate:      gateEditor,
		forbidden: "No tiene permiso para regresar este producto a edición.",
	},
}

// Target returns the status action leads to.
func Target(action enums.WorkflowAction) (enums.ProductStatus, bool) {
	t, ok := transitions[action]
	return t.to, ok
}

// RequiresComment reports whether action must carry a non-blank comment.
func RequiresComment(action enums.WorkflowAction) bool {
	return transitions[action].requiresComment
}

func (t transition) allows(actor Actor, p products.Product) bool {
	switch t.gate {
	case gateAdmin:
		return actor.IsAdmin()
	case gateEditorNotAdmin:
		return !actor.IsAdmin() && CanEdit(actor, p)
	default:
		return CanEdit(actor, p)
	}
}

// Check reports whether actor may request action on p in its current state,
// without looking at the comment.
func Check(action enums.WorkflowAction, actor Actor, p products.Product) error {
	t, ok := transitions[action]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown workflow action %q", action))
	}
	if !t.from(p) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("No se puede %s desde el estado '%s'.", actionVerb(action), p.Status)).
			WithDetails(map[string]string{"action": action.String(), "status": p.Status.String()})
	}
	if !t.allows(actor, p) {
		return pkgerrors.New(pkgerrors.CodeForbidden, t.forbidden)
	}
	return nil
}

// Plan validates action against p's current state and actor and returns the
// status PATCH to send. It never changes p; the caller refetches after the
// server accepts the transition.
func Plan(action enums.WorkflowAction, actor Actor, p products.Product, comment string) (products.StatusUpdate, error) {
	if err := Check(action, actor, p); err != nil {
		return products.StatusUpdate{}, err
	}
	t := transitions[action]

	update := products.StatusUpdate{StatusCode: t.to}
	if t.published != nil {
		published := *t.published
		update.Published = &published
	}
	if t.requiresComment {
		trimmed := strings.TrimSpace(comment)
		if trimmed == "" {
			return products.StatusUpdate{}, pkgerrors.New(pkgerrors.CodeValidation, "El comentario de rechazo es obligatorio.")
		}
		update.Message = &trimmed
	}
	return update, nil
}

// Available lists the actions actor may request on p, in display order.
func Available(actor Actor, p products.Product) []enums.WorkflowAction {
	var out []enums.WorkflowAction
	for _, action := range enums.WorkflowActions() {
		t := transitions[action]
		if t.from(p) && t.allows(actor, p) {
			out = append(out, action)
		}
	}
	return out
}

func actionVerb(action enums.WorkflowAction) string {
	switch action {
	case enums.WorkflowActionRequestApproval:
		return "solicitar aprobación"
	case enums.WorkflowActionPublish:
		return "publicar"
	case enums.WorkflowActionReject:
		return "rechazar"
	case enums.WorkflowActionUnpublish:
		return "despublicar"
	case enums.WorkflowActionReturnToEdit:
		return "regresar a edición"
	}
	return action.String()
}

// PendingMessage is the progress text shown while a mutating action runs.
func PendingMessage(p enums.PendingAction) string {
	switch p {
	case enums.PendingNone:
		return ""
	case enums.PendingPublish:
		return "Publicando producto..."
	case enums.PendingUnpublish:
		return "Despublicando producto..."
	case enums.PendingSave:
		return "Guardando datos..."
	case enums.PendingRequestApproval:
		return "Enviando solicitud de aprobación..."
	case enums.PendingReturnToEdit:
		return "Regresando a edición..."
	case enums.PendingReject:
		return "Rechazando producto..."
	}
	return "Procesando..."
}

// SuccessMessage is the notification shown after the server accepted action.
func SuccessMessage(action enums.WorkflowAction) string {
	switch action {
	case enums.WorkflowActionRequestApproval:
		return "Solicitud de aprobación enviada."
	case enums.WorkflowActionPublish:
		return "Producto publicado exitosamente."
	case enums.WorkflowActionReject:
		return "Producto rechazado y devuelto a edición."
	case enums.WorkflowActionUnpublish:
		return "Producto despublicado."
	case enums.WorkflowActionReturnToEdit:
		return "Producto regresado a edición."
	}
	return "Estado actualizado."
}
