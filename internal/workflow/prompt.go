package workflow

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

// Stage is the step of an open confirmation.
type Stage string

const (
	StageConfirm Stage = "confirm"
	StageComment Stage = "comment"
)

// Confirmation is the dialog the console shows before a transition is sent.
type Confirmation struct {
	Action          enums.WorkflowAction `json:"action"`
	Stage           Stage                `json:"stage"`
	RequiresComment bool                 `json:"requires_comment"`
	Title           string               `json:"title"`
	Question        string               `json:"question"`
	SubmitLabel     string               `json:"submit_label"`
}

// Prompt tracks the one confirmation a product-detail session may have open.
// Actions needing a comment go through a confirm step and then a comment step.
type Prompt struct {
	open *Confirmation
}

// Open shows the confirmation for action on p, replacing any open one.
func (pr *Prompt) Open(action enums.WorkflowAction, p products.Product) (Confirmation, error) {
	if _, ok := transitions[action]; !ok {
		return Confirmation{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown workflow action %q", action))
	}
	c := confirmationFor(action, p)
	pr.open = &c
	return c, nil
}

// Current returns the open confirmation.
func (pr *Prompt) Current() (Confirmation, bool) {
	if pr.open == nil {
		return Confirmation{}, false
	}
	return *pr.open, true
}

// Cancel closes the open confirmation.
func (pr *Prompt) Cancel() {
	pr.open = nil
}

// NeedsComment reports whether the open confirmation must move to its
// comment step before it can be submitted.
func (pr *Prompt) NeedsComment() bool {
	return pr.open != nil && pr.open.RequiresComment && pr.open.Stage == StageConfirm
}

// Advance moves a comment-requiring confirmation to its comment step.
func (pr *Prompt) Advance() (Confirmation, bool) {
	if !pr.NeedsComment() {
		return Confirmation{}, false
	}
	pr.open.Stage = StageComment
	pr.open.Title = "Añadir Comentario de Rechazo"
	pr.open.Question = "Por favor, añade un comentario sobre por qué estás rechazando este producto."
	pr.open.SubmitLabel = "Rechazar y Enviar"
	return *pr.open, true
}

// CanSubmit reports whether the open confirmation may be sent with comment.
func (pr *Prompt) CanSubmit(comment string) bool {
	if pr.open == nil {
		return false
	}
	if !pr.open.RequiresComment {
		return true
	}
	return pr.open.Stage == StageComment && strings.TrimSpace(comment) != ""
}

func confirmationFor(action enums.WorkflowAction, p products.Product) Confirmation {
	subject := fmt.Sprintf("el producto \"%s\" (SKU: %s)", p.Name, p.SKU)
	c := Confirmation{
		Action:          action,
		Stage:           StageConfirm,
		RequiresComment: RequiresComment(action),
		SubmitLabel:     "Confirmar",
	}
	switch action {
	case enums.WorkflowActionRequestApproval:
		c.Title = "Solicitar Aprobación"
		c.Question = fmt.Sprintf("¿Estás seguro de que quieres solicitar la aprobación para %s?", subject)
	case enums.WorkflowActionPublish:
		c.Title = "Publicar Producto"
		c.Question = fmt.Sprintf("¿Estás seguro de que quieres publicar %s? Una vez publicado, será visible en la tienda.", subject)
	case enums.WorkflowActionUnpublish:
		c.Title = "Despublicar Producto"
		c.Question = fmt.Sprintf("¿Estás seguro de que quieres despublicar %s? Ya no será visible en la tienda.", subject)
	case enums.WorkflowActionReject:
		c.Title = "Rechazar Producto"
		c.Question = fmt.Sprintf("¿Estás seguro de que quieres rechazar %s? Esto lo devolverá al estado de edición.", subject)
		c.SubmitLabel = "Continuar para añadir comentario"
	case enums.WorkflowActionReturnToEdit:
		c.Title = "Regresar a Edición"
		c.Question = fmt.Sprintf("¿Estás seguro de que quieres regresar %s a edición?", subject)
	}
	return c
}
