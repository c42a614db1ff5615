package workflow

import (
	"strings"
	"testing"

	"github.com/angelmondragon/pim-console/pkg/enums"
)

func TestPromptRejectNeedsCommentStep(t *testing.T) {
	var pr Prompt
	p := product(enums.ProductStatusPendingApproval, false)

	c, err := pr.Open(enums.WorkflowActionReject, p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.Stage != StageConfirm || !c.RequiresComment || c.Title != "Rechazar Producto" {
		t.Fatalf("unexpected confirmation %+v", c)
	}
	if !strings.Contains(c.Question, `"Taladro" (SKU: SKU-1)`) {
		t.Fatalf("question should name the product: %q", c.Question)
	}
	if pr.CanSubmit("motivo") {
		t.Fatalf("reject cannot be sent from the confirm step")
	}

	c, ok := pr.Advance()
	if !ok || c.Stage != StageComment || c.SubmitLabel != "Rechazar y Enviar" {
		t.Fatalf("unexpected comment step %+v", c)
	}
	if pr.CanSubmit("  ") {
		t.Fatalf("blank comment must not be actionable")
	}
	if !pr.CanSubmit("Falta ficha técnica") {
		t.Fatalf("comment should make reject actionable")
	}
	if _, ok := pr.Advance(); ok {
		t.Fatalf("comment step cannot advance again")
	}

	pr.Cancel()
	if _, open := pr.Current(); open {
		t.Fatalf("cancel should close the confirmation")
	}
	if pr.CanSubmit("x") {
		t.Fatalf("nothing to submit after cancel")
	}
}

func TestPromptSimpleActions(t *testing.T) {
	var pr Prompt
	c, err := pr.Open(enums.WorkflowActionPublish, product(enums.ProductStatusPendingApproval, false))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if c.RequiresComment || c.Title != "Publicar Producto" {
		t.Fatalf("unexpected confirmation %+v", c)
	}
	if pr.NeedsComment() || !pr.CanSubmit("") {
		t.Fatalf("publish should be submittable right away")
	}

	if _, err := pr.Open("archive", product(enums.ProductStatusDraft, false)); err == nil {
		t.Fatalf("expected error for unknown action")
	}
	if current, _ := pr.Current(); current.Action != enums.WorkflowActionPublish {
		t.Fatalf("failed open must keep the current confirmation")
	}
}
