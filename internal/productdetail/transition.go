package productdetail

import (
	"context"
	"time"

	"github.com/angelmondragon/pim-console/internal/notifications"
	"github.com/angelmondragon/pim-console/internal/workflow"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

var transitionRefreshParts = []part{partProduct, partHistory}

// OpenConfirmation opens the confirmation step for action after checking
// that the actor may request it from the current state.
func (s *Session) OpenConfirmation(action enums.WorkflowAction) (workflow.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if err := s.requireLoaded(); err != nil {
		return workflow.Confirmation{}, err
	}
	if s.pending != enums.PendingNone {
		return workflow.Confirmation{}, s.pendingError()
	}
	if err := workflow.Check(action, s.actor, *s.product); err != nil {
		return workflow.Confirmation{}, err
	}
	return s.prompt.Open(action, *s.product)
}

// AdvanceConfirmation moves a reject confirmation to its comment step.
func (s *Session) AdvanceConfirmation() (workflow.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	c, ok := s.prompt.Advance()
	if !ok {
		return workflow.Confirmation{}, pkgerrors.New(pkgerrors.CodeStateConflict, "No hay una confirmación pendiente de comentario.")
	}
	return c, nil
}

// CancelConfirmation closes any open confirmation.
func (s *Session) CancelConfirmation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.prompt.Cancel()
}

// Confirm submits the open confirmation. On success the product and its
// history are refetched; on failure nothing local changes.
func (s *Session) Confirm(ctx context.Context, comment string) error {
	s.mu.Lock()
	s.touch()
	if err := s.requireLoaded(); err != nil {
		s.mu.Unlock()
		return err
	}
	c, open := s.prompt.Current()
	if !open {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "No hay ninguna acción por confirmar.")
	}
	if s.prompt.NeedsComment() {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "Debe continuar al paso de comentario antes de enviar.")
	}
	if !s.prompt.CanSubmit(comment) {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "El comentario de rechazo es obligatorio.")
	}
	update, err := workflow.Plan(c.Action, s.actor, *s.product, comment)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	pending := enums.PendingFor(c.Action)
	if err := s.claim(pending); err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.generation
	s.mu.Unlock()

	ctx = s.logg.WithField(s.ctx(ctx), "action", c.Action.String())
	start := time.Now()
	updated, err := s.deps.Backend.UpdateProductStatus(ctx, s.productID, update)

	var snap *snapshot
	if err == nil {
		snap, _ = s.fetch(ctx, transitionRefreshParts, false)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = enums.PendingNone
	s.deps.Metrics.Observe(pending.String(), time.Since(start), err)
	if s.closed || gen != s.generation {
		return ErrDiscarded
	}
	if err != nil {
		s.logg.Error(ctx, "status transition failed", err)
		s.notify(notifications.Error(notificationSource, pkgerrors.MessageOf(err)))
		return err
	}

	s.prompt.Cancel()
	if !snap.ok(partProduct) {
		// the PATCH response is still the server's view of the product
		snap.product = updated
		delete(snap.failed, partProduct)
	}
	s.apply(snap)
	if _, ferr := failures(snap, transitionRefreshParts); ferr != nil {
		s.logg.Error(ctx, "refresh after transition failed", ferr)
		s.notify(notifications.Warning(notificationSource, pkgerrors.MessageOf(ferr)))
	}
	s.logg.Info(ctx, "status transition applied")
	s.notify(notifications.Success(notificationSource, workflow.SuccessMessage(c.Action)))
	return nil
}
