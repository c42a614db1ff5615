package productdetail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pim-console/internal/notifications"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

const (
	msgEmptyName     = "El nombre del producto no puede estar vacío"
	msgSaved         = "Producto guardado exitosamente."
	msgRefreshFailed = "Los cambios se guardaron, pero no se pudo recargar el producto."
)

// Save persists the working copy: product fields with country settings and
// the ordered video list, concurrently. What the server accepted is then
// refetched; what it refused stays local so the user can retry.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	s.touch()
	if err := s.requireEditable(); err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeActionPending {
			s.deps.Metrics.IncRejected(enums.PendingSave.String())
		}
		s.mu.Unlock()
		return err
	}
	if strings.TrimSpace(s.product.Name) == "" {
		s.notify(notifications.Error(notificationSource, msgEmptyName))
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, msgEmptyName)
	}
	if err := s.claim(enums.PendingSave); err != nil {
		s.mu.Unlock()
		return err
	}
	update := products.UpdateFor(*s.product, s.matrix.Settings())
	urls := videoURLs(s)
	gen := s.generation
	s.mu.Unlock()

	ctx = s.ctx(ctx)
	start := time.Now()

	// No shared context: one failed slice must not cancel the other.
	var productErr, videoErr error
	var g errgroup.Group
	g.Go(func() error {
		_, productErr = s.deps.Backend.SaveProduct(ctx, s.productID, update)
		return productErr
	})
	g.Go(func() error {
		videoErr = s.deps.Backend.SaveProductVideos(ctx, s.productID, urls)
		return videoErr
	})
	saveErr := g.Wait()

	var refresh []part
	if productErr == nil {
		refresh = append(refresh, partProduct, partHistory)
	}
	if videoErr == nil {
		refresh = append(refresh, partVideos)
	}
	var snap *snapshot
	if len(refresh) > 0 {
		snap, _ = s.fetch(ctx, refresh, false)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = enums.PendingNone
	outcome := multierr.Combine(productErr, videoErr)
	s.deps.Metrics.Observe(enums.PendingSave.String(), time.Since(start), outcome)
	if s.closed || gen != s.generation {
		return ErrDiscarded
	}

	if snap != nil {
		s.apply(snap)
		if note, err := failures(snap, refresh); err != nil {
			s.logg.Error(ctx, "refresh after save failed", err)
			s.notify(notifications.Warning(notificationSource, msgRefreshFailed).WithDetails(note.Details))
		}
	}

	switch {
	case saveErr == nil:
		s.logg.Info(ctx, "product saved")
		s.notify(notifications.Success(notificationSource, msgSaved))
		return nil
	case productErr != nil && videoErr != nil:
		s.logg.Error(ctx, "product save failed", outcome)
		msg := pkgerrors.MessageOf(productErr) + " " + pkgerrors.MessageOf(videoErr)
		s.notify(notifications.Error(notificationSource, msg))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, outcome, msg)
	}

	saved, failed, failedErr := "videos", "datos del producto", productErr
	if productErr == nil {
		saved, failed, failedErr = "datos del producto", "videos", videoErr
	}
	s.logg.Error(ctx, "product save partially failed", failedErr)
	msg := fmt.Sprintf("Se guardaron los %s, pero fallaron los %s: %s", saved, failed, pkgerrors.MessageOf(failedErr))
	s.notify(notifications.Error(notificationSource, msg))
	return pkgerrors.Wrap(pkgerrors.CodePartial, failedErr, msg).
		WithDetails(map[string]string{"saved": saved, "failed": failed})
}

func videoURLs(s *Session) []string {
	items := s.videos.Items()
	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}
	return urls
}
