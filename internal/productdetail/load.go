package productdetail

import (
	"context"
	"strings"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/pim-console/internal/media"
	"github.com/angelmondragon/pim-console/internal/notifications"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

// part is one independently fetched slice of the session state.
type part string

const (
	partProduct       part = "product"
	partVideos        part = "videos"
	partGallery       part = "gallery"
	partDocumentation part = "documentation"
	partHistory       part = "history"
	partReferences    part = "references"
)

var mountParts = []part{partProduct, partVideos, partGallery, partDocumentation, partHistory, partReferences}

// snapshot collects fetched slices. Each goroutine writes only its own field.
type snapshot struct {
	requested map[part]bool
	failed    map[part]error

	product products.Product
	videos  []products.Video
	gallery []media.Item
	docs    []media.Item
	history []products.HistoryEntry
	refs    []products.ProductRef
}

func (snap *snapshot) ok(p part) bool {
	if snap == nil || !snap.requested[p] {
		return false
	}
	_, failed := snap.failed[p]
	return !failed
}

// fetch loads parts concurrently. In strict mode the first failure cancels
// the rest and is returned; otherwise failures are recorded per part.
func (s *Session) fetch(ctx context.Context, parts []part, strict bool) (*snapshot, error) {
	snap := &snapshot{
		requested: make(map[part]bool, len(parts)),
		failed:    make(map[part]error),
	}
	for _, p := range parts {
		snap.requested[p] = true
	}

	g := &errgroup.Group{}
	gctx := ctx
	if strict {
		g, gctx = errgroup.WithContext(ctx)
	}
	errs := make([]error, len(parts))
	for i, p := range parts {
		i, p := i, p
		g.Go(func() error {
			err := s.fetchPart(gctx, p, snap)
			if strict {
				return err
			}
			errs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			snap.failed[parts[i]] = err
		}
	}
	return snap, nil
}

func (s *Session) fetchPart(ctx context.Context, p part, snap *snapshot) error {
	id := s.productID
	var err error
	switch p {
	case partProduct:
		snap.product, err = s.deps.Backend.GetProductDetails(ctx, id)
	case partVideos:
		snap.videos, err = s.deps.Backend.GetProductVideos(ctx, id)
	case partGallery:
		snap.gallery, err = s.deps.Media.Gallery(ctx, id)
	case partDocumentation:
		snap.docs, err = s.deps.Media.Documentation(ctx, id)
	case partHistory:
		snap.history, err = s.deps.Backend.GetProductHistory(ctx, id)
	case partReferences:
		snap.refs, err = s.deps.References.References(ctx)
	}
	return err
}

// apply writes every fetched slice into the session. Callers hold the lock.
func (s *Session) apply(snap *snapshot) {
	if snap.ok(partProduct) {
		p := snap.product
		s.product = &p
		s.matrix = regional.NewMatrix(p.CountrySettings)
		s.editingName = false
		s.savedName = ""
	}
	if snap.ok(partVideos) {
		s.videos.Reset(products.VideoItems(snap.videos))
	}
	if snap.ok(partGallery) {
		s.gallery.Reset(snap.gallery)
	}
	if snap.ok(partDocumentation) {
		s.docs.Reset(snap.docs)
	}
	if snap.ok(partHistory) {
		s.history = append([]products.HistoryEntry(nil), snap.history...)
	}
	if snap.ok(partReferences) {
		s.lookup = regional.NewLookup(snap.refs)
	}
}

// failures folds the failed parts, in parts order, into one error and one
// notification.
func failures(snap *snapshot, parts []part) (notifications.Notification, error) {
	var combined error
	var messages []string
	details := make(map[string]string)
	for _, p := range parts {
		err, failed := snap.failed[p]
		if !failed {
			continue
		}
		combined = multierr.Append(combined, err)
		msg := pkgerrors.MessageOf(err)
		details[string(p)] = msg
		messages = append(messages, msg)
	}
	if combined == nil {
		return notifications.Notification{}, nil
	}
	note := notifications.Error(notificationSource, strings.Join(messages, " ")).WithDetails(details)
	return note, combined
}

// Mount loads the product and all its sub-resources. A newer Mount or a
// Close while the requests are in flight makes this call return
// ErrDiscarded without touching the session.
func (s *Session) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.requireLoaded()
	}
	if s.pending != enums.PendingNone {
		defer s.mu.Unlock()
		return s.pendingError()
	}
	s.generation++
	gen := s.generation
	s.loading = true
	s.touch()
	strict := s.deps.Strict
	s.mu.Unlock()

	ctx = s.ctx(ctx)
	start := time.Now()
	snap, err := s.fetch(ctx, mountParts, strict)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		s.logg.Debug(ctx, "discarding stale product load")
		return ErrDiscarded
	}
	s.loading = false

	if err != nil {
		s.deps.Metrics.Observe("mount", time.Since(start), err)
		s.logg.Error(ctx, "product load aborted", err)
		s.notify(notifications.Error(notificationSource, pkgerrors.MessageOf(err)))
		return err
	}

	s.apply(snap)
	note, combined := failures(snap, mountParts)
	s.deps.Metrics.Observe("mount", time.Since(start), combined)
	if combined == nil {
		return nil
	}
	s.logg.Error(ctx, "product load incomplete", combined)
	s.notify(note)
	if perr, failed := snap.failed[partProduct]; failed {
		return perr
	}
	return nil
}
