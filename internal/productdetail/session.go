// Package productdetail composes the product client, the media collections,
// the regional matrix and the workflow machine into one editing session per
// console user and product.
package productdetail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/angelmondragon/pim-console/internal/media"
	"github.com/angelmondragon/pim-console/internal/notifications"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/internal/workflow"
	"github.com/angelmondragon/pim-console/pkg/config"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/angelmondragon/pim-console/pkg/logger"
	"github.com/angelmondragon/pim-console/pkg/metrics"
)

const notificationSource = "product"

// ErrDiscarded is returned when results arrive for a session that was closed
// or remounted while the request was in flight. Nothing was applied.
var ErrDiscarded = errors.New("product detail: stale result discarded")

// Backend is the subset of the product client a session drives.
type Backend interface {
	GetProductDetails(ctx context.Context, id int) (products.Product, error)
	GetProductHistory(ctx context.Context, id int) ([]products.HistoryEntry, error)
	GetProductVideos(ctx context.Context, id int) ([]products.Video, error)
	SaveProduct(ctx context.Context, id int, update products.ProductUpdate) (products.Product, error)
	SaveProductVideos(ctx context.Context, id int, urls []string) error
	UpdateProductStatus(ctx context.Context, id int, update products.StatusUpdate) (products.Product, error)
}

// Deps carries the collaborators shared by every session.
type Deps struct {
	Backend    Backend
	Media      products.MediaSource
	References products.ReferenceSource
	MediaCfg   config.MediaConfig
	Strict     bool
	BusSize    int
	Metrics    *metrics.ActionMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

func (d Deps) validate() error {
	if d.Backend == nil {
		return errors.New("product backend is required")
	}
	return d.validateShared()
}

func (d Deps) validateShared() error {
	if d.Media == nil {
		return errors.New("media source is required")
	}
	if d.References == nil {
		return errors.New("reference source is required")
	}
	return nil
}

// Session is the working copy of one product for one console user. Every
// exported method is safe for concurrent use. Network calls run without the
// lock; their results are applied only if the session still expects them.
type Session struct {
	mu sync.Mutex

	productID int
	actor     workflow.Actor
	deps      Deps
	logg      *logger.Logger
	bus       *notifications.Bus

	blobs   *media.Blobs
	gallery *media.Manager
	docs    *media.Manager
	videos  *media.Manager

	product     *products.Product
	matrix      regional.Matrix
	lookup      regional.Lookup
	history     []products.HistoryEntry
	editingName bool
	savedName   string

	pending enums.PendingAction
	prompt  workflow.Prompt

	generation uint64
	loading    bool
	closed     bool
	lastUsed   time.Time
}

// NewSession prepares an unmounted session for productID.
func NewSession(productID int, actor workflow.Actor, deps Deps) (*Session, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	blobs := media.NewBlobs()
	gallery, err := media.NewManager(media.GalleryPolicy(deps.MediaCfg), blobs)
	if err != nil {
		return nil, err
	}
	docs, err := media.NewManager(media.DocumentationPolicy(deps.MediaCfg), blobs)
	if err != nil {
		return nil, err
	}
	videos, err := media.NewManager(media.VideoPolicy(deps.MediaCfg), blobs)
	if err != nil {
		return nil, err
	}

	return &Session{
		productID: productID,
		actor:     actor,
		deps:      deps,
		logg:      deps.Logger,
		bus:       notifications.NewBus(deps.BusSize),
		blobs:     blobs,
		gallery:   gallery,
		docs:      docs,
		videos:    videos,
		matrix:    regional.NewMatrix(nil),
		lastUsed:  deps.Now(),
	}, nil
}

func (s *Session) ProductID() int {
	return s.productID
}

// Actor returns the user the session gates edits for.
func (s *Session) Actor() workflow.Actor {
	return s.actor
}

// Notifications exposes the session's outward notification channel.
func (s *Session) Notifications() *notifications.Bus {
	return s.bus
}

// Blob serves the bytes behind a transient upload reference.
func (s *Session) Blob(ref string) (media.Blob, bool) {
	return s.blobs.Get(ref)
}

// LastUsed is the time of the most recent call into the session.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Close unmounts the session and releases every transient upload. Results
// still in flight are discarded when they arrive.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.gallery.Release()
	s.docs.Release()
	s.videos.Release()
	s.prompt.Cancel()
	s.bus.Close()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) touch() {
	s.lastUsed = s.deps.Now()
}

func (s *Session) ctx(ctx context.Context) context.Context {
	ctx = s.logg.WithActor(ctx, s.actor.Email, s.actor.Role.String())
	return s.logg.WithField(ctx, "product_id", s.productID)
}

func (s *Session) notify(n notifications.Notification) {
	if s.closed {
		return
	}
	s.bus.Publish(n)
}

// requireLoaded fails when the session cannot serve reads or edits. Callers
// hold the lock.
func (s *Session) requireLoaded() error {
	if s.closed {
		return pkgerrors.New(pkgerrors.CodeConflict, "la sesión del producto fue cerrada")
	}
	if s.product == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "el producto aún no se ha cargado")
	}
	return nil
}

// requireEditable additionally enforces the read-only gate and the
// pending-action token. Callers hold the lock.
func (s *Session) requireEditable() error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	if workflow.ReadOnly(s.actor, *s.product) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "El contenido del producto es de solo lectura.")
	}
	if s.pending != enums.PendingNone {
		return s.pendingError()
	}
	return nil
}

func (s *Session) pendingError() error {
	return pkgerrors.New(pkgerrors.CodeActionPending, workflow.PendingMessage(s.pending)).
		WithDetails(map[string]string{"pending_action": s.pending.String()})
}

// claim takes the pending-action token. Callers hold the lock.
func (s *Session) claim(p enums.PendingAction) error {
	if s.pending != enums.PendingNone {
		s.deps.Metrics.IncRejected(p.String())
		return s.pendingError()
	}
	s.pending = p
	return nil
}
