package productdetail

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pim-console/internal/media"
	"github.com/angelmondragon/pim-console/internal/products"
	"github.com/angelmondragon/pim-console/internal/regional"
	"github.com/angelmondragon/pim-console/internal/workflow"
	"github.com/angelmondragon/pim-console/pkg/config"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var (
	admin     = workflow.Actor{Email: "admin@example.com", Role: enums.UserRoleAdministrator}
	manager   = workflow.Actor{Email: "pm@example.com", Role: enums.UserRoleProductManager}
	outsider  = workflow.Actor{Email: "other@example.com", Role: enums.UserRoleProductManager}
	viewer    = workflow.Actor{Email: "viewer@example.com", Role: enums.UserRoleDefaultUser}
	errRemote = pkgerrors.New(pkgerrors.CodeDependency, "upstream down")
)

// fakeBackend plays the upstream API. It mutates its own product on writes
// so refetches observe the server's view.
type fakeBackend struct {
	mu      sync.Mutex
	product products.Product
	videos  []products.Video
	history []products.HistoryEntry
	calls   map[string]int

	getErr      map[string]error
	saveErr     error
	videosErr   error
	statusErr   error
	lastUpdate  products.ProductUpdate
	lastURLs    []string
	lastStatus  products.StatusUpdate
	holdSave    chan struct{}
	saveEntered chan struct{}
	holdDetails chan struct{}
	nextHistory int
}

func newFakeBackend(status enums.ProductStatus) *fakeBackend {
	return &fakeBackend{
		product: products.Product{
			ID:           7,
			SKU:          "SKU-7",
			Name:         "Taladro",
			Status:       status,
			Published:    status == enums.ProductStatusPublished,
			RelatedUsers: []products.RelatedUser{{Email: manager.Email}},
			CountrySettings: []regional.Setting{
				{CountryCode: enums.CountryChile, Enabled: true},
			},
		},
		videos:      []products.Video{{ID: 1, YouTubeURL: "https://youtu.be/slciq1LkXFw", Order: 0}},
		history:     []products.HistoryEntry{{ID: 1, ProductID: 7, NewStatus: enums.ProductStatusDraft}},
		calls:       make(map[string]int),
		getErr:      make(map[string]error),
		nextHistory: 2,
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) GetProductDetails(ctx context.Context, _ int) (products.Product, error) {
	f.record("details")
	if f.holdDetails != nil {
		select {
		case <-f.holdDetails:
		case <-ctx.Done():
			return products.Product{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr["product"]; err != nil {
		return products.Product{}, err
	}
	return f.product.Clone(), nil
}

func (f *fakeBackend) GetProductHistory(context.Context, int) ([]products.HistoryEntry, error) {
	f.record("history")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr["history"]; err != nil {
		return nil, err
	}
	return append([]products.HistoryEntry(nil), f.history...), nil
}

func (f *fakeBackend) GetProductVideos(context.Context, int) ([]products.Video, error) {
	f.record("videos")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr["videos"]; err != nil {
		return nil, err
	}
	return append([]products.Video(nil), f.videos...), nil
}

func (f *fakeBackend) SaveProduct(ctx context.Context, _ int, update products.ProductUpdate) (products.Product, error) {
	f.record("save")
	if f.saveEntered != nil {
		f.saveEntered <- struct{}{}
	}
	if f.holdSave != nil {
		select {
		case <-f.holdSave:
		case <-ctx.Done():
			return products.Product{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = update
	if f.saveErr != nil {
		return products.Product{}, f.saveErr
	}
	f.product.Name = update.Name
	f.product.Description = update.Description
	f.product.CountrySettings = update.CountrySettings
	return f.product.Clone(), nil
}

func (f *fakeBackend) SaveProductVideos(_ context.Context, _ int, urls []string) error {
	f.record("save_videos")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastURLs = append([]string(nil), urls...)
	if f.videosErr != nil {
		return f.videosErr
	}
	f.videos = f.videos[:0]
	for i, u := range urls {
		f.videos = append(f.videos, products.Video{ID: 100 + i, YouTubeURL: u, Order: i})
	}
	return nil
}

func (f *fakeBackend) UpdateProductStatus(_ context.Context, _ int, update products.StatusUpdate) (products.Product, error) {
	f.record("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastStatus = update
	if f.statusErr != nil {
		return products.Product{}, f.statusErr
	}
	old := f.product.Status
	f.product.Status = update.StatusCode
	if update.Published != nil {
		f.product.Published = *update.Published
	}
	entry := products.HistoryEntry{
		ID:        f.nextHistory,
		ProductID: f.product.ID,
		OldStatus: old,
		NewStatus: update.StatusCode,
		CreatedAt: time.Date(2026, 1, f.nextHistory, 0, 0, 0, 0, time.UTC),
	}
	if update.Message != nil {
		entry.Message = *update.Message
	}
	f.nextHistory++
	f.history = append([]products.HistoryEntry{entry}, f.history...)
	return f.product.Clone(), nil
}

type failingMedia struct{}

func (failingMedia) Gallery(context.Context, int) ([]media.Item, error) {
	return nil, errors.New("gallery offline")
}

func (failingMedia) Documentation(context.Context, int) ([]media.Item, error) {
	return nil, errors.New("docs offline")
}

func testMediaConfig() config.MediaConfig {
	return config.MediaConfig{
		GalleryMaxItems:   10,
		GalleryMaxBytes:   200 * 1024,
		GalleryWidth:      500,
		GalleryHeight:     500,
		GalleryMIMETypes:  "image/jpeg",
		DocumentMaxItems:  10,
		DocumentMaxBytes:  5 * 1024 * 1024,
		DocumentMIMETypes: "application/pdf",
		VideoMaxItems:     3,
	}
}

func testDeps(backend Backend) Deps {
	return Deps{
		Backend:    backend,
		Media:      products.DefaultFixtureMedia(),
		References: products.DefaultFixtureReferences(),
		MediaCfg:   testMediaConfig(),
	}
}

func mountedSession(t *testing.T, backend *fakeBackend, actor workflow.Actor) *Session {
	t.Helper()
	s, err := NewSession(7, actor, testDeps(backend))
	require.NoError(t, err)
	require.NoError(t, s.Mount(context.Background()))
	s.Notifications().Drain()
	return s
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}
