package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/pim-console/pkg/auth"
	"github.com/angelmondragon/pim-console/pkg/auth/session"
	"github.com/angelmondragon/pim-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

type fakeStore struct {
	mu         sync.Mutex
	creds      map[string]session.Credentials
	terminated map[string]string
}

func newFakeStore(creds session.Credentials) *fakeStore {
	return &fakeStore{
		creds:      map[string]session.Credentials{creds.SessionID: creds},
		terminated: map[string]string{},
	}
}

func (f *fakeStore) Load(_ context.Context, id string) (session.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	creds, ok := f.creds[id]
	if !ok {
		return session.Credentials{}, session.ErrSessionNotFound
	}
	return creds, nil
}

func (f *fakeStore) UpdateAccess(_ context.Context, id, access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	creds := f.creds[id]
	creds.Access = access
	f.creds[id] = creds
	return nil
}

func (f *fakeStore) Terminate(_ context.Context, id, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.creds, id)
	f.terminated[id] = reason
	return nil
}

func (f *fakeStore) reason(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminated[id]
}

func token(t *testing.T, role enums.UserRole) string {
	t.Helper()
	claims := auth.TokenClaims{
		UserID: 7,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func testCreds(t *testing.T) session.Credentials {
	return session.Credentials{
		SessionID: "sess-1",
		Access:    "stale-access",
		Refresh:   "refresh-token",
		User:      auth.Actor{ID: 7, Email: "pm@example.com", Role: enums.UserRoleProductManager},
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, store CredentialStore, opts ...Option) *Client {
	t.Helper()
	client, err := New(srv.URL+"/", store, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestDoSendsBearerAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/products/5/" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer stale-access" {
			t.Fatalf("unexpected authorization %q", got)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("content type missing")
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["name"] != "Drill" {
			t.Fatalf("unexpected payload %+v", payload)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"id":5}`)
	}))
	defer srv.Close()

	store := newFakeStore(testCreds(t))
	resp, err := newTestClient(t, srv, store).For("sess-1").Do(context.Background(), http.MethodPut, "/v1/products/5/", map[string]string{"name": "Drill"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if !resp.OK() || resp.Text() != `{"id":5}` {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDoRefreshesOnceAndRetries(t *testing.T) {
	fresh := token(t, enums.UserRoleProductManager)
	var calls, refreshes int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			atomic.AddInt32(&refreshes, 1)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["refresh"] != "refresh-token" {
				t.Fatalf("unexpected refresh body %+v", body)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"access": fresh})
			return
		}
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer "+fresh {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	store := newFakeStore(testCreds(t))
	resp, err := newTestClient(t, srv, store).For("sess-1").Do(context.Background(), http.MethodGet, "/v1/products/5/history/", nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d", resp.Status)
	}
	if atomic.LoadInt32(&calls) != 2 || atomic.LoadInt32(&refreshes) != 1 {
		t.Fatalf("expected 2 calls and 1 refresh, got %d and %d", atomic.LoadInt32(&calls), atomic.LoadInt32(&refreshes))
	}
	stored, _ := store.Load(context.Background(), "sess-1")
	if stored.Access != fresh {
		t.Fatalf("refreshed access token not stored")
	}
}

func TestDoTerminatesWhenRefreshFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var hooked string
	store := newFakeStore(testCreds(t))
	client := newTestClient(t, srv, store, WithTerminationHook(func(id, reason string) { hooked = id + ":" + reason }))

	_, err := client.For("sess-1").Do(context.Background(), http.MethodGet, "/v1/products/", nil)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeTerminated {
		t.Fatalf("expected terminated error, got %v", err)
	}
	if store.reason("sess-1") != ReasonRefreshFailed {
		t.Fatalf("unexpected reason %q", store.reason("sess-1"))
	}
	if hooked != "sess-1:"+ReasonRefreshFailed {
		t.Fatalf("termination hook not called, got %q", hooked)
	}
}

func TestDoKeepsSessionWhenCallerCancelsDuringRefresh(t *testing.T) {
	fresh := token(t, enums.UserRoleProductManager)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			time.Sleep(200 * time.Millisecond)
			_ = json.NewEncoder(w).Encode(map[string]string{"access": fresh})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var hooked int32
	store := newFakeStore(testCreds(t))
	client := newTestClient(t, srv, store, WithTerminationHook(func(string, string) { atomic.AddInt32(&hooked, 1) }))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.For("sess-1").Do(ctx, http.MethodGet, "/v1/products/", nil)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if reason := store.reason("sess-1"); reason != "" {
		t.Fatalf("session terminated on caller cancellation: %q", reason)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		stored, err := store.Load(context.Background(), "sess-1")
		if err != nil {
			t.Fatalf("session lost: %v", err)
		}
		if stored.Access == fresh {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("detached refresh never stored the new access token")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if atomic.LoadInt32(&hooked) != 0 {
		t.Fatalf("termination hook fired")
	}
}

func TestDoKeepsSessionWhenRefreshTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			time.Sleep(200 * time.Millisecond)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := newFakeStore(testCreds(t))
	client := newTestClient(t, srv, store, WithRefreshTimeout(30*time.Millisecond))

	_, err := client.For("sess-1").Do(context.Background(), http.MethodGet, "/v1/products/", nil)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if reason := store.reason("sess-1"); reason != "" {
		t.Fatalf("session terminated on refresh timeout: %q", reason)
	}
	if _, err := store.Load(context.Background(), "sess-1"); err != nil {
		t.Fatalf("expected session to survive, got %v", err)
	}
}

func TestDoTerminatesOnRoleChange(t *testing.T) {
	promoted := token(t, enums.UserRoleAdministrator)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			_ = json.NewEncoder(w).Encode(map[string]string{"access": promoted})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := newFakeStore(testCreds(t))
	_, err := newTestClient(t, srv, store).For("sess-1").Do(context.Background(), http.MethodGet, "/v1/products/", nil)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeTerminated {
		t.Fatalf("expected terminated error, got %v", err)
	}
	if store.reason("sess-1") != ReasonRoleChanged {
		t.Fatalf("unexpected reason %q", store.reason("sess-1"))
	}
}

func TestDoTerminatesOnForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	store := newFakeStore(testCreds(t))
	_, err := newTestClient(t, srv, store).For("sess-1").Do(context.Background(), http.MethodPatch, "/v1/products/5/status/update/", map[string]string{"status_code": "published"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden || typed.Message() != ReasonForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if store.reason("sess-1") != ReasonForbidden {
		t.Fatalf("unexpected reason %q", store.reason("sess-1"))
	}
}

func TestDoPassesOtherStatusesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"name":["required"]}`)
	}))
	defer srv.Close()

	store := newFakeStore(testCreds(t))
	resp, err := newTestClient(t, srv, store).For("sess-1").Do(context.Background(), http.MethodPut, "/v1/products/5/", map[string]string{})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if resp.OK() || resp.Status != http.StatusBadRequest || resp.Text() != `{"name":["required"]}` {
		t.Fatalf("unexpected response %+v", resp)
	}
	if store.reason("sess-1") != "" {
		t.Fatalf("session should stay open")
	}
}

func TestDoUnknownSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected")
	}))
	defer srv.Close()

	store := newFakeStore(testCreds(t))
	_, err := newTestClient(t, srv, store).For("other").Do(context.Background(), http.MethodGet, "/v1/products/", nil)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestNewValidatesInput(t *testing.T) {
	if _, err := New(" ", newFakeStore(session.Credentials{})); err == nil {
		t.Fatalf("expected base url error")
	}
	if _, err := New("http://api.test", nil); err == nil {
		t.Fatalf("expected store error")
	}
}
