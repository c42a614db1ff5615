package users

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/angelmondragon/pim-console/internal/gateway"
	pkgerrors "github.com/angelmondragon/pim-console/pkg/errors"
)

type recordedCall struct {
	method string
	path   string
	body   any
}

type stubRequester struct {
	calls     []recordedCall
	responses map[string]*gateway.Response
}

func (s *stubRequester) Do(_ context.Context, method, path string, body any) (*gateway.Response, error) {
	s.calls = append(s.calls, recordedCall{method: method, path: path, body: body})
	if resp, ok := s.responses[method+" "+path]; ok {
		return resp, nil
	}
	return &gateway.Response{Status: http.StatusNotFound}, nil
}

const usersJSON = `[
	{"id": 1, "email": "ana@example.com", "full_name": "Ana Núñez", "is_active": true,
	 "role": {"id": 1, "code": "administrator", "name": "Administrador"},
	 "family_assignments": [{"id": 7, "user": 1, "area_id": 2, "family_id": null, "subfamily_id": null}]},
	{"id": 2, "email": "pm@example.com", "full_name": "Pedro Martínez", "is_active": false,
	 "role": {"id": 2, "code": "product_manager", "name": "Product Manager"}, "family_assignments": []}
]`

func TestListUsersDecodesRoles(t *testing.T) {
	stub := &stubRequester{responses: map[string]*gateway.Response{
		"GET /v1/users/": {Status: http.StatusOK, Body: []byte(usersJSON)},
	}}
	client, err := NewClient(stub)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].RoleCode() != "administrator" || users[1].RoleCode() != "product_manager" {
		t.Fatalf("unexpected roles %q %q", users[0].RoleCode(), users[1].RoleCode())
	}
	if got := users[0].FamilyAssignments; len(got) != 1 || got[0].AreaID == nil || *got[0].AreaID != 2 || got[0].FamilyID != nil {
		t.Fatalf("unexpected assignments %+v", got)
	}
}

func TestListUsersFailure(t *testing.T) {
	stub := &stubRequester{responses: map[string]*gateway.Response{
		"GET /v1/users/": {Status: http.StatusInternalServerError},
	}}
	client, _ := NewClient(stub)
	_, err := client.ListUsers(context.Background())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if pkgerrors.MessageOf(err) != "Error al obtener los usuarios" {
		t.Fatalf("unexpected message %q", pkgerrors.MessageOf(err))
	}
}

func TestUpdateUserSendsOnlyChangedFields(t *testing.T) {
	stub := &stubRequester{responses: map[string]*gateway.Response{
		"PATCH /v1/users/2/": {Status: http.StatusOK, Body: []byte(`{"id": 2, "email": "pm@example.com", "is_active": true}`)},
	}}
	client, _ := NewClient(stub)
	active := true
	if _, err := client.UpdateUser(context.Background(), 2, UserPatch{IsActive: &active}); err != nil {
		t.Fatalf("update user: %v", err)
	}
	raw, err := json.Marshal(stub.calls[0].body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"is_active":true}` {
		t.Fatalf("unexpected payload %s", raw)
	}
}

func TestUpdateUserEmbedsServerBody(t *testing.T) {
	stub := &stubRequester{responses: map[string]*gateway.Response{
		"PATCH /v1/users/2/": {Status: http.StatusBadRequest, Body: []byte(`{"role_id":["invalid"]}`)},
	}}
	client, _ := NewClient(stub)
	roleID := 9
	_, err := client.UpdateUser(context.Background(), 2, UserPatch{RoleID: &roleID})
	msg := pkgerrors.MessageOf(err)
	if !strings.HasPrefix(msg, "Error al actualizar el usuario: ") || !strings.Contains(msg, "invalid") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestAssignFamiliesPayload(t *testing.T) {
	stub := &stubRequester{responses: map[string]*gateway.Response{
		"PUT /v1/users/2/families/assign": {Status: http.StatusOK, Body: []byte(`[]`)},
	}}
	client, _ := NewClient(stub)
	area, family := 3, 4
	err := client.AssignFamilies(context.Background(), 2, []FamilyAssignment{{ID: 99, AreaID: &area, FamilyID: &family}})
	if err != nil {
		t.Fatalf("assign families: %v", err)
	}
	raw, _ := json.Marshal(stub.calls[0].body)
	if string(raw) != `[{"area_id":3,"family_id":4,"subfamily_id":null}]` {
		t.Fatalf("unexpected payload %s", raw)
	}
}

func TestAssignFamiliesFailure(t *testing.T) {
	stub := &stubRequester{responses: map[string]*gateway.Response{
		"PUT /v1/users/2/families/assign": {Status: http.StatusBadRequest, Body: []byte("bad area")},
	}}
	client, _ := NewClient(stub)
	err := client.AssignFamilies(context.Background(), 2, nil)
	if pkgerrors.MessageOf(err) != "Error al asignar familias: bad area" {
		t.Fatalf("unexpected message %q", pkgerrors.MessageOf(err))
	}
}

func TestNewClientRequiresRequester(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Fatalf("expected error for nil requester")
	}
}
