package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetsight/fleetsight/internal/shared"
)

type stubUserRepository struct {
	users   []User
	updated *User
}

func (s *stubUserRepository) GetUser(_ context.Context, id string) (User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (s *stubUserRepository) GetUserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (s *stubUserRepository) ListUsers(context.Context) ([]User, error) {
	return s.users, nil
}

func (s *stubUserRepository) UpdateAccess(_ context.Context, id, role string, siteIDs, vehicleIDs, sectionOverride []string) (User, error) {
	user, err := s.GetUser(context.Background(), id)
	if err != nil {
		return User{}, err
	}
	user.Role = role
	user.AssignedSiteIDs = siteIDs
	user.AssignedVehicleIDs = vehicleIDs
	user.SectionOverride = sectionOverride
	s.updated = &user
	return user, nil
}

func seedUsers(n int) []User {
	out := make([]User, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, User{
			ID:       fmt.Sprintf("u%02d", i),
			Email:    fmt.Sprintf("user%02d@acme.test", i),
			Role:     "user",
			IsActive: true,
		})
	}
	return out
}

func newUsersRouter(repo *stubUserRepository) chi.Router {
	r := chi.NewRouter()
	NewHandler(NewService(repo), nil).Mount(r)
	return r
}

func TestListUsersPaginates(t *testing.T) {
	router := newUsersRouter(&stubUserRepository{users: seedUsers(25)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?page=2&per_page=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users      []json.RawMessage `json:"users"`
		Page       int               `json:"page"`
		Total      int               `json:"total"`
		TotalPages int               `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Users, 10)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 25, body.Total)
	assert.Equal(t, 3, body.TotalPages)
}

func TestListUsersDefaultsPagination(t *testing.T) {
	router := newUsersRouter(&stubUserRepository{users: seedUsers(5)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users   []json.RawMessage `json:"users"`
		PerPage int               `json:"per_page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Users, 5)
	assert.Equal(t, 20, body.PerPage)
}

func TestUpdateAccessEndpoint(t *testing.T) {
	repo := &stubUserRepository{users: seedUsers(1)}
	router := newUsersRouter(repo)

	body := `{"role":"batcher","assigned_site_ids":["S1"],"assigned_vehicle_ids":[],"section_override":[]}`
	req := httptest.NewRequest(http.MethodPut, "/users/u00/access", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, repo.updated)
	assert.Equal(t, "batcher", repo.updated.Role)
	assert.Equal(t, []string{"S1"}, repo.updated.AssignedSiteIDs)
}

func TestUpdateAccessRejectsUnknownRole(t *testing.T) {
	router := newUsersRouter(&stubUserRepository{users: seedUsers(1)})

	req := httptest.NewRequest(http.MethodPut, "/users/u00/access", strings.NewReader(`{"role":"owner"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAccessUnknownUser(t *testing.T) {
	router := newUsersRouter(&stubUserRepository{})

	req := httptest.NewRequest(http.MethodPut, "/users/ghost/access", strings.NewReader(`{"role":"viewer"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
