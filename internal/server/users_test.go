package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"bloodaid/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Run("creates an active donor", func(t *testing.T) {
		env := newTestEnv(t)

		var created *types.User
		env.users.MockCreate = func(ctx context.Context, user *types.User) error {
			created = user
			return nil
		}

		body := []byte(`{"email":"New.Donor@Example.com","name":"New Donor","bloodGroup":"B+","district":"Dhaka","upazila":"Mirpur"}`)
		rr := env.do(http.MethodPost, "/users", "", body)

		assert.Equal(t, http.StatusCreated, rr.Code)
		require.NotNil(t, created)
		assert.Equal(t, "new.donor@example.com", created.Email)
		assert.Equal(t, types.RoleDonor, created.Role)
		assert.Equal(t, types.UserStatusActive, created.Status)
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		env := newTestEnv(t)

		env.users.MockCreate = func(ctx context.Context, user *types.User) error {
			return types.ErrUserExists
		}

		body := []byte(`{"email":"dup@example.com","name":"Dup","bloodGroup":"O+","district":"Dhaka","upazila":"Mirpur"}`)
		rr := env.do(http.MethodPost, "/users", "", body)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "already exists")
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(http.MethodPost, "/users", "", []byte(`{"email":"x@example.com"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListUsers(t *testing.T) {
	t.Run("donor is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, testUser("donor@example.com", types.RoleDonor))

		rr := env.do(http.MethodGet, "/users", token, nil)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("volunteer is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, testUser("vol@example.com", types.RoleVolunteer))

		rr := env.do(http.MethodGet, "/users", token, nil)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin gets a paginated list", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, testUser("admin@example.com", types.RoleAdmin))

		env.users.MockUsers = func(ctx context.Context, status *types.UserStatus, page, limit uint64) ([]*types.User, int64, error) {
			assert.Equal(t, uint64(2), page)
			assert.Equal(t, uint64(10), limit)

			// 15 matching records, page 2 holds the last 5.
			users := make([]*types.User, 0, 5)
			for i := 0; i < 5; i++ {
				users = append(users, testUser(fmt.Sprintf("u%d@example.com", i), types.RoleDonor))
			}
			return users, 15, nil
		}

		rr := env.do(http.MethodGet, "/users?page=2&limit=10", token, nil)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data  []*types.User `json:"data"`
			Total int64         `json:"total"`
			Page  uint64        `json:"page"`
			Limit uint64        `json:"limit"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

		assert.Len(t, resp.Data, 5)
		assert.Equal(t, int64(15), resp.Total)
		assert.Equal(t, uint64(2), resp.Page)
	})
}

func TestProfile(t *testing.T) {
	t.Run("get returns the authenticated user", func(t *testing.T) {
		env := newTestEnv(t)
		user := testUser("me@example.com", types.RoleDonor)
		token := env.login(t, user)

		rr := env.do(http.MethodGet, "/users/profile", token, nil)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "me@example.com")
	})

	t.Run("update goes to the token subject, not the payload", func(t *testing.T) {
		env := newTestEnv(t)
		user := testUser("me@example.com", types.RoleDonor)
		token := env.login(t, user)

		var updatedEmail string
		env.users.MockUpdateProfile = func(ctx context.Context, email string, update *types.UserProfileUpdate) error {
			updatedEmail = email
			return nil
		}

		body := []byte(`{"name":"Renamed","bloodGroup":"A-","district":"Sylhet","upazila":"Beanibazar"}`)
		rr := env.do(http.MethodPut, "/users/profile", token, body)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "me@example.com", updatedEmail)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(http.MethodGet, "/users/profile", "", nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestChangeRole(t *testing.T) {
	t.Run("admin promotes a user", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, testUser("admin@example.com", types.RoleAdmin))

		var gotID string
		var gotRole types.Role
		env.users.MockUpdateRole = func(ctx context.Context, userID string, role types.Role) error {
			gotID, gotRole = userID, role
			return nil
		}

		rr := env.do(http.MethodPatch, "/users/role/abc123", token, []byte(`{"role":"volunteer"}`))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "abc123", gotID)
		assert.Equal(t, types.RoleVolunteer, gotRole)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, testUser("admin@example.com", types.RoleAdmin))

		rr := env.do(http.MethodPatch, "/users/role/abc123", token, []byte(`{"role":"superuser"}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("donor forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.login(t, testUser("donor@example.com", types.RoleDonor))

		rr := env.do(http.MethodPatch, "/users/role/abc123", token, []byte(`{"role":"admin"}`))

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestChangeStatus(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, testUser("admin@example.com", types.RoleAdmin))

	var gotStatus types.UserStatus
	env.users.MockUpdateStatus = func(ctx context.Context, userID string, status types.UserStatus) error {
		gotStatus = status
		return nil
	}

	rr := env.do(http.MethodPatch, "/users/status/abc123", token, []byte(`{"status":"blocked"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, types.UserStatusBlocked, gotStatus)
}

func TestSearchDonors(t *testing.T) {
	env := newTestEnv(t)

	var gotFilter types.DonorFilter
	env.users.MockSearchDonors = func(ctx context.Context, filter types.DonorFilter) ([]*types.User, error) {
		gotFilter = filter
		return []*types.User{testUser("match@example.com", types.RoleDonor)}, nil
	}

	rr := env.do(http.MethodGet, "/search/donors?bloodGroup=O%2B&district=Dhaka&upazila=Mirpur", "", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "O+", gotFilter.BloodGroup)
	assert.Equal(t, "Dhaka", gotFilter.District)
	assert.Equal(t, "Mirpur", gotFilter.Upazila)
	assert.Contains(t, rr.Body.String(), "match@example.com")
}
