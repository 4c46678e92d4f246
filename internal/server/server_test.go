package server

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"bloodaid/internal/auth"
	"bloodaid/internal/payment"
	"bloodaid/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct {
	MockUserByEmail    func(ctx context.Context, email string) (*types.User, error)
	MockUser           func(ctx context.Context, userID string) (*types.User, error)
	MockUsers          func(ctx context.Context, status *types.UserStatus, page, limit uint64) ([]*types.User, int64, error)
	MockSearchDonors   func(ctx context.Context, filter types.DonorFilter) ([]*types.User, error)
	MockCreate         func(ctx context.Context, user *types.User) error
	MockUpdateProfile  func(ctx context.Context, email string, update *types.UserProfileUpdate) error
	MockUpdateRole     func(ctx context.Context, userID string, role types.Role) error
	MockUpdateStatus   func(ctx context.Context, userID string, status types.UserStatus) error
}

func (m *mockUserStore) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	if m.MockUserByEmail != nil {
		return m.MockUserByEmail(ctx, email)
	}
	return nil, types.ErrUserNotFound
}

func (m *mockUserStore) User(ctx context.Context, userID string) (*types.User, error) {
	if m.MockUser != nil {
		return m.MockUser(ctx, userID)
	}
	return nil, types.ErrUserNotFound
}

func (m *mockUserStore) Users(ctx context.Context, status *types.UserStatus, page, limit uint64) ([]*types.User, int64, error) {
	if m.MockUsers != nil {
		return m.MockUsers(ctx, status, page, limit)
	}
	return []*types.User{}, 0, nil
}

func (m *mockUserStore) SearchDonors(ctx context.Context, filter types.DonorFilter) ([]*types.User, error) {
	if m.MockSearchDonors != nil {
		return m.MockSearchDonors(ctx, filter)
	}
	return []*types.User{}, nil
}

func (m *mockUserStore) Create(ctx context.Context, user *types.User) error {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, user)
	}
	return nil
}

func (m *mockUserStore) UpdateProfile(ctx context.Context, email string, update *types.UserProfileUpdate) error {
	if m.MockUpdateProfile != nil {
		return m.MockUpdateProfile(ctx, email, update)
	}
	return nil
}

func (m *mockUserStore) UpdateRole(ctx context.Context, userID string, role types.Role) error {
	if m.MockUpdateRole != nil {
		return m.MockUpdateRole(ctx, userID, role)
	}
	return nil
}

func (m *mockUserStore) UpdateStatus(ctx context.Context, userID string, status types.UserStatus) error {
	if m.MockUpdateStatus != nil {
		return m.MockUpdateStatus(ctx, userID, status)
	}
	return nil
}

type mockRequestStore struct {
	MockRequest       func(ctx context.Context, requestID string) (*types.DonationRequest, error)
	MockRequests      func(ctx context.Context, filter types.RequestFilter, page, limit uint64) ([]*types.DonationRequest, int64, error)
	MockSearchPending func(ctx context.Context, token string) ([]*types.DonationRequest, error)
	MockCreate        func(ctx context.Context, request *types.DonationRequest) error
	MockUpdate        func(ctx context.Context, requestID string, update *types.DonationRequestUpdate) error
	MockClaim         func(ctx context.Context, requestID, donorName, donorEmail string) error
	MockUpdateStatus  func(ctx context.Context, requestID string, status types.RequestStatus) error
	MockDelete        func(ctx context.Context, requestID string) error
}

func (m *mockRequestStore) Request(ctx context.Context, requestID string) (*types.DonationRequest, error) {
	if m.MockRequest != nil {
		return m.MockRequest(ctx, requestID)
	}
	return nil, types.ErrRequestNotFound
}

func (m *mockRequestStore) Requests(ctx context.Context, filter types.RequestFilter, page, limit uint64) ([]*types.DonationRequest, int64, error) {
	if m.MockRequests != nil {
		return m.MockRequests(ctx, filter, page, limit)
	}
	return []*types.DonationRequest{}, 0, nil
}

func (m *mockRequestStore) SearchPending(ctx context.Context, token string) ([]*types.DonationRequest, error) {
	if m.MockSearchPending != nil {
		return m.MockSearchPending(ctx, token)
	}
	return []*types.DonationRequest{}, nil
}

func (m *mockRequestStore) Create(ctx context.Context, request *types.DonationRequest) error {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, request)
	}
	return nil
}

func (m *mockRequestStore) Update(ctx context.Context, requestID string, update *types.DonationRequestUpdate) error {
	if m.MockUpdate != nil {
		return m.MockUpdate(ctx, requestID, update)
	}
	return nil
}

func (m *mockRequestStore) Claim(ctx context.Context, requestID, donorName, donorEmail string) error {
	if m.MockClaim != nil {
		return m.MockClaim(ctx, requestID, donorName, donorEmail)
	}
	return nil
}

func (m *mockRequestStore) UpdateStatus(ctx context.Context, requestID string, status types.RequestStatus) error {
	if m.MockUpdateStatus != nil {
		return m.MockUpdateStatus(ctx, requestID, status)
	}
	return nil
}

func (m *mockRequestStore) Delete(ctx context.Context, requestID string) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, requestID)
	}
	return nil
}

type mockFundStore struct {
	MockFundByTransactionID func(ctx context.Context, transactionID string) (*types.Fund, error)
	MockFunds               func(ctx context.Context, page, limit uint64) ([]*types.Fund, int64, error)
	MockTotalCents          func(ctx context.Context) (int64, error)
	MockCreate              func(ctx context.Context, fund *types.Fund) error
}

func (m *mockFundStore) FundByTransactionID(ctx context.Context, transactionID string) (*types.Fund, error) {
	if m.MockFundByTransactionID != nil {
		return m.MockFundByTransactionID(ctx, transactionID)
	}
	return nil, types.ErrFundNotFound
}

func (m *mockFundStore) Funds(ctx context.Context, page, limit uint64) ([]*types.Fund, int64, error) {
	if m.MockFunds != nil {
		return m.MockFunds(ctx, page, limit)
	}
	return []*types.Fund{}, 0, nil
}

func (m *mockFundStore) TotalCents(ctx context.Context) (int64, error) {
	if m.MockTotalCents != nil {
		return m.MockTotalCents(ctx)
	}
	return 0, nil
}

func (m *mockFundStore) Create(ctx context.Context, fund *types.Fund) error {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, fund)
	}
	return nil
}

type mockBlogStore struct {
	MockPublished func(ctx context.Context) ([]*types.Blog, error)
	MockCreate    func(ctx context.Context, blog *types.Blog) error
}

func (m *mockBlogStore) Published(ctx context.Context) ([]*types.Blog, error) {
	if m.MockPublished != nil {
		return m.MockPublished(ctx)
	}
	return []*types.Blog{}, nil
}

func (m *mockBlogStore) Create(ctx context.Context, blog *types.Blog) error {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, blog)
	}
	return nil
}

type mockCheckout struct {
	MockCreateSession     func(ctx context.Context, email string, amountCents int64) (*payment.CheckoutIntent, error)
	MockVerifyTransaction func(ctx context.Context, transactionID string) (int64, error)
}

func (m *mockCheckout) CreateSession(ctx context.Context, email string, amountCents int64) (*payment.CheckoutIntent, error) {
	if m.MockCreateSession != nil {
		return m.MockCreateSession(ctx, email, amountCents)
	}
	return &payment.CheckoutIntent{TransactionID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (m *mockCheckout) VerifyTransaction(ctx context.Context, transactionID string) (int64, error) {
	if m.MockVerifyTransaction != nil {
		return m.MockVerifyTransaction(ctx, transactionID)
	}
	return 0, types.ErrVerificationFailed
}

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

type testEnv struct {
	svc      *Service
	users    *mockUserStore
	requests *mockRequestStore
	funds    *mockFundStore
	blogs    *mockBlogStore
	checkout *mockCheckout
	tokens   *auth.TokenService

	// knownUsers backs the default UserByEmail lookup used by RequireAuth.
	knownUsers map[string]*types.User
}

func newTestEnv(t *testing.T, mutate ...func(*types.Config)) *testEnv {
	t.Helper()

	config := &types.Config{ServerPort: 0, ReadTimeoutSec: 1, WriteTimeoutSec: 1}
	for _, m := range mutate {
		m(config)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		users:      &mockUserStore{},
		requests:   &mockRequestStore{},
		funds:      &mockFundStore{},
		blogs:      &mockBlogStore{},
		checkout:   &mockCheckout{},
		tokens:     auth.NewTokenService(testSigningKey, time.Hour),
		knownUsers: map[string]*types.User{},
	}

	env.users.MockUserByEmail = func(ctx context.Context, email string) (*types.User, error) {
		if u, ok := env.knownUsers[email]; ok {
			return u, nil
		}
		return nil, types.ErrUserNotFound
	}

	svc, err := New(config, logger, env.tokens, nil, env.checkout,
		env.users, env.requests, env.funds, env.blogs)
	require.NoError(t, err)
	env.svc = svc

	return env
}

// login registers the user with the lookup the auth middleware uses and
// returns a bearer token for it.
func (e *testEnv) login(t *testing.T, user *types.User) string {
	t.Helper()

	e.knownUsers[user.Email] = user
	token, err := e.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.svc.server.Handler.ServeHTTP(rr, req)
	return rr
}

func testUser(email string, role types.Role) *types.User {
	return &types.User{
		ID:         "id-" + email,
		Email:      email,
		Name:       "User " + email,
		BloodGroup: "O+",
		District:   "Dhaka",
		Upazila:    "Dhanmondi",
		Role:       role,
		Status:     types.UserStatusActive,
	}
}

