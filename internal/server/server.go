package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bloodaid/internal/auth"
	"bloodaid/internal/payment"
	"bloodaid/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var queryDecoder = form.NewDecoder()

type userStore interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	User(ctx context.Context, userID string) (*types.User, error)
	Users(ctx context.Context, status *types.UserStatus, page, limit uint64) ([]*types.User, int64, error)
	SearchDonors(ctx context.Context, filter types.DonorFilter) ([]*types.User, error)
	Create(ctx context.Context, user *types.User) error
	UpdateProfile(ctx context.Context, email string, update *types.UserProfileUpdate) error
	UpdateRole(ctx context.Context, userID string, role types.Role) error
	UpdateStatus(ctx context.Context, userID string, status types.UserStatus) error
}

type donationRequestStore interface {
	Request(ctx context.Context, requestID string) (*types.DonationRequest, error)
	Requests(ctx context.Context, filter types.RequestFilter, page, limit uint64) ([]*types.DonationRequest, int64, error)
	SearchPending(ctx context.Context, token string) ([]*types.DonationRequest, error)
	Create(ctx context.Context, request *types.DonationRequest) error
	Update(ctx context.Context, requestID string, update *types.DonationRequestUpdate) error
	Claim(ctx context.Context, requestID, donorName, donorEmail string) error
	UpdateStatus(ctx context.Context, requestID string, status types.RequestStatus) error
	Delete(ctx context.Context, requestID string) error
}

type fundStore interface {
	FundByTransactionID(ctx context.Context, transactionID string) (*types.Fund, error)
	Funds(ctx context.Context, page, limit uint64) ([]*types.Fund, int64, error)
	TotalCents(ctx context.Context) (int64, error)
	Create(ctx context.Context, fund *types.Fund) error
}

type blogStore interface {
	Published(ctx context.Context) ([]*types.Blog, error)
	Create(ctx context.Context, blog *types.Blog) error
}

type checkoutService interface {
	payment.Verifier
	CreateSession(ctx context.Context, email string, amountCents int64) (*payment.CheckoutIntent, error)
}

type tokenService interface {
	Issue(user *types.User) (string, error)
	Verify(token string) (*auth.Claims, error)
	VerifyProviderToken(ctx context.Context, token string) (string, error)
}

// PasswordAuthenticator proves first-factor credentials against the
// identity provider. Exported so callers can pass an explicit nil when no
// provider is configured.
type PasswordAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	validate *validator.Validate

	userRepo    userStore
	requestRepo donationRequestStore
	fundRepo    fundStore
	blogRepo    blogStore

	tokens   tokenService
	password PasswordAuthenticator
	checkout checkoutService

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	tokens tokenService,
	password PasswordAuthenticator,
	checkout checkoutService,
	userRepo userStore,
	requestRepo donationRequestStore,
	fundRepo fundStore,
	blogRepo blogStore,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		validate: validator.New(validator.WithRequiredStructEnabled()),

		userRepo:    userRepo,
		requestRepo: requestRepo,
		fundRepo:    fundRepo,
		blogRepo:    blogRepo,

		tokens:   tokens,
		password: password,
		checkout: checkout,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	// Public surface
	r.HandleFunc("/jwt", s.handleIssueToken, http.MethodPost)
	r.HandleFunc("/users", s.handleRegister, http.MethodPost)
	r.HandleFunc("/donation-requests/public", s.handlePublicRequests, http.MethodGet)
	r.HandleFunc("/donation-requests/search", s.handleSearchRequests, http.MethodGet)
	r.HandleFunc("/search/donors", s.handleSearchDonors, http.MethodGet)
	r.HandleFunc("/blogs", s.handleListBlogs, http.MethodGet)

	// Session surface
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/users", s.handleListUsers, http.MethodGet)
		r.HandleFunc("/users/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/users/profile", s.handleUpdateProfile, http.MethodPut)
		r.HandleFunc("/users/role/:id", s.handleChangeRole, http.MethodPatch)
		r.HandleFunc("/users/status/:id", s.handleChangeStatus, http.MethodPatch)

		r.HandleFunc("/donation-requests", s.handleCreateRequest, http.MethodPost)
		r.HandleFunc("/donation-requests", s.handleListRequests, http.MethodGet)
		r.HandleFunc("/donation-requests/my", s.handleMyRequests, http.MethodGet)
		r.HandleFunc("/donation-requests/:id", s.handleGetRequest, http.MethodGet)
		r.HandleFunc("/donation-requests/:id", s.handleUpdateRequest, http.MethodPut)
		r.HandleFunc("/donation-requests/donate/:id", s.handleClaimRequest, http.MethodPatch)
		r.HandleFunc("/donation-requests/status/:id", s.handleChangeRequestStatus, http.MethodPatch)
		r.HandleFunc("/donation-requests/:id", s.handleDeleteRequest, http.MethodDelete)

		r.HandleFunc("/blogs", s.handleCreateBlog, http.MethodPost)

		r.HandleFunc("/create-payment-intent", s.handleCreatePaymentIntent, http.MethodPost)
		r.HandleFunc("/create-checkout-session", s.handleCreatePaymentIntent, http.MethodPost)
		r.HandleFunc("/funds", s.handleCreateFund, http.MethodPost)
		r.HandleFunc("/funds", s.handleListFunds, http.MethodGet)
		r.HandleFunc("/funds/total", s.handleFundsTotal, http.MethodGet)
	})
}
