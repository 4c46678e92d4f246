package server

import (
	"net/http"
	"strings"
	"time"

	"bloodaid/internal/auth"
	"bloodaid/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

type createRequestBody struct {
	RecipientName string     `json:"recipientName" validate:"required"`
	BloodGroup    string     `json:"bloodGroup" validate:"required"`
	District      string     `json:"district" validate:"required"`
	Upazila       string     `json:"upazila" validate:"required"`
	Hospital      string     `json:"hospital"`
	Address       string     `json:"address"`
	DonationDate  *time.Time `json:"donationDate"`
	Message       string     `json:"message"`
}

func (s *Service) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	// Blocked users get the distinct rejection here, before any insert.
	if err := auth.Authorize(actor, auth.ActionCreateRequest); err != nil {
		s.respondError(w, err)
		return
	}

	var body createRequestBody
	if err := s.decodeBody(r, &body); err != nil {
		s.respondError(w, err)
		return
	}

	request := &types.DonationRequest{
		RequesterEmail: actor.Email,
		RequesterName:  actor.Name,
		RecipientName:  body.RecipientName,
		BloodGroup:     body.BloodGroup,
		District:       body.District,
		Upazila:        body.Upazila,
		Hospital:       body.Hospital,
		Address:        body.Address,
		DonationDate:   body.DonationDate,
		Message:        body.Message,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": request.ID,
		"requester":  actor.Email,
	}).Info("donation request created")

	s.respondData(w, http.StatusCreated, request)
}

// handlePublicRequests lists pending requests for anyone, paginated.
func (s *Service) handlePublicRequests(w http.ResponseWriter, r *http.Request) {
	params, err := decodePageParams(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	pending := types.RequestStatusPending
	requests, total, err := s.requestRepo.Requests(r.Context(), types.RequestFilter{Status: &pending}, params.Page, params.Limit)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondList(w, requests, total, params.Page, params.Limit)
}

func (s *Service) handleSearchRequests(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("q"))
	if token == "" {
		s.respondError(w, types.NewValidationError("q", "search term is required"))
		return
	}

	requests, err := s.requestRepo.SearchPending(r.Context(), token)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, requests)
}

// handleListRequests is the administrative view across all statuses.
func (s *Service) handleListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionListAllRequests); err != nil {
		s.respondError(w, err)
		return
	}

	params, err := decodePageParams(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	filter := types.RequestFilter{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		candidate := types.RequestStatus(raw)
		if !candidate.Valid() {
			s.respondError(w, types.NewValidationError("status", "unknown status"))
			return
		}
		filter.Status = &candidate
	}

	requests, total, err := s.requestRepo.Requests(ctx, filter, params.Page, params.Limit)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondList(w, requests, total, params.Page, params.Limit)
}

func (s *Service) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	params, err := decodePageParams(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	filter := types.RequestFilter{RequesterEmail: actor.Email}
	if raw := r.URL.Query().Get("status"); raw != "" {
		candidate := types.RequestStatus(raw)
		if !candidate.Valid() {
			s.respondError(w, types.NewValidationError("status", "unknown status"))
			return
		}
		filter.Status = &candidate
	}

	requests, total, err := s.requestRepo.Requests(ctx, filter, params.Page, params.Limit)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondList(w, requests, total, params.Page, params.Limit)
}

func (s *Service) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := s.userFromContext(ctx); err != nil {
		s.respondError(w, err)
		return
	}

	request, err := s.requestRepo.Request(ctx, flow.Param(ctx, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, request)
}

func (s *Service) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	requestID := flow.Param(ctx, "id")
	request, err := s.requestRepo.Request(ctx, requestID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if !auth.CanMutateRequest(actor, request) {
		s.respondError(w, types.ErrForbidden)
		return
	}

	var update types.DonationRequestUpdate
	if err := s.decodeBody(r, &update); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.requestRepo.Update(ctx, requestID, &update); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, update)
}

// handleClaimRequest is the donate action: any authenticated user commits
// to a pending request, which stamps the donor fields and moves it to
// inprogress in one conditional update.
func (s *Service) handleClaimRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionClaimRequest); err != nil {
		s.respondError(w, err)
		return
	}

	requestID := flow.Param(ctx, "id")
	if _, err := s.requestRepo.Request(ctx, requestID); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.requestRepo.Claim(ctx, requestID, actor.Name, actor.Email); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"donor":      actor.Email,
	}).Info("donation request claimed")

	request, err := s.requestRepo.Request(ctx, requestID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, request)
}

type changeRequestStatusBody struct {
	Status types.RequestStatus `json:"status"`
}

func (s *Service) handleChangeRequestStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	requestID := flow.Param(ctx, "id")
	request, err := s.requestRepo.Request(ctx, requestID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if !auth.CanChangeRequestStatus(actor, request) {
		s.respondError(w, types.ErrForbidden)
		return
	}

	var body changeRequestStatusBody
	if err := s.decodeBodyLoose(r, &body); err != nil {
		s.respondError(w, err)
		return
	}
	if !body.Status.Valid() {
		s.respondError(w, types.NewValidationError("status", "unknown status"))
		return
	}

	if err := s.requestRepo.UpdateStatus(ctx, requestID, body.Status); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     body.Status,
		"by":         actor.Email,
	}).Info("donation request status changed")

	s.respondData(w, http.StatusOK, map[string]any{"id": requestID, "status": body.Status})
}

func (s *Service) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	requestID := flow.Param(ctx, "id")
	request, err := s.requestRepo.Request(ctx, requestID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if !auth.CanMutateRequest(actor, request) {
		s.respondError(w, types.ErrForbidden)
		return
	}

	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, map[string]any{"id": requestID, "deleted": true})
}
