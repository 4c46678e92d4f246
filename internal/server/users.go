package server

import (
	"net/http"
	"strings"

	"bloodaid/internal/auth"
	"bloodaid/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

type registerRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required"`
	BloodGroup string `json:"bloodGroup" validate:"required"`
	District   string `json:"district" validate:"required"`
	Upazila    string `json:"upazila" validate:"required"`
}

// handleRegister is open to anyone. New users always start as active
// donors; role and status only move through the admin endpoints.
func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	user := &types.User{
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Name:       strings.TrimSpace(req.Name),
		BloodGroup: req.BloodGroup,
		District:   req.District,
		Upazila:    req.Upazila,
		Role:       types.RoleDonor,
		Status:     types.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.WithField("email", user.Email).Info("user registered")
	s.respondData(w, http.StatusCreated, user)
}

func (s *Service) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionListUsers); err != nil {
		s.respondError(w, err)
		return
	}

	params, err := decodePageParams(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var status *types.UserStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		candidate := types.UserStatus(raw)
		if !candidate.Valid() {
			s.respondError(w, types.NewValidationError("status", "unknown status"))
			return
		}
		status = &candidate
	}

	users, total, err := s.userRepo.Users(ctx, status, params.Page, params.Limit)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondList(w, users, total, params.Page, params.Limit)
}

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, actor)
}

func (s *Service) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var update types.UserProfileUpdate
	if err := s.decodeBody(r, &update); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.userRepo.UpdateProfile(ctx, actor.Email, &update); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, update)
}

type changeRoleRequest struct {
	Role types.Role `json:"role"`
}

func (s *Service) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionChangeUserRole); err != nil {
		s.respondError(w, err)
		return
	}

	var req changeRoleRequest
	if err := s.decodeBodyLoose(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if !req.Role.Valid() {
		s.respondError(w, types.NewValidationError("role", "unknown role"))
		return
	}

	userID := flow.Param(ctx, "id")
	if err := s.userRepo.UpdateRole(ctx, userID, req.Role); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "role": req.Role, "by": actor.Email}).Info("user role changed")
	s.respondData(w, http.StatusOK, map[string]any{"id": userID, "role": req.Role})
}

type changeStatusRequest struct {
	Status types.UserStatus `json:"status"`
}

func (s *Service) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionChangeUserStatus); err != nil {
		s.respondError(w, err)
		return
	}

	var req changeStatusRequest
	if err := s.decodeBodyLoose(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if !req.Status.Valid() {
		s.respondError(w, types.NewValidationError("status", "unknown status"))
		return
	}

	userID := flow.Param(ctx, "id")
	if err := s.userRepo.UpdateStatus(ctx, userID, req.Status); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "status": req.Status, "by": actor.Email}).Info("user status changed")
	s.respondData(w, http.StatusOK, map[string]any{"id": userID, "status": req.Status})
}

// handleSearchDonors is the public donor directory filter.
func (s *Service) handleSearchDonors(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeDonorFilter(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	donors, err := s.userRepo.SearchDonors(r.Context(), filter)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, donors)
}
