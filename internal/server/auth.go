package server

import (
	"net/http"
	"strings"

	"bloodaid/pkg/types"
)

type issueTokenRequest struct {
	IdentityToken string `json:"identityToken"`
	Email         string `json:"email"`
	Password      string `json:"password"`
}

type issueTokenResponse struct {
	Token string `json:"token"`
}

// handleIssueToken exchanges an identity proof for a session token.
// Accepted proofs, strongest first: a provider-issued identity token
// verified against the provider JWKS, or email+password checked with the
// identity provider. Bare-email trust-on-lookup exists only behind
// ALLOW_INSECURE_TOKEN_ISSUE for registration bootstrap in development.
func (s *Service) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueTokenRequest
	if err := s.decodeBodyLoose(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	var email string

	switch {
	case req.IdentityToken != "":
		verified, err := s.tokens.VerifyProviderToken(ctx, req.IdentityToken)
		if err != nil {
			s.logger.WithError(err).Info("identity token rejected")
			s.respondError(w, types.ErrUnauthenticated)
			return
		}
		email = verified

	case req.Password != "" && s.password != nil:
		email = strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" {
			s.respondError(w, types.NewValidationError("email", "email is required"))
			return
		}

		if err := s.password.Authenticate(ctx, email, req.Password); err != nil {
			s.logger.WithError(err).WithField("email", email).Info("credential check failed")
			s.respondError(w, types.ErrUnauthenticated)
			return
		}

	case s.config.AllowInsecureTokenIssue:
		email = strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" {
			s.respondError(w, types.NewValidationError("email", "email is required"))
			return
		}
		s.logger.WithField("email", email).Warn("issuing session token on bare email lookup")

	default:
		s.respondError(w, types.ErrUnauthenticated)
		return
	}

	user, err := s.userRepo.UserByEmail(ctx, email)
	if err != nil {
		s.logger.WithError(err).WithField("email", email).Info("token requested for unknown user")
		s.respondError(w, types.ErrUnauthenticated)
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, issueTokenResponse{Token: token})
}
