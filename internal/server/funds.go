package server

import (
	"errors"
	"net/http"

	"bloodaid/internal/auth"
	"bloodaid/internal/payment"
	"bloodaid/pkg/types"

	"github.com/sirupsen/logrus"
)

type createPaymentIntentBody struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// handleCreatePaymentIntent opens a hosted checkout session with the
// provider. The returned transaction id is what the client later submits
// to POST /funds.
func (s *Service) handleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionStartPayment); err != nil {
		s.respondError(w, err)
		return
	}

	var body createPaymentIntentBody
	if err := s.decodeBody(r, &body); err != nil {
		s.respondError(w, err)
		return
	}

	intent, err := s.checkout.CreateSession(ctx, actor.Email, payment.ToMinorUnits(body.Amount))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, intent)
}

type createFundBody struct {
	TransactionID string  `json:"transactionId" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
}

// handleCreateFund records a contribution after reconciling it with the
// provider. Order matters: duplicate check, then external verification,
// then amount comparison, then insert. The unique constraint on
// transaction_id catches the race where two submissions pass the first
// check concurrently.
func (s *Service) handleCreateFund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionCreateFund); err != nil {
		s.respondError(w, err)
		return
	}

	var body createFundBody
	if err := s.decodeBody(r, &body); err != nil {
		s.respondError(w, err)
		return
	}

	if _, err := s.fundRepo.FundByTransactionID(ctx, body.TransactionID); err == nil {
		s.respondError(w, types.ErrDuplicateTransaction)
		return
	} else if !errors.Is(err, types.ErrFundNotFound) {
		s.respondError(w, err)
		return
	}

	paidCents, err := s.checkout.VerifyTransaction(ctx, body.TransactionID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	claimedCents := payment.ToMinorUnits(body.Amount)
	if claimedCents != paidCents {
		s.logger.WithFields(logrus.Fields{
			"transaction_id": body.TransactionID,
			"claimed_cents":  claimedCents,
			"paid_cents":     paidCents,
		}).Warn("fund amount mismatch")
		s.respondError(w, types.ErrAmountMismatch)
		return
	}

	// Email and name come from the authenticated identity, never the body.
	fund := &types.Fund{
		Email:         actor.Email,
		UserName:      actor.Name,
		AmountCents:   claimedCents,
		TransactionID: body.TransactionID,
	}

	if err := s.fundRepo.Create(ctx, fund); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"transaction_id": fund.TransactionID,
		"email":          fund.Email,
		"amount_cents":   fund.AmountCents,
	}).Info("fund recorded")

	s.respondData(w, http.StatusCreated, fund)
}

func (s *Service) handleListFunds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionListFunds); err != nil {
		s.respondError(w, err)
		return
	}

	params, err := decodePageParams(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	funds, total, err := s.fundRepo.Funds(ctx, params.Page, params.Limit)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondList(w, funds, total, params.Page, params.Limit)
}

func (s *Service) handleFundsTotal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionListFunds); err != nil {
		s.respondError(w, err)
		return
	}

	totalCents, err := s.fundRepo.TotalCents(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, map[string]any{
		"totalCents": totalCents,
		"total":      float64(totalCents) / 100,
	})
}
