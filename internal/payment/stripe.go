package payment

import (
	"context"
	"fmt"
	"math"
	"time"

	"bloodaid/pkg/types"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/client"
)

// Verifier confirms a transaction with the payment provider and reports
// the paid amount in minor units.
type Verifier interface {
	VerifyTransaction(ctx context.Context, transactionID string) (int64, error)
}

// CheckoutIntent is what the client needs to hand off to the provider's
// hosted checkout.
type CheckoutIntent struct {
	TransactionID string `json:"transactionId"`
	URL           string `json:"url"`
}

// CheckoutService drives Stripe hosted checkout sessions. The session id
// doubles as the fund's transaction id.
type CheckoutService struct {
	api        *client.API
	successURL string
	cancelURL  string
	timeout    time.Duration
}

func NewCheckoutService(secretKey, successURL, cancelURL string, timeout time.Duration) *CheckoutService {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &CheckoutService{
		api:        api,
		successURL: successURL,
		cancelURL:  cancelURL,
		timeout:    timeout,
	}
}

func (s *CheckoutService) CreateSession(ctx context.Context, email string, amountCents int64) (*CheckoutIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(email),
		SuccessURL:    stripe.String(s.successURL),
		CancelURL:     stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Blood donation fund contribution"),
					},
				},
			},
		},
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutIntent{TransactionID: sess.ID, URL: sess.URL}, nil
}

// VerifyTransaction looks the session up at Stripe. A session the provider
// does not know, or one not fully paid, fails verification; transport
// errors stay wrapped so callers can tell retriable from fatal.
func (s *CheckoutService) VerifyTransaction(ctx context.Context, transactionID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.Get(transactionID, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return 0, types.ErrVerificationFailed
		}
		return 0, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return 0, types.ErrVerificationFailed
	}

	return sess.AmountTotal, nil
}

// ToMinorUnits converts a decimal amount to integer cents, rounding
// half-up, so comparisons against provider-reported totals are exact.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
