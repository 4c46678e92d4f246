package types

import (
	"encoding/json"
	"time"
)

// Fund is a recorded contribution. Amounts are stored in minor units
// (cents) so reconciliation against the payment provider is exact; the
// JSON shape exposes the decimal amount callers submitted.
type Fund struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	UserName      string    `db:"user_name" json:"userName"`
	AmountCents   int64     `db:"amount_cents" json:"-"`
	TransactionID string    `db:"transaction_id" json:"transactionId"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Amount reports the fund value in major units for API responses.
func (f *Fund) Amount() float64 {
	return float64(f.AmountCents) / 100
}

func (f Fund) MarshalJSON() ([]byte, error) {
	type alias Fund
	return json.Marshal(struct {
		alias
		Amount float64 `json:"amount"`
	}{alias(f), f.Amount()})
}
