package types

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "inprogress"
	RequestStatusDone       RequestStatus = "done"
	RequestStatusCanceled   RequestStatus = "canceled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusDone, RequestStatusCanceled:
		return true
	}
	return false
}

type DonationRequest struct {
	ID             string `db:"id" json:"id"`
	RequesterEmail string `db:"requester_email" json:"requesterEmail"`
	RequesterName  string `db:"requester_name" json:"requesterName"`

	RecipientName string     `db:"recipient_name" json:"recipientName"`
	BloodGroup    string     `db:"blood_group" json:"bloodGroup"`
	District      string     `db:"district" json:"district"`
	Upazila       string     `db:"upazila" json:"upazila"`
	Hospital      string     `db:"hospital" json:"hospital"`
	Address       string     `db:"address" json:"address"`
	DonationDate  *time.Time `db:"donation_date" json:"donationDate"`
	Message       string     `db:"message" json:"message"`

	Status     RequestStatus `db:"status" json:"status"`
	DonorName  *string       `db:"donor_name" json:"donorName"`
	DonorEmail *string       `db:"donor_email" json:"donorEmail"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DonationRequestUpdate is the owner-editable subset. Status and donor
// fields move through their own transitions, never through a plain update.
type DonationRequestUpdate struct {
	RecipientName string     `db:"recipient_name" json:"recipientName" validate:"required"`
	BloodGroup    string     `db:"blood_group" json:"bloodGroup" validate:"required"`
	District      string     `db:"district" json:"district" validate:"required"`
	Upazila       string     `db:"upazila" json:"upazila" validate:"required"`
	Hospital      string     `db:"hospital" json:"hospital"`
	Address       string     `db:"address" json:"address"`
	DonationDate  *time.Time `db:"donation_date" json:"donationDate"`
	Message       string     `db:"message" json:"message"`
}

// RequestFilter narrows list queries. A nil Status means any status.
type RequestFilter struct {
	Status         *RequestStatus
	RequesterEmail string
}
