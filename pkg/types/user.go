package types

import "time"

type Role string

const (
	RoleDonor     Role = "donor"
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusBlocked
}

type User struct {
	ID         string     `db:"id" json:"id"`
	Email      string     `db:"email" json:"email"`
	Name       string     `db:"name" json:"name"`
	BloodGroup string     `db:"blood_group" json:"bloodGroup"`
	District   string     `db:"district" json:"district"`
	Upazila    string     `db:"upazila" json:"upazila"`
	Role       Role       `db:"role" json:"role"`
	Status     UserStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updatedAt"`
}

func (u *User) Blocked() bool {
	return u.Status == UserStatusBlocked
}

// UserProfileUpdate carries the self-serviceable profile fields. Email,
// role, and status are deliberately absent; those change only through the
// admin endpoints.
type UserProfileUpdate struct {
	Name       string `db:"name" json:"name" validate:"required"`
	BloodGroup string `db:"blood_group" json:"bloodGroup" validate:"required"`
	District   string `db:"district" json:"district" validate:"required"`
	Upazila    string `db:"upazila" json:"upazila" validate:"required"`
}

type DonorFilter struct {
	BloodGroup string `form:"bloodGroup"`
	District   string `form:"district"`
	Upazila    string `form:"upazila"`
}
