package seed

import (
	"context"
	"errors"
	"fmt"

	"bloodaid/internal/store"
	"bloodaid/pkg/types"
)

type userSeed struct {
	Email      string
	Name       string
	BloodGroup string
	District   string
	Upazila    string
	Role       types.Role
}

var seedUsers = []userSeed{
	{Email: "admin@bloodaid.example", Name: "Site Admin", BloodGroup: "O+", District: "Dhaka", Upazila: "Dhanmondi", Role: types.RoleAdmin},
	{Email: "volunteer@bloodaid.example", Name: "Rafiq Volunteer", BloodGroup: "A+", District: "Dhaka", Upazila: "Mirpur", Role: types.RoleVolunteer},
	{Email: "farhana.akter+seed1@example.com", Name: "Farhana Akter", BloodGroup: "B+", District: "Chattogram", Upazila: "Pahartali", Role: types.RoleDonor},
	{Email: "imran.hossain+seed2@example.com", Name: "Imran Hossain", BloodGroup: "O-", District: "Sylhet", Upazila: "Beanibazar", Role: types.RoleDonor},
	{Email: "nusrat.jahan+seed3@example.com", Name: "Nusrat Jahan", BloodGroup: "AB+", District: "Rajshahi", Upazila: "Paba", Role: types.RoleDonor},
	{Email: "sajid.rahman+seed4@example.com", Name: "Sajid Rahman", BloodGroup: "A-", District: "Khulna", Upazila: "Dumuria", Role: types.RoleDonor},
}

// SeedUsers upserts the bootstrap accounts. Existing users keep their
// record; the seed never downgrades an admin someone promoted by hand.
func SeedUsers(ctx context.Context, userRepo *store.UserRepository) error {
	seeded := 0
	for _, su := range seedUsers {
		_, err := userRepo.UserByEmail(ctx, su.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return fmt.Errorf("failed to fetch seed user %s: %w", su.Email, err)
		}

		newUser := &types.User{
			Email:      su.Email,
			Name:       su.Name,
			BloodGroup: su.BloodGroup,
			District:   su.District,
			Upazila:    su.Upazila,
			Role:       su.Role,
			Status:     types.UserStatusActive,
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return fmt.Errorf("failed to create seed user %s: %w", su.Email, err)
		}
		seeded++
	}

	fmt.Printf("Users seeded: %d created\n", seeded)
	return nil
}
