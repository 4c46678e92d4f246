package seed

import (
	"context"
	"fmt"
	"time"

	"bloodaid/internal/store"
	"bloodaid/internal/utils"
	"bloodaid/pkg/types"
)

type requestSeed struct {
	RequesterEmail string
	RecipientName  string
	BloodGroup     string
	District       string
	Upazila        string
	Hospital       string
	Message        string
	DaysOut        int

	// Claimed requests get this donor stamped and move to inprogress.
	DonorEmail string
}

var seedRequests = []requestSeed{
	{
		RequesterEmail: "farhana.akter+seed1@example.com",
		RecipientName:  "Abdul Karim",
		BloodGroup:     "O-",
		District:       "Chattogram",
		Upazila:        "Pahartali",
		Hospital:       "Chattogram Medical College Hospital",
		Message:        "Surgery scheduled, two bags needed.",
		DaysOut:        3,
	},
	{
		RequesterEmail: "imran.hossain+seed2@example.com",
		RecipientName:  "Rokeya Begum",
		BloodGroup:     "B+",
		District:       "Sylhet",
		Upazila:        "Beanibazar",
		Hospital:       "Sylhet MAG Osmani Medical College",
		Message:        "Thalassemia patient, monthly transfusion.",
		DaysOut:        7,
	},
	{
		RequesterEmail: "nusrat.jahan+seed3@example.com",
		RecipientName:  "Mehedi Hasan",
		BloodGroup:     "A+",
		District:       "Rajshahi",
		Upazila:        "Paba",
		Hospital:       "Rajshahi Medical College Hospital",
		DaysOut:        1,
		DonorEmail:     "sajid.rahman+seed4@example.com",
	},
}

// SeedRequests creates demo donation requests for the seed accounts.
// Skips any requester who already has a request, so reruns stay quiet.
func SeedRequests(ctx context.Context, requestRepo *store.DonationRequestRepository, userRepo *store.UserRepository) error {
	now := time.Now()
	seeded := 0

	for _, rs := range seedRequests {
		_, total, err := requestRepo.Requests(ctx, types.RequestFilter{RequesterEmail: rs.RequesterEmail}, 1, 1)
		if err != nil {
			return fmt.Errorf("failed to check requests for %s: %w", rs.RequesterEmail, err)
		}
		if total > 0 {
			continue
		}

		requester, err := userRepo.UserByEmail(ctx, rs.RequesterEmail)
		if err != nil {
			return fmt.Errorf("failed to fetch requester %s: %w", rs.RequesterEmail, err)
		}

		request := &types.DonationRequest{
			RequesterEmail: requester.Email,
			RequesterName:  requester.Name,
			RecipientName:  rs.RecipientName,
			BloodGroup:     rs.BloodGroup,
			District:       rs.District,
			Upazila:        rs.Upazila,
			Hospital:       rs.Hospital,
			Message:        rs.Message,
			DonationDate:   utils.TimePtr(now.AddDate(0, 0, rs.DaysOut)),
		}

		if err := requestRepo.Create(ctx, request); err != nil {
			return fmt.Errorf("failed to create seed request for %s: %w", rs.RequesterEmail, err)
		}
		seeded++

		if rs.DonorEmail == "" {
			continue
		}

		donor, err := userRepo.UserByEmail(ctx, rs.DonorEmail)
		if err != nil {
			return fmt.Errorf("failed to fetch seed donor %s: %w", rs.DonorEmail, err)
		}
		if err := requestRepo.Claim(ctx, request.ID, donor.Name, donor.Email); err != nil {
			return fmt.Errorf("failed to claim seed request %s: %w", request.ID, err)
		}
	}

	fmt.Printf("Donation requests seeded: %d created\n", seeded)
	return nil
}
