package server

import (
	"errors"
	"net/http"
	"strings"

	"bloodaid/pkg/types"

	"github.com/go-playground/validator/v10"
)

type pageParams struct {
	Page  uint64 `form:"page"`
	Limit uint64 `form:"limit"`
}

const maxPageLimit = 100

// decodePageParams reads page/limit from the query string, 1-based page
// defaulting to 1 and limit to 10.
func decodePageParams(r *http.Request) (pageParams, error) {
	params := pageParams{}
	if err := queryDecoder.Decode(&params, r.URL.Query()); err != nil {
		return params, types.NewValidationError("query", "invalid pagination parameters")
	}

	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = 10
	}
	if params.Limit > maxPageLimit {
		params.Limit = maxPageLimit
	}

	return params, nil
}

func decodeDonorFilter(r *http.Request) (types.DonorFilter, error) {
	filter := types.DonorFilter{}
	if err := queryDecoder.Decode(&filter, r.URL.Query()); err != nil {
		return filter, types.NewValidationError("query", "invalid donor filters")
	}

	filter.BloodGroup = strings.TrimSpace(filter.BloodGroup)
	filter.District = strings.TrimSpace(filter.District)
	filter.Upazila = strings.TrimSpace(filter.Upazila)

	return filter, nil
}

func toValidationError(err error, out **types.ValidationError) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = "failed " + fe.Tag() + " check"
	}

	*out = &types.ValidationError{Fields: fields}
	return true
}
