package store

import (
	"context"
	"fmt"
	"time"

	"bloodaid/internal/utils"
	"bloodaid/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestTableName = "bloodaid.donation_requests"

var requestColumns = utils.StructTagValues(types.DonationRequest{})

type DonationRequestRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRequestRepository(pool *pgxpool.Pool) *DonationRequestRepository {
	return &DonationRequestRepository{pool: pool}
}

func (r *DonationRequestRepository) Request(ctx context.Context, requestID string) (*types.DonationRequest, error) {
	query, args, err := psql().
		Select(requestColumns...).
		From(requestTableName).
		Where(sq.Eq{"id": requestID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request query: %w", err)
	}

	var request types.DonationRequest
	err = pgxscan.Get(ctx, r.pool, &request, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation request: %w", err)
	}

	return &request, nil
}

// Requests returns one page of requests under filter plus the total count
// of the filtered set.
func (r *DonationRequestRepository) Requests(ctx context.Context, filter types.RequestFilter, page, limit uint64) ([]*types.DonationRequest, int64, error) {
	conditions := sq.Eq{}
	if filter.Status != nil {
		conditions["status"] = *filter.Status
	}
	if filter.RequesterEmail != "" {
		conditions["requester_email"] = filter.RequesterEmail
	}

	countQuery, countArgs, err := psql().
		Select("count(*)").
		From(requestTableName).
		Where(conditions).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate request count query: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, r.pool, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count donation requests: %w", err)
	}

	query, args, err := psql().
		Select(requestColumns...).
		From(requestTableName).
		Where(conditions).
		OrderBy("created_at asc").
		Limit(limit).
		Offset((page - 1) * limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate requests query: %w", err)
	}

	var requests = make([]*types.DonationRequest, 0)
	if err := pgxscan.Select(ctx, r.pool, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch donation requests: %w", err)
	}

	return requests, total, nil
}

// SearchPending matches the token case-insensitively as a substring
// against blood group, district, and upazila of pending requests. No
// pagination; search results return whole.
func (r *DonationRequestRepository) SearchPending(ctx context.Context, token string) ([]*types.DonationRequest, error) {
	pattern := "%" + token + "%"

	query, args, err := psql().
		Select(requestColumns...).
		From(requestTableName).
		Where(sq.And{
			sq.Eq{"status": types.RequestStatusPending},
			sq.Or{
				sq.ILike{"blood_group": pattern},
				sq.ILike{"district": pattern},
				sq.ILike{"upazila": pattern},
			},
		}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request search query: %w", err)
	}

	var requests = make([]*types.DonationRequest, 0)
	if err := pgxscan.Select(ctx, r.pool, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search donation requests: %w", err)
	}

	return requests, nil
}

func (r *DonationRequestRepository) Create(ctx context.Context, request *types.DonationRequest) error {
	now := time.Now()
	request.ID = utils.NanoID()
	request.Status = types.RequestStatusPending
	request.CreatedAt = now
	request.UpdatedAt = now

	query, args, err := psql().
		Insert(requestTableName).
		SetMap(utils.StructToMap(request)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create request query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create donation request")
}

func (r *DonationRequestRepository) Update(ctx context.Context, requestID string, update *types.DonationRequestUpdate) error {
	updateMap := utils.StructToMap(update)
	updateMap["updated_at"] = time.Now()

	query, args, err := psql().
		Update(requestTableName).
		SetMap(updateMap).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update request query for request %s: %w", requestID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update donation request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRequestNotFound
	}

	return nil
}

// Claim transitions a pending request to inprogress and stamps the donor.
// The status predicate makes concurrent claims race safely: exactly one
// update matches, the loser sees ErrRequestNotClaimable.
func (r *DonationRequestRepository) Claim(ctx context.Context, requestID, donorName, donorEmail string) error {
	query, args, err := psql().
		Update(requestTableName).
		Set("status", types.RequestStatusInProgress).
		Set("donor_name", donorName).
		Set("donor_email", donorEmail).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": requestID, "status": types.RequestStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate claim query for request %s: %w", requestID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to claim donation request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRequestNotClaimable
	}

	return nil
}

func (r *DonationRequestRepository) UpdateStatus(ctx context.Context, requestID string, status types.RequestStatus) error {
	query, args, err := psql().
		Update(requestTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate status update query for request %s: %w", requestID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update donation request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRequestNotFound
	}

	return nil
}

func (r *DonationRequestRepository) Delete(ctx context.Context, requestID string) error {
	query, args, err := psql().
		Delete(requestTableName).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete request query for request %s: %w", requestID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete donation request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRequestNotFound
	}

	return nil
}
