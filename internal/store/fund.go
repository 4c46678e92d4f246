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

const fundTableName = "bloodaid.funds"

var fundColumns = utils.StructTagValues(types.Fund{})

type FundRepository struct {
	pool *pgxpool.Pool
}

func NewFundRepository(pool *pgxpool.Pool) *FundRepository {
	return &FundRepository{pool: pool}
}

func (r *FundRepository) FundByTransactionID(ctx context.Context, transactionID string) (*types.Fund, error) {
	query, args, err := psql().
		Select(fundColumns...).
		From(fundTableName).
		Where(sq.Eq{"transaction_id": transactionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate fund query: %w", err)
	}

	var fund types.Fund
	err = pgxscan.Get(ctx, r.pool, &fund, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrFundNotFound
		}
		return nil, fmt.Errorf("failed to fetch fund: %w", err)
	}

	return &fund, nil
}

func (r *FundRepository) Funds(ctx context.Context, page, limit uint64) ([]*types.Fund, int64, error) {
	countQuery, countArgs, err := psql().
		Select("count(*)").
		From(fundTableName).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate fund count query: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, r.pool, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count funds: %w", err)
	}

	query, args, err := psql().
		Select(fundColumns...).
		From(fundTableName).
		OrderBy("created_at asc").
		Limit(limit).
		Offset((page - 1) * limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate funds query: %w", err)
	}

	var funds = make([]*types.Fund, 0)
	if err := pgxscan.Select(ctx, r.pool, &funds, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch funds: %w", err)
	}

	return funds, total, nil
}

// TotalCents sums every recorded fund in minor units.
func (r *FundRepository) TotalCents(ctx context.Context) (int64, error) {
	query, args, err := psql().
		Select("coalesce(sum(amount_cents), 0)").
		From(fundTableName).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate fund total query: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, r.pool, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to sum funds: %w", err)
	}

	return total, nil
}

// Create inserts the fund. The unique constraint on transaction_id is the
// final backstop against concurrent duplicate submissions; a violation
// surfaces as ErrDuplicateTransaction.
func (r *FundRepository) Create(ctx context.Context, fund *types.Fund) error {
	fund.ID = utils.NanoID()
	fund.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(fundTableName).
		SetMap(utils.StructToMap(fund)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create fund query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "") {
			return types.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create fund: %w", err)
	}

	return nil
}
