package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloodaid/internal/utils"
	"bloodaid/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "bloodaid.users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"email": strings.ToLower(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// Users returns one page plus the total count of the filtered set.
func (r *UserRepository) Users(ctx context.Context, status *types.UserStatus, page, limit uint64) ([]*types.User, int64, error) {
	conditions := sq.Eq{}
	if status != nil {
		conditions["status"] = *status
	}

	countQuery, countArgs, err := psql().
		Select("count(*)").
		From(userTableName).
		Where(conditions).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate user count query: %w", err)
	}

	var total int64
	if err := pgxscan.Get(ctx, r.pool, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(conditions).
		OrderBy("created_at asc").
		Limit(limit).
		Offset((page - 1) * limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate users query: %w", err)
	}

	var users = make([]*types.User, 0)
	if err := pgxscan.Select(ctx, r.pool, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// SearchDonors lists active donors matching the given filters. Blood group
// is an exact match; district and upazila match case-insensitively.
func (r *UserRepository) SearchDonors(ctx context.Context, filter types.DonorFilter) ([]*types.User, error) {
	and := sq.And{
		sq.Eq{"role": types.RoleDonor},
		sq.Eq{"status": types.UserStatusActive},
	}

	if filter.BloodGroup != "" {
		and = append(and, sq.Eq{"blood_group": filter.BloodGroup})
	}
	if filter.District != "" {
		and = append(and, sq.ILike{"district": filter.District})
	}
	if filter.Upazila != "" {
		and = append(and, sq.ILike{"upazila": filter.Upazila})
	}

	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(and).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor search query: %w", err)
	}

	var users = make([]*types.User, 0)
	if err := pgxscan.Select(ctx, r.pool, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search donors: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	now := time.Now()
	user.ID = utils.NanoID()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "") {
			return types.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, email string, update *types.UserProfileUpdate) error {
	updateMap := utils.StructToMap(update)
	updateMap["updated_at"] = time.Now()

	query, args, err := psql().
		Update(userTableName).
		SetMap(updateMap).
		Where(sq.Eq{"email": strings.ToLower(email)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update profile query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID string, role types.Role) error {
	return r.updateField(ctx, userID, "role", role)
}

func (r *UserRepository) UpdateStatus(ctx context.Context, userID string, status types.UserStatus) error {
	return r.updateField(ctx, userID, "status", status)
}

func (r *UserRepository) updateField(ctx context.Context, userID, column string, value any) error {
	query, args, err := psql().
		Update(userTableName).
		Set(column, value).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update %s query: %w", column, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}
