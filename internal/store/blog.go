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

const blogTableName = "bloodaid.blogs"

var blogColumns = utils.StructTagValues(types.Blog{})

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

// Published lists published blogs, newest first.
func (r *BlogRepository) Published(ctx context.Context) ([]*types.Blog, error) {
	query, args, err := psql().
		Select(blogColumns...).
		From(blogTableName).
		Where(sq.Eq{"status": types.BlogStatusPublished}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate blogs query: %w", err)
	}

	var blogs = make([]*types.Blog, 0)
	if err := pgxscan.Select(ctx, r.pool, &blogs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch blogs: %w", err)
	}

	return blogs, nil
}

func (r *BlogRepository) Create(ctx context.Context, blog *types.Blog) error {
	now := time.Now()
	blog.ID = utils.NanoID()
	blog.Status = types.BlogStatusPublished
	blog.CreatedAt = now
	blog.UpdatedAt = now

	query, args, err := psql().
		Insert(blogTableName).
		SetMap(utils.StructToMap(blog)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create blog query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create blog")
}
