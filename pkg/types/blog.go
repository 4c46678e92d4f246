package types

import "time"

type BlogStatus string

const BlogStatusPublished BlogStatus = "published"

type Blog struct {
	ID        string     `db:"id" json:"id"`
	Author    string     `db:"author" json:"author"`
	Title     string     `db:"title" json:"title"`
	Thumbnail string     `db:"thumbnail" json:"thumbnail"`
	Content   string     `db:"content" json:"content"`
	Status    BlogStatus `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}
