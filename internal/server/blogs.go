package server

import (
	"net/http"
	"strings"

	"bloodaid/internal/auth"
	"bloodaid/pkg/types"
)

type createBlogBody struct {
	Title     string `json:"title" validate:"required"`
	Thumbnail string `json:"thumbnail"`
	Content   string `json:"content" validate:"required"`
}

func (s *Service) handleCreateBlog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.userFromContext(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := auth.Authorize(actor, auth.ActionCreateBlog); err != nil {
		s.respondError(w, err)
		return
	}

	var body createBlogBody
	if err := s.decodeBody(r, &body); err != nil {
		s.respondError(w, err)
		return
	}

	blog := &types.Blog{
		Author:    actor.Email,
		Title:     strings.TrimSpace(body.Title),
		Thumbnail: body.Thumbnail,
		Content:   body.Content,
	}

	if err := s.blogRepo.Create(ctx, blog); err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusCreated, blog)
}

// handleListBlogs is public and only ever surfaces published posts.
func (s *Service) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := s.blogRepo.Published(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondData(w, http.StatusOK, blogs)
}
