package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nightmarket/internal/status"
	"nightmarket/internal/store"
	"nightmarket/models"
)

const maxTestimonialRating = 5

type TestimonialService struct {
	store store.Store
	now   func() time.Time
}

func NewTestimonialService(s store.Store) *TestimonialService {
	return &TestimonialService{store: s, now: time.Now}
}

// Create appends a testimonial. Testimonials are never edited.
func (s *TestimonialService) Create(ctx context.Context, in *models.Testimonial) (*models.Testimonial, error) {
	t := &models.Testimonial{
		AuthorName: strings.TrimSpace(in.AuthorName),
		Role:       in.Role,
		Message:    strings.TrimSpace(in.Message),
		Rating:     in.Rating,
		CreatedAt:  s.now(),
	}
	switch {
	case t.AuthorName == "":
		return nil, fmt.Errorf("%w: author name is required", status.ErrInvalidInput)
	case t.Message == "":
		return nil, fmt.Errorf("%w: message is required", status.ErrInvalidInput)
	case !t.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", status.ErrInvalidInput, t.Role)
	case t.Rating < 0 || t.Rating > maxTestimonialRating:
		return nil, fmt.Errorf("%w: rating must be between 0 and %d", status.ErrInvalidInput, maxTestimonialRating)
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		return tx.CreateTestimonial(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Testimonial created", "testimonial_id", t.ID, "role", t.Role)
	return t, nil
}

// List returns testimonials newest first, filtered by role when one is given.
func (s *TestimonialService) List(ctx context.Context, role models.AuthorRole) ([]*models.Testimonial, error) {
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", status.ErrInvalidInput, role)
	}
	return store.Read(ctx, s.store, func(tx store.Tx) ([]*models.Testimonial, error) {
		return tx.Testimonials(ctx, role)
	})
}
