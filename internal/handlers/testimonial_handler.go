package handlers

import (
	"net/http"

	"nightmarket/internal/services"
	"nightmarket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TestimonialHandler struct {
	testimonials *services.TestimonialService
}

func NewTestimonialHandler(testimonials *services.TestimonialService) *TestimonialHandler {
	return &TestimonialHandler{testimonials: testimonials}
}

func (h *TestimonialHandler) Create(e *core.RequestEvent) error {
	var t models.Testimonial
	if err := e.BindBody(&t); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	created, err := h.testimonials.Create(e.Request.Context(), &t)
	if err != nil {
		return apiError(err, "create_testimonial")
	}
	return e.JSON(http.StatusCreated, created)
}

func (h *TestimonialHandler) List(e *core.RequestEvent) error {
	items, err := h.testimonials.List(e.Request.Context(), models.AuthorRole(e.Request.URL.Query().Get("role")))
	if err != nil {
		return apiError(err, "list_testimonials")
	}
	return e.JSON(http.StatusOK, map[string]any{"items": items})
}
