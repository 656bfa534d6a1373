package handlers

import (
	"net/http"

	"nightmarket/internal/services"
	"nightmarket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type VendorHandler struct {
	vendors *services.VendorService
}

func NewVendorHandler(vendors *services.VendorService) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

// Apply is the public application form. The response says whether the brand
// was new or an existing record was updated.
func (h *VendorHandler) Apply(e *core.RequestEvent) error {
	var app models.Application
	if err := e.BindBody(&app); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	res, err := h.vendors.Upsert(e.Request.Context(), app)
	if err != nil {
		return apiError(err, "vendor_apply")
	}

	message := "Application received"
	code := http.StatusCreated
	if res.IsUpdate {
		message = "Application updated"
		code = http.StatusOK
	}
	return e.JSON(code, map[string]any{
		"message":  message,
		"isUpdate": res.IsUpdate,
		"vendor":   res.Vendor,
	})
}

func (h *VendorHandler) List(e *core.RequestEvent) error {
	vendors, err := h.vendors.List(e.Request.Context(), models.VendorStatus(e.Request.URL.Query().Get("status")))
	if err != nil {
		return apiError(err, "list_vendors")
	}
	return e.JSON(http.StatusOK, map[string]any{"items": vendors})
}

func (h *VendorHandler) Get(e *core.RequestEvent) error {
	v, err := h.vendors.Get(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err, "get_vendor")
	}
	return e.JSON(http.StatusOK, v)
}

func (h *VendorHandler) Create(e *core.RequestEvent) error {
	var v models.Vendor
	if err := e.BindBody(&v); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	created, err := h.vendors.CreateDirect(e.Request.Context(), &v)
	if err != nil {
		return apiError(err, "create_vendor")
	}
	return e.JSON(http.StatusCreated, created)
}

func (h *VendorHandler) Approve(e *core.RequestEvent) error {
	v, err := h.vendors.Approve(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err, "approve_vendor")
	}
	return e.JSON(http.StatusOK, v)
}

func (h *VendorHandler) Decline(e *core.RequestEvent) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	v, err := h.vendors.Decline(e.Request.Context(), e.Request.PathValue("id"), req.Reason)
	if err != nil {
		return apiError(err, "decline_vendor")
	}
	return e.JSON(http.StatusOK, v)
}

func (h *VendorHandler) Reopen(e *core.RequestEvent) error {
	v, err := h.vendors.Reopen(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err, "reopen_vendor")
	}
	return e.JSON(http.StatusOK, v)
}

func (h *VendorHandler) Delete(e *core.RequestEvent) error {
	if err := h.vendors.Delete(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return apiError(err, "delete_vendor")
	}
	return e.NoContent(http.StatusNoContent)
}
