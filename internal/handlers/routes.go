package handlers

import (
	"time"

	"nightmarket/security"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
)

type Handlers struct {
	Tickets      *TicketHandler
	Gate         *GateHandler
	Payments     *PaymentHandler
	Vendors      *VendorHandler
	Events       *EventHandler
	Testimonials *TestimonialHandler
	Admin        *AdminHandler
}

type RouteOptions struct {
	// Limiter is optional; without it no route is rate limited.
	Limiter     *security.RateLimiter
	GateLimit   int
	ApplyLimit  int
	RateWindow  time.Duration
	Development bool
}

func RegisterRoutes(r *router.Router[*core.RequestEvent], h Handlers, opts RouteOptions) {
	g := r.Group("/api/market")

	// Public
	g.GET("/events", h.Events.ListActive)
	g.GET("/events/{id}/availability", h.Events.Availability)
	g.POST("/tickets/checkout", h.Tickets.Checkout)
	g.GET("/testimonials", h.Testimonials.List)
	g.POST("/testimonials", h.Testimonials.Create).BindFunc(security.BlockBots)
	g.POST("/payments/webhook", h.Payments.Webhook)

	apply := g.POST("/vendors/apply", h.Vendors.Apply).BindFunc(security.BlockBots)
	if opts.Limiter != nil {
		apply.BindFunc(opts.Limiter.Limit("apply", opts.ApplyLimit, opts.RateWindow))
	}

	// Gate staff
	g.GET("/tickets/{reference}", h.Tickets.GetTicket).Bind(apis.RequireAuth())
	confirm := g.POST("/gate/confirm", h.Gate.Confirm).Bind(apis.RequireAuth())
	if opts.Limiter != nil {
		confirm.BindFunc(opts.Limiter.Limit("gate", opts.GateLimit, opts.RateWindow))
	}

	// Admin
	admin := g.Group("/admin")
	admin.Bind(apis.RequireSuperuserAuth())
	admin.GET("/dashboard", h.Admin.Dashboard)

	admin.GET("/events", h.Events.List)
	admin.POST("/events", h.Events.Create)
	admin.PATCH("/events/{id}", h.Events.Update)
	admin.POST("/events/{id}/status", h.Events.SetStatus)
	admin.DELETE("/events/{id}", h.Events.Delete)
	admin.GET("/events/{id}/tickets", h.Tickets.ListEventTickets)

	admin.GET("/vendors", h.Vendors.List)
	admin.POST("/vendors", h.Vendors.Create)
	admin.GET("/vendors/{id}", h.Vendors.Get)
	admin.POST("/vendors/{id}/approve", h.Vendors.Approve)
	admin.POST("/vendors/{id}/decline", h.Vendors.Decline)
	admin.POST("/vendors/{id}/reopen", h.Vendors.Reopen)
	admin.DELETE("/vendors/{id}", h.Vendors.Delete)

	// Test endpoint for payment simulation
	if opts.Development {
		g.POST("/test/simulate-payment", h.Payments.SimulatePayment).Bind(apis.RequireSuperuserAuth())
	}
}
