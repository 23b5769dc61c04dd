package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "wellspace/internal/api/context"
	"wellspace/internal/api/handlers"
	"wellspace/internal/api/middleware"
	"wellspace/internal/pkg/errors"
	"wellspace/internal/platform/auth"
)

type Dependencies struct {
	AuthHandler       *handlers.AuthHandler
	CompanyHandler    *handlers.CompanyHandler
	BillingHandler    *handlers.BillingHandler
	SpecialistHandler *handlers.SpecialistHandler
	InviteHandler     *handlers.InviteHandler
	BookingHandler    *handlers.BookingHandler
	MessageHandler    *handlers.MessageHandler
	WebhookHandler    *handlers.WebhookHandler
	AuditHandler      *handlers.AuditHandler
	HealthHandler     *handlers.HealthHandler
	MetricsHandler    *handlers.MetricsHandler
	AuthMiddleware    *middleware.AuthMiddleware
	CompanyMiddleware *middleware.CompanyMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Registration and authentication
	router.POST("/api/v1/companies", wrap(deps.CompanyHandler.Register))
	router.POST("/api/v1/auth/signup", wrap(deps.AuthHandler.Signup))
	router.POST("/api/v1/auth/signup/specialist", wrap(deps.AuthHandler.SignupSpecialist))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))

	authMid := deps.AuthMiddleware
	companyMid := deps.CompanyMiddleware

	// Company account
	router.GET("/api/v1/companies/current",
		chain(deps.CompanyHandler.Current, authMid.Handle, companyMid.Handle))
	router.GET("/api/v1/companies/current/balance",
		chain(deps.CompanyHandler.Balance, authMid.Handle, companyMid.Handle, middleware.RateLimit("api_read")))
	router.GET("/api/v1/companies/current/usage",
		chain(deps.CompanyHandler.Usage, authMid.Handle, companyMid.Handle, middleware.RateLimit("api_read")))

	// Billing
	router.GET("/api/v1/billing/plans", wrap(deps.BillingHandler.ListPlans))
	router.POST("/api/v1/billing/checkout",
		chain(deps.BillingHandler.Checkout, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.POST("/api/v1/billing/activate",
		chain(deps.BillingHandler.Activate, authMid.Handle, companyMid.Handle, requireRole("admin")))

	// Specialist directory and admin management
	router.GET("/api/v1/specialists",
		chain(deps.SpecialistHandler.List, authMid.Handle, middleware.RateLimit("api_read")))
	router.GET("/api/v1/specialists/:specialist_id",
		chain(deps.SpecialistHandler.Get, authMid.Handle, middleware.RateLimit("api_read")))
	router.POST("/api/v1/specialists",
		chain(deps.SpecialistHandler.Create, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.PATCH("/api/v1/specialists/:specialist_id",
		chain(deps.SpecialistHandler.Update, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.POST("/api/v1/specialists/:specialist_id/deactivate",
		chain(deps.SpecialistHandler.Deactivate, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.POST("/api/v1/specialists/:specialist_id/reactivate",
		chain(deps.SpecialistHandler.Reactivate, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.DELETE("/api/v1/specialists/:specialist_id",
		chain(deps.SpecialistHandler.Delete, authMid.Handle, companyMid.Handle, requireRole("admin")))

	// Invites
	router.POST("/api/v1/invites",
		chain(deps.InviteHandler.Create, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.GET("/api/v1/invites",
		chain(deps.InviteHandler.List, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.DELETE("/api/v1/invites/:invite_id",
		chain(deps.InviteHandler.Revoke, authMid.Handle, companyMid.Handle, requireRole("admin")))

	// Booking lifecycle. Creation requires a paid company; transitions are
	// open to any authenticated party and authorized inside the service.
	router.POST("/api/v1/bookings",
		chain(deps.BookingHandler.Create, authMid.Handle, companyMid.Handle,
			middleware.RequireActiveSubscription, middleware.RateLimit("api_write")))
	router.GET("/api/v1/bookings",
		chain(deps.BookingHandler.List, authMid.Handle, middleware.RateLimit("api_read")))
	router.GET("/api/v1/bookings/:booking_id",
		chain(deps.BookingHandler.Get, authMid.Handle, middleware.RateLimit("api_read")))
	router.POST("/api/v1/bookings/:booking_id/accept",
		chain(deps.BookingHandler.Accept, authMid.Handle, middleware.RateLimit("api_write")))
	router.POST("/api/v1/bookings/:booking_id/decline",
		chain(deps.BookingHandler.Decline, authMid.Handle, middleware.RateLimit("api_write")))
	router.POST("/api/v1/bookings/:booking_id/cancel",
		chain(deps.BookingHandler.Cancel, authMid.Handle, middleware.RateLimit("api_write")))
	router.POST("/api/v1/bookings/:booking_id/complete",
		chain(deps.BookingHandler.Complete, authMid.Handle, middleware.RateLimit("api_write")))
	router.GET("/api/v1/bookings/:booking_id/qr",
		chain(deps.BookingHandler.MeetingQR, authMid.Handle, middleware.RateLimit("api_read")))

	// Booking thread
	router.POST("/api/v1/bookings/:booking_id/messages",
		chain(deps.MessageHandler.Send, authMid.Handle, middleware.RateLimit("messages")))
	router.GET("/api/v1/bookings/:booking_id/messages",
		chain(deps.MessageHandler.List, authMid.Handle, middleware.RateLimit("api_read")))

	// Webhooks
	router.POST("/api/v1/webhooks",
		chain(deps.WebhookHandler.Create, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.GET("/api/v1/webhooks",
		chain(deps.WebhookHandler.List, authMid.Handle, companyMid.Handle, requireRole("admin")))
	router.DELETE("/api/v1/webhooks/:webhook_id",
		chain(deps.WebhookHandler.Delete, authMid.Handle, companyMid.Handle, requireRole("admin")))

	// Audit
	router.GET("/api/v1/audit",
		chain(deps.AuditHandler.List, authMid.Handle, companyMid.Handle, requireRole("admin")))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
			if !ok {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
				return
			}

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
