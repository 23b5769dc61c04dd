package middleware

import (
	"context"
	"net/http"

	apiContext "wellspace/internal/api/context"
	"wellspace/internal/pkg/errors"
	"wellspace/internal/platform/auth"
	"wellspace/internal/platform/models"
	"wellspace/internal/platform/repositories"
)

// CompanyContext carries the resolved company for company-scoped routes.
type CompanyContext struct {
	Company *models.Company
}

type CompanyMiddleware struct {
	companyRepo *repositories.CompanyRepository
}

func NewCompanyMiddleware(companyRepo *repositories.CompanyRepository) *CompanyMiddleware {
	return &CompanyMiddleware{companyRepo: companyRepo}
}

// Handle loads the authenticated user's company and injects it. Specialists
// carry no company id and are rejected here; company-scoped routes are for
// employees and admins.
func (m *CompanyMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
			return
		}
		if claims.CompanyID == "" {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Not a company account", nil)
			return
		}

		company, err := m.companyRepo.GetByID(claims.CompanyID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load company", nil)
			return
		}
		if company == nil {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company not found", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Company, &CompanyContext{Company: company})
		next(w, r.WithContext(ctx))
	}
}

// RequireActiveSubscription gates booking creation: a company must have
// paid before employees can book sessions.
func RequireActiveSubscription(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyCtx, ok := r.Context().Value(apiContext.Company).(*CompanyContext)
		if !ok {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
			return
		}

		if companyCtx.Company.SubscriptionStatus != "active" {
			errors.WriteError(w, http.StatusPaymentRequired, errors.ErrCodePaymentRequired, "Company subscription is not active", nil)
			return
		}

		next(w, r)
	}
}
