package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"wellspace/internal/pkg/errors"
	"wellspace/internal/platform/audit"
	"wellspace/internal/platform/billing"
	"wellspace/internal/platform/repositories"
)

type BillingHandler struct {
	provider    billing.Provider
	companyRepo *repositories.CompanyRepository
	audit       *audit.Logger
}

func NewBillingHandler(provider billing.Provider, companyRepo *repositories.CompanyRepository, auditLogger *audit.Logger) *BillingHandler {
	return &BillingHandler{provider: provider, companyRepo: companyRepo, audit: auditLogger}
}

func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"plans": billing.Plans()})
}

type CheckoutRequest struct {
	PlanType string `json:"plan_type"`
}

// Checkout starts a subscription purchase. Test companies come back
// already activated; everyone else gets a redirect URL and activates
// later via Activate.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	company, ok := companyFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	plan, err := billing.PlanByType(req.PlanType)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown plan type", nil)
		return
	}

	session, err := h.provider.StartCheckout(company, plan)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Checkout failed", nil)
		return
	}

	if session.Activated {
		if err := h.companyRepo.ActivateSubscription(company.ID, plan.Type, plan.MinutesIncluded, session.PeriodEnd); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to activate subscription", nil)
			return
		}
		h.audit.Log(r.Context(), "billing.activate", "company", company.ID, map[string]interface{}{"plan": plan.Type})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

type ActivateRequest struct {
	PlanType  string `json:"plan_type"`
	PeriodEnd int64  `json:"period_end"`
}

// Activate applies a completed purchase to the company: subscription goes
// active and the plan's minutes become the monthly allotment.
func (h *BillingHandler) Activate(w http.ResponseWriter, r *http.Request) {
	company, ok := companyFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
		return
	}

	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	plan, err := billing.PlanByType(req.PlanType)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown plan type", nil)
		return
	}

	periodEnd := req.PeriodEnd
	if periodEnd == 0 {
		periodEnd = time.Now().AddDate(0, 1, 0).Unix()
	}

	if err := h.companyRepo.ActivateSubscription(company.ID, plan.Type, plan.MinutesIncluded, periodEnd); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to activate subscription", nil)
		return
	}

	h.audit.Log(r.Context(), "billing.activate", "company", company.ID, map[string]interface{}{"plan": plan.Type})

	updated, err := h.companyRepo.GetByID(company.ID)
	if err != nil || updated == nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
