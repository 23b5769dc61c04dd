package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"wellspace/internal/pkg/errors"
	"wellspace/internal/platform/audit"
	"wellspace/internal/platform/models"
	"wellspace/internal/platform/repositories"
)

type WebhookHandler struct {
	webhookRepo *repositories.WebhookRepository
	audit       *audit.Logger
}

func NewWebhookHandler(webhookRepo *repositories.WebhookRepository, auditLogger *audit.Logger) *WebhookHandler {
	return &WebhookHandler{webhookRepo: webhookRepo, audit: auditLogger}
}

type CreateWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	company, ok := companyFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
		return
	}

	var req CreateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "url must be a valid http(s) URL", nil)
		return
	}
	if len(req.Events) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "at least one event is required", nil)
		return
	}

	secret := req.Secret
	if secret == "" {
		secret = company.WebhookSecret
	}

	webhook := &models.Webhook{
		CompanyID: company.ID,
		URL:       req.URL,
		Events:    req.Events,
		Secret:    secret,
	}
	if err := h.webhookRepo.Create(webhook); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create webhook", nil)
		return
	}

	h.audit.Log(r.Context(), "webhook.create", "webhook", webhook.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(webhook)
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	company, ok := companyFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
		return
	}

	webhooks, err := h.webhookRepo.ListByCompany(company.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"webhooks": webhooks})
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	company, ok := companyFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
		return
	}

	id := paramsFrom(r).ByName("webhook_id")
	webhook, err := h.webhookRepo.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if webhook == nil || webhook.CompanyID != company.ID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Webhook not found", nil)
		return
	}

	if err := h.webhookRepo.Delete(id); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete webhook", nil)
		return
	}

	h.audit.Log(r.Context(), "webhook.delete", "webhook", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
