package handlers

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"

	"wellspace/internal/pkg/errors"
	"wellspace/internal/platform/audit"
	"wellspace/internal/platform/models"
	"wellspace/internal/platform/repositories"
)

type InviteHandler struct {
	inviteRepo *repositories.InviteRepository
	audit      *audit.Logger
}

func NewInviteHandler(inviteRepo *repositories.InviteRepository, auditLogger *audit.Logger) *InviteHandler {
	return &InviteHandler{inviteRepo: inviteRepo, audit: auditLogger}
}

type CreateInviteRequest struct {
	Email       string `json:"email"`
	MaxUses     int    `json:"max_uses"`
	ExpiresDays int    `json:"expires_days"`
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return
	}

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	maxUses := req.MaxUses
	if maxUses <= 0 {
		maxUses = 1
	}
	expiresDays := req.ExpiresDays
	if expiresDays <= 0 {
		expiresDays = 7
	}

	now := time.Now()
	invite := &models.Invite{
		ID:        "inv_" + uuid.NewString(),
		Code:      generateInviteCode(12),
		Email:     req.Email,
		Role:      "specialist",
		InvitedBy: claims.UserID,
		Status:    "pending",
		MaxUses:   maxUses,
		ExpiresAt: now.AddDate(0, 0, expiresDays).Unix(),
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
	}

	if err := h.inviteRepo.Create(invite); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create invite", nil)
		return
	}

	h.audit.Log(r.Context(), "invite.create", "invite", invite.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(invite)
}

func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	invites, err := h.inviteRepo.List()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"invites": invites})
}

func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id := paramsFrom(r).ByName("invite_id")
	if err := h.inviteRepo.Revoke(id); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to revoke invite", nil)
		return
	}

	h.audit.Log(r.Context(), "invite.revoke", "invite", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateInviteCode(length int) string {
	code := make([]byte, length)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range code {
		n, _ := rand.Int(rand.Reader, max)
		code[i] = inviteAlphabet[n.Int64()]
	}
	return string(code)
}
