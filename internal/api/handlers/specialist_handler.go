package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wellspace/internal/engine/booking"
	"wellspace/internal/pkg/errors"
	"wellspace/internal/platform/audit"
	"wellspace/internal/platform/models"
	"wellspace/internal/platform/repositories"
)

type SpecialistHandler struct {
	specialistRepo *repositories.SpecialistRepository
	userRepo       *repositories.UserRepository
	audit          *audit.Logger
}

func NewSpecialistHandler(specialistRepo *repositories.SpecialistRepository, userRepo *repositories.UserRepository, auditLogger *audit.Logger) *SpecialistHandler {
	return &SpecialistHandler{specialistRepo: specialistRepo, userRepo: userRepo, audit: auditLogger}
}

// List returns active specialists for booking. Admins can pass
// ?include_inactive=true to see deactivated profiles too.
func (h *SpecialistHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return
	}

	activeOnly := true
	if claims.Role == "admin" && r.URL.Query().Get("include_inactive") == "true" {
		activeOnly = false
	}

	specs, err := h.specialistRepo.List(activeOnly)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"specialists": specs})
}

func (h *SpecialistHandler) Get(w http.ResponseWriter, r *http.Request) {
	spec, err := h.specialistRepo.GetByID(paramsFrom(r).ByName("specialist_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if spec == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Specialist not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

type CreateSpecialistRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	DisplayName string `json:"display_name"`
	Specialty   string `json:"specialty"`
	RateTier    string `json:"rate_tier"`
	HourlyRate  *int   `json:"hourly_rate"`
	Bio         string `json:"bio"`
}

// Create provisions a specialist account directly, without an invite.
func (h *SpecialistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSpecialistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "email and password are required", nil)
		return
	}
	if req.RateTier != "" && !validRateTier(req.RateTier) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown rate tier", nil)
		return
	}

	existingUser, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existingUser != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User already exists", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.FullName
	}

	now := time.Now().Unix()
	user := &models.User{
		ID:           "usr_" + uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         "specialist",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.userRepo.Create(user); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create user", nil)
		return
	}

	spec := &models.Specialist{
		ID:          "spc_" + uuid.NewString(),
		UserID:      user.ID,
		DisplayName: displayName,
		Specialty:   req.Specialty,
		RateTier:    req.RateTier,
		HourlyRate:  req.HourlyRate,
		Bio:         req.Bio,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.specialistRepo.Create(spec); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create specialist", nil)
		return
	}

	h.audit.Log(r.Context(), "specialist.create", "specialist", spec.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(spec)
}

type UpdateSpecialistRequest struct {
	DisplayName *string `json:"display_name"`
	Specialty   *string `json:"specialty"`
	RateTier    *string `json:"rate_tier"`
	HourlyRate  *int    `json:"hourly_rate"`
	Bio         *string `json:"bio"`
}

func (h *SpecialistHandler) Update(w http.ResponseWriter, r *http.Request) {
	spec, err := h.specialistRepo.GetByID(paramsFrom(r).ByName("specialist_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if spec == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Specialist not found", nil)
		return
	}

	var req UpdateSpecialistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.DisplayName != nil {
		spec.DisplayName = *req.DisplayName
	}
	if req.Specialty != nil {
		spec.Specialty = *req.Specialty
	}
	if req.RateTier != nil {
		if !validRateTier(*req.RateTier) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown rate tier", nil)
			return
		}
		spec.RateTier = *req.RateTier
	}
	if req.HourlyRate != nil {
		spec.HourlyRate = req.HourlyRate
	}
	if req.Bio != nil {
		spec.Bio = *req.Bio
	}
	spec.UpdatedAt = time.Now().Unix()

	if err := h.specialistRepo.Update(spec); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update specialist", nil)
		return
	}

	h.audit.Log(r.Context(), "specialist.update", "specialist", spec.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

// Deactivate hides the specialist from booking without touching history.
func (h *SpecialistHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "specialist.deactivate")
}

func (h *SpecialistHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "specialist.reactivate")
}

func (h *SpecialistHandler) setActive(w http.ResponseWriter, r *http.Request, active bool, action string) {
	id := paramsFrom(r).ByName("specialist_id")
	spec, err := h.specialistRepo.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if spec == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Specialist not found", nil)
		return
	}

	if err := h.specialistRepo.SetActive(id, active); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update specialist", nil)
		return
	}

	h.audit.Log(r.Context(), action, "specialist", id, nil)
	spec.IsActive = active

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

func (h *SpecialistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := paramsFrom(r).ByName("specialist_id")
	spec, err := h.specialistRepo.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if spec == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Specialist not found", nil)
		return
	}

	if err := h.specialistRepo.Delete(id); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete specialist", nil)
		return
	}

	h.audit.Log(r.Context(), "specialist.delete", "specialist", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func validRateTier(tier string) bool {
	switch booking.RateTier(tier) {
	case booking.TierStandard, booking.TierAdvanced, booking.TierExpert, booking.TierMaster:
		return true
	}
	return false
}
