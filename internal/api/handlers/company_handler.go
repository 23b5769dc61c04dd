package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apiContext "wellspace/internal/api/context"
	"wellspace/internal/api/middleware"
	"wellspace/internal/engine/ledger"
	"wellspace/internal/pkg/errors"
	"wellspace/internal/pkg/validator"
	"wellspace/internal/platform/auth"
	"wellspace/internal/platform/models"
	"wellspace/internal/platform/repositories"
)

type CompanyHandler struct {
	companyRepo *repositories.CompanyRepository
	userRepo    *repositories.UserRepository
	ledger      *ledger.Repository
	tokenSvc    *auth.TokenService
}

func NewCompanyHandler(companyRepo *repositories.CompanyRepository, userRepo *repositories.UserRepository, ledgerRepo *ledger.Repository, tokenSvc *auth.TokenService) *CompanyHandler {
	return &CompanyHandler{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		ledger:      ledgerRepo,
		tokenSvc:    tokenSvc,
	}
}

func companyFrom(r *http.Request) (*models.Company, bool) {
	cc, ok := r.Context().Value(apiContext.Company).(*middleware.CompanyContext)
	if !ok {
		return nil, false
	}
	return cc.Company, true
}

type RegisterCompanyRequest struct {
	CompanyName   string `json:"company_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
	AdminName     string `json:"admin_name"`
}

// Register creates a company in unpaid state together with its first
// admin. The admin's email domain becomes the company domain that
// employees later auto-join through.
func (h *CompanyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.CompanyName == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "company_name is required", nil)
		return
	}
	if err := validator.IsCorporateEmail(req.AdminEmail); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	domain, _ := validator.EmailDomain(req.AdminEmail)
	existing, err := h.companyRepo.GetByDomain(domain)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "A company is already registered for this domain", nil)
		return
	}

	existingUser, err := h.userRepo.GetByEmail(req.AdminEmail)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existingUser != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "User already exists", nil)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	now := time.Now().Unix()
	company := &models.Company{
		ID:                 "cmp_" + uuid.NewString(),
		Name:               req.CompanyName,
		Domain:             domain,
		SubscriptionStatus: "unpaid",
		WebhookSecret:      generateSecret(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.companyRepo.Create(company); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create company", nil)
		return
	}

	admin := &models.User{
		ID:           "usr_" + uuid.NewString(),
		CompanyID:    company.ID,
		Email:        req.AdminEmail,
		PasswordHash: string(hashedPassword),
		FullName:     req.AdminName,
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.userRepo.Create(admin); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create admin user", nil)
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(admin.ID, company.ID, admin.Role, admin.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}
	refreshToken, err := h.tokenSvc.GenerateRefreshToken(admin.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	admin.Company = company
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{
		User:         admin,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *CompanyHandler) Current(w http.ResponseWriter, r *http.Request) {
	company, ok := companyFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(company)
}

func (h *CompanyHandler) Balance(w http.ResponseWriter, r *http.Request) {
	company, ok := companyFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
		return
	}

	balance, err := h.ledger.Balance(company.ID)
	if err != nil {
		if err == ledger.ErrCompanyNotFound {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Company not found", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(balance)
}

func (h *CompanyHandler) Usage(w http.ResponseWriter, r *http.Request) {
	company, ok := companyFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Company context missing", nil)
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	events, err := h.ledger.ListUsage(company.ID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"events": events,
		"limit":  limit,
		"offset": offset,
	})
}

func generateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
