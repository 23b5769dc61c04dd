package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	apiContext "wellspace/internal/api/context"
	"wellspace/internal/engine/booking"
	"wellspace/internal/engine/ledger"
	"wellspace/internal/pkg/errors"
	"wellspace/internal/platform/audit"
	"wellspace/internal/platform/auth"
)

type BookingHandler struct {
	bookings *booking.Service
	audit    *audit.Logger
}

func NewBookingHandler(bookings *booking.Service, auditLogger *audit.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, audit: auditLogger}
}

func claimsFrom(r *http.Request) (*auth.Claims, bool) {
	claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
	return claims, ok
}

func paramsFrom(r *http.Request) httprouter.Params {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params
}

func actorFrom(claims *auth.Claims) booking.Actor {
	return booking.Actor{UserID: claims.UserID, Role: claims.Role}
}

func writeBookingError(w http.ResponseWriter, err error) {
	switch err {
	case booking.ErrNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Booking not found", nil)
	case booking.ErrUnauthorized:
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Not a party to this booking", nil)
	case booking.ErrInvalidTransition:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeInvalidTransition, "Booking is not in a state that allows this action", nil)
	case booking.ErrInvalidDuration:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
	case ledger.ErrCompanyNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Company not found", nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", nil)
	}
}

type CreateBookingRequest struct {
	SpecialistID    string `json:"specialist_id"`
	ProposedAt      int64  `json:"proposed_at"`
	DurationMinutes int    `json:"duration_minutes"`
	SessionType     string `json:"session_type"`
	Notes           string `json:"notes"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.SpecialistID == "" || req.ProposedAt == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "specialist_id and proposed_at are required", nil)
		return
	}

	b, err := h.bookings.Request(actorFrom(claims), booking.CreateRequest{
		CompanyID:       claims.CompanyID,
		SpecialistID:    req.SpecialistID,
		ProposedAt:      req.ProposedAt,
		DurationMinutes: req.DurationMinutes,
		SessionType:     req.SessionType,
		Notes:           req.Notes,
	})
	if err != nil {
		writeBookingError(w, err)
		return
	}

	h.audit.Log(r.Context(), "booking.create", "booking", b.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(b)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
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

	list, err := h.bookings.ListFor(actorFrom(claims), limit, offset)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"bookings": list,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return
	}

	b, err := h.bookings.Get(actorFrom(claims), paramsFrom(r).ByName("booking_id"))
	if err != nil {
		writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "booking.accept", h.bookings.Accept)
}

func (h *BookingHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "booking.decline", h.bookings.Decline)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "booking.cancel", h.bookings.Cancel)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "booking.complete", h.bookings.Complete)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(booking.Actor, string) (*booking.Booking, error)) {
	claims, ok := claimsFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return
	}

	bookingID := paramsFrom(r).ByName("booking_id")
	b, err := fn(actorFrom(claims), bookingID)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	h.audit.Log(r.Context(), action, "booking", b.ID, nil)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}

// MeetingQR renders the booking's meeting link as a QR code PNG, for
// joining a confirmed session from a phone.
func (h *BookingHandler) MeetingQR(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
		return
	}

	b, err := h.bookings.Get(actorFrom(claims), paramsFrom(r).ByName("booking_id"))
	if err != nil {
		writeBookingError(w, err)
		return
	}
	if b.MeetingLink == "" {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeInvalidTransition, "Booking has no meeting link yet", nil)
		return
	}

	size := 256
	if s := r.URL.Query().Get("size"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed >= 64 && parsed <= 1024 {
			size = parsed
		}
	}

	png, err := qrcode.Encode(b.MeetingLink, qrcode.Medium, size)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate QR code", nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
