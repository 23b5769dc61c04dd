package handlers

import (
	"encoding/json"
	"net/http"

	"wellspace/internal/engine/messaging"
	"wellspace/internal/pkg/errors"
	"wellspace/internal/platform/repositories"
)

type MessageHandler struct {
	messages       *messaging.Service
	specialistRepo *repositories.SpecialistRepository
}

func NewMessageHandler(messages *messaging.Service, specialistRepo *repositories.SpecialistRepository) *MessageHandler {
	return &MessageHandler{messages: messages, specialistRepo: specialistRepo}
}

func writeMessageError(w http.ResponseWriter, err error) {
	switch err {
	case messaging.ErrNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Booking not found", nil)
	case messaging.ErrUnauthorized:
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Not a party to this booking", nil)
	case messaging.ErrCapExceeded:
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeCapExceeded, "Message limit reached for this booking", nil)
	case messaging.ErrEmptyBody, messaging.ErrInvalidSender:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", nil)
	}
}

// senderIdentity maps the authenticated user onto a booking party. A
// specialist's messages are keyed by their specialist id, not user id,
// because that is what the booking references.
func (h *MessageHandler) senderIdentity(r *http.Request) (senderType, senderID string, err error) {
	claims, ok := claimsFrom(r)
	if !ok {
		return "", "", messaging.ErrUnauthorized
	}

	if claims.Role == "specialist" {
		spec, err := h.specialistRepo.GetByUserID(claims.UserID)
		if err != nil {
			return "", "", err
		}
		if spec == nil {
			return "", "", messaging.ErrUnauthorized
		}
		return messaging.SenderSpecialist, spec.ID, nil
	}
	return messaging.SenderEmployee, claims.UserID, nil
}

type SendMessageRequest struct {
	Body string `json:"body"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	senderType, senderID, err := h.senderIdentity(r)
	if err != nil {
		writeMessageError(w, err)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	msg, err := h.messages.Send(paramsFrom(r).ByName("booking_id"), senderType, senderID, req.Body)
	if err != nil {
		writeMessageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	senderType, senderID, err := h.senderIdentity(r)
	if err != nil {
		writeMessageError(w, err)
		return
	}

	msgs, err := h.messages.ListFor(paramsFrom(r).ByName("booking_id"), senderType, senderID)
	if err != nil {
		writeMessageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"messages": msgs})
}
