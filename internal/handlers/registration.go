package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"event-registration-platform/internal/middleware"
	"event-registration-platform/internal/models"
	"event-registration-platform/internal/repositories"
	"event-registration-platform/internal/services"

	"github.com/go-chi/chi/v5"
)

// RegistrationHandler handles registration requests
type RegistrationHandler struct {
	service services.RegistrationServiceInterface
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(service services.RegistrationServiceInterface) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// listResponse is the envelope for paginated listings
type listResponse struct {
	Items      []*models.Registration `json:"items"`
	TotalCount int                    `json:"total_count"`
}

// Create handles POST /api/registrations
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &models.ValidationError{Message: "invalid request body"})
		return
	}

	caller := middleware.GetIdentityFromContext(r.Context())

	result, err := h.service.Create(&req, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Get handles GET /api/registrations/{id}
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, &models.ValidationError{Message: "invalid registration id"})
		return
	}

	caller := middleware.GetIdentityFromContext(r.Context())

	registration, err := h.service.GetByID(id, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registration)
}

// List handles GET /api/registrations (the caller's own registrations)
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentityFromContext(r.Context())
	filters := parseSearchFilters(r)

	registrations, total, err := h.service.List(filters, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Items: registrations, TotalCount: total})
}

// ListForEvent handles GET /api/events/{eventID}/registrations
func (h *RegistrationHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, &models.ValidationError{Message: "invalid event id"})
		return
	}

	caller := middleware.GetIdentityFromContext(r.Context())
	filters := parseSearchFilters(r)

	registrations, total, err := h.service.ListForEvent(eventID, filters, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Items: registrations, TotalCount: total})
}

// ListAll handles GET /api/admin/registrations
func (h *RegistrationHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentityFromContext(r.Context())
	filters := parseSearchFilters(r)

	if eventID, err := strconv.Atoi(r.URL.Query().Get("event_id")); err == nil {
		filters.EventID = eventID
	}

	registrations, total, err := h.service.ListAll(filters, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Items: registrations, TotalCount: total})
}

// Cancel handles POST /api/registrations/{id}/cancel
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, &models.ValidationError{Message: "invalid registration id"})
		return
	}

	caller := middleware.GetIdentityFromContext(r.Context())

	registration, err := h.service.Cancel(id, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registration)
}

// UpdateStatus handles PATCH /api/registrations/{id}/status
func (h *RegistrationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, &models.ValidationError{Message: "invalid registration id"})
		return
	}

	var body struct {
		Status models.RegistrationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &models.ValidationError{Message: "invalid request body"})
		return
	}

	caller := middleware.GetIdentityFromContext(r.Context())

	registration, err := h.service.UpdateStatus(id, body.Status, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registration)
}

// PaymentCallback handles POST /api/payments/callback, the external
// payment subsystem's success/failure signal. A failure leaves the
// registration pending and retryable.
func (h *RegistrationHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RegistrationID   int    `json:"registration_id"`
		PaymentReference string `json:"payment_reference"`
		Status           string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &models.ValidationError{Message: "invalid request body"})
		return
	}

	if body.Status != "success" {
		log.Printf("Payment for registration %d reported %q, leaving registration pending", body.RegistrationID, body.Status)
		writeJSON(w, http.StatusOK, map[string]string{"message": "payment not completed, registration remains pending"})
		return
	}

	registration, err := h.service.ConfirmPayment(body.RegistrationID, body.PaymentReference)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registration)
}

// parseSearchFilters reads the common listing query parameters
func parseSearchFilters(r *http.Request) repositories.RegistrationSearchFilters {
	query := r.URL.Query()

	filters := repositories.RegistrationSearchFilters{
		Status: models.RegistrationStatus(query.Get("status")),
		Search: query.Get("search"),
		SortBy: query.Get("sort_by"),
	}

	if ticketID, err := strconv.Atoi(query.Get("ticket_id")); err == nil {
		filters.TicketID = ticketID
	}

	limit := 20
	if parsed, err := strconv.Atoi(query.Get("limit")); err == nil && parsed > 0 && parsed <= 100 {
		limit = parsed
	}
	filters.Limit = limit

	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 1 {
		filters.Offset = (page - 1) * limit
	}

	filters.SortDesc = query.Get("sort") != "asc"

	return filters
}
