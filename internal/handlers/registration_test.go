package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-registration-platform/internal/models"
	"event-registration-platform/internal/repositories"
	"event-registration-platform/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRegistrationService for testing handlers in isolation
type mockRegistrationService struct {
	createResult *services.CreateResult
	registration *models.Registration
	err          error

	lastCreateReq   *models.RegistrationCreateRequest
	lastStatus      models.RegistrationStatus
	lastPaymentRef  string
	lastFilters     repositories.RegistrationSearchFilters
	confirmPayments int
}

func (m *mockRegistrationService) Create(req *models.RegistrationCreateRequest, caller *models.Identity) (*services.CreateResult, error) {
	m.lastCreateReq = req
	return m.createResult, m.err
}

func (m *mockRegistrationService) Cancel(registrationID int, caller *models.Identity) (*models.Registration, error) {
	return m.registration, m.err
}

func (m *mockRegistrationService) UpdateStatus(registrationID int, newStatus models.RegistrationStatus, caller *models.Identity) (*models.Registration, error) {
	m.lastStatus = newStatus
	return m.registration, m.err
}

func (m *mockRegistrationService) ConfirmPayment(registrationID int, paymentReference string) (*models.Registration, error) {
	m.confirmPayments++
	m.lastPaymentRef = paymentReference
	return m.registration, m.err
}

func (m *mockRegistrationService) GetByID(registrationID int, caller *models.Identity) (*models.Registration, error) {
	return m.registration, m.err
}

func (m *mockRegistrationService) List(filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error) {
	m.lastFilters = filters
	if m.err != nil {
		return nil, 0, m.err
	}
	return []*models.Registration{m.registration}, 1, nil
}

func (m *mockRegistrationService) ListForEvent(eventID int, filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error) {
	m.lastFilters = filters
	if m.err != nil {
		return nil, 0, m.err
	}
	return []*models.Registration{m.registration}, 1, nil
}

func (m *mockRegistrationService) ListAll(filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error) {
	m.lastFilters = filters
	if m.err != nil {
		return nil, 0, m.err
	}
	return []*models.Registration{m.registration}, 1, nil
}

func testRouter(service services.RegistrationServiceInterface) *chi.Mux {
	handler := NewRegistrationHandler(service)

	router := chi.NewRouter()
	router.Post("/api/registrations", handler.Create)
	router.Get("/api/registrations", handler.List)
	router.Get("/api/registrations/{id}", handler.Get)
	router.Post("/api/registrations/{id}/cancel", handler.Cancel)
	router.Patch("/api/registrations/{id}/status", handler.UpdateStatus)
	router.Get("/api/events/{eventID}/registrations", handler.ListForEvent)
	router.Post("/api/payments/callback", handler.PaymentCallback)
	return router
}

func createRequestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(models.RegistrationCreateRequest{
		EventID: 1,
		Attendees: []models.AttendeeInput{
			{Email: "alice@example.com", Name: "Alice Doe", IsPrimary: true},
		},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestRegistrationHandler_Create(t *testing.T) {
	t.Run("successful registration returns 201", func(t *testing.T) {
		service := &mockRegistrationService{
			createResult: &services.CreateResult{
				Message:        "registration confirmed",
				RegistrationID: 12,
				Reference:      "ref-test",
			},
		}
		router := testRouter(service)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/registrations", createRequestBody(t)))

		assert.Equal(t, http.StatusCreated, rec.Code)

		var result services.CreateResult
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
		assert.Equal(t, "registration confirmed", result.Message)
		assert.Equal(t, 12, result.RegistrationID)
		require.NotNil(t, service.lastCreateReq)
		assert.Equal(t, 1, service.lastCreateReq.EventID)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		router := testRouter(&mockRegistrationService{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/registrations", bytes.NewBufferString("{not json")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("capacity error returns 409", func(t *testing.T) {
		service := &mockRegistrationService{err: &models.CapacityError{Message: "insufficient tickets available"}}
		router := testRouter(service)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/registrations", createRequestBody(t)))

		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp["error"], "insufficient tickets")
	})

	t.Run("validation error returns 400", func(t *testing.T) {
		service := &mockRegistrationService{err: &models.ValidationError{Message: "exactly one attendee must be marked as primary"}}
		router := testRouter(service)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/registrations", createRequestBody(t)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegistrationHandler_Get(t *testing.T) {
	t.Run("invalid id returns 400", func(t *testing.T) {
		router := testRouter(&mockRegistrationService{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/registrations/abc", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown registration returns 404", func(t *testing.T) {
		service := &mockRegistrationService{err: &models.NotFoundError{Resource: "registration", ID: 99}}
		router := testRouter(service)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/registrations/99", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("foreign registration returns 403", func(t *testing.T) {
		service := &mockRegistrationService{err: &models.AuthorizationError{Message: "insufficient permissions"}}
		router := testRouter(service)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/registrations/1", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("found registration returns 200", func(t *testing.T) {
		service := &mockRegistrationService{
			registration: &models.Registration{ID: 1, Reference: "ref-test", Status: models.RegistrationConfirmed},
		}
		router := testRouter(service)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/registrations/1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var registration models.Registration
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&registration))
		assert.Equal(t, "ref-test", registration.Reference)
	})
}

func TestRegistrationHandler_List(t *testing.T) {
	service := &mockRegistrationService{
		registration: &models.Registration{ID: 1, Status: models.RegistrationConfirmed},
	}
	router := testRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/registrations?status=confirmed&limit=5&page=3&sort=asc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RegistrationConfirmed, service.lastFilters.Status)
	assert.Equal(t, 5, service.lastFilters.Limit)
	assert.Equal(t, 10, service.lastFilters.Offset)
	assert.False(t, service.lastFilters.SortDesc)

	var resp listResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.TotalCount)
	assert.Len(t, resp.Items, 1)
}

func TestRegistrationHandler_Cancel(t *testing.T) {
	service := &mockRegistrationService{
		registration: &models.Registration{ID: 1, Status: models.RegistrationCancelled},
	}
	router := testRouter(service)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/registrations/1/cancel", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var registration models.Registration
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&registration))
	assert.Equal(t, models.RegistrationCancelled, registration.Status)
}

func TestRegistrationHandler_UpdateStatus(t *testing.T) {
	service := &mockRegistrationService{
		registration: &models.Registration{ID: 1, Status: models.RegistrationConfirmed},
	}
	router := testRouter(service)

	body := bytes.NewBufferString(`{"status":"confirmed"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("PATCH", "/api/registrations/1/status", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RegistrationConfirmed, service.lastStatus)
}

func TestRegistrationHandler_PaymentCallback(t *testing.T) {
	t.Run("success signal confirms the registration", func(t *testing.T) {
		service := &mockRegistrationService{
			registration: &models.Registration{ID: 1, Status: models.RegistrationConfirmed},
		}
		router := testRouter(service)

		body := bytes.NewBufferString(`{"registration_id":1,"payment_reference":"pay-abc123","status":"success"}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/payments/callback", body))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, service.confirmPayments)
		assert.Equal(t, "pay-abc123", service.lastPaymentRef)
	})

	t.Run("failure signal leaves the registration pending", func(t *testing.T) {
		service := &mockRegistrationService{}
		router := testRouter(service)

		body := bytes.NewBufferString(`{"registration_id":1,"payment_reference":"pay-abc123","status":"failed"}`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/payments/callback", body))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, service.confirmPayments)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp["message"], "remains pending")
	})
}
