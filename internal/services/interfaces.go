package services

import (
	"event-registration-platform/internal/models"
	"event-registration-platform/internal/repositories"
)

// RegistrationServiceInterface defines the interface for the
// registration engine as consumed by handlers
type RegistrationServiceInterface interface {
	Create(req *models.RegistrationCreateRequest, caller *models.Identity) (*CreateResult, error)
	Cancel(registrationID int, caller *models.Identity) (*models.Registration, error)
	UpdateStatus(registrationID int, newStatus models.RegistrationStatus, caller *models.Identity) (*models.Registration, error)
	ConfirmPayment(registrationID int, paymentReference string) (*models.Registration, error)
	GetByID(registrationID int, caller *models.Identity) (*models.Registration, error)
	List(filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error)
	ListForEvent(eventID int, filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error)
	ListAll(filters repositories.RegistrationSearchFilters, caller *models.Identity) ([]*models.Registration, int, error)
}
