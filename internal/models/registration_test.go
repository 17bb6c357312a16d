package models

import (
	"testing"
)

func validCreateRequest() RegistrationCreateRequest {
	return RegistrationCreateRequest{
		EventID: 1,
		Tickets: []TicketSelection{
			{TicketID: 101, Quantity: 1},
			{TicketID: 102, Quantity: 1},
		},
		Attendees: []AttendeeInput{
			{Email: "alice@example.com", Name: "Alice Doe", IsPrimary: true},
			{Email: "bob@example.com", Name: "Bob Doe"},
		},
	}
}

func TestRegistrationCreateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegistrationCreateRequest)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			mutate:  func(req *RegistrationCreateRequest) {},
			wantErr: false,
		},
		{
			name:    "missing event id",
			mutate:  func(req *RegistrationCreateRequest) { req.EventID = 0 },
			wantErr: true,
			errMsg:  "event id is required",
		},
		{
			name:    "no attendees",
			mutate:  func(req *RegistrationCreateRequest) { req.Attendees = nil },
			wantErr: true,
			errMsg:  "at least one attendee is required",
		},
		{
			name:    "zero quantity",
			mutate:  func(req *RegistrationCreateRequest) { req.Tickets[0].Quantity = 0 },
			wantErr: true,
			errMsg:  "ticket quantity must be positive",
		},
		{
			name:    "negative quantity",
			mutate:  func(req *RegistrationCreateRequest) { req.Tickets[1].Quantity = -2 },
			wantErr: true,
			errMsg:  "ticket quantity must be positive",
		},
		{
			name:    "duplicate ticket selection",
			mutate:  func(req *RegistrationCreateRequest) { req.Tickets[1].TicketID = req.Tickets[0].TicketID },
			wantErr: true,
			errMsg:  "duplicate ticket selection",
		},
		{
			name:    "blank attendee name",
			mutate:  func(req *RegistrationCreateRequest) { req.Attendees[1].Name = "   " },
			wantErr: true,
			errMsg:  "attendee name is required",
		},
		{
			name:    "invalid attendee email",
			mutate:  func(req *RegistrationCreateRequest) { req.Attendees[0].Email = "not-an-email" },
			wantErr: true,
			errMsg:  "attendee email format is invalid",
		},
		{
			name:    "no primary attendee",
			mutate:  func(req *RegistrationCreateRequest) { req.Attendees[0].IsPrimary = false },
			wantErr: true,
			errMsg:  "exactly one attendee must be marked as primary",
		},
		{
			name:    "two primary attendees",
			mutate:  func(req *RegistrationCreateRequest) { req.Attendees[1].IsPrimary = true },
			wantErr: true,
			errMsg:  "exactly one attendee must be marked as primary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)

			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err.Error() != tt.errMsg {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestRegistrationCreateRequest_TotalQuantity(t *testing.T) {
	req := validCreateRequest()
	if got := req.TotalQuantity(); got != 2 {
		t.Errorf("TotalQuantity() = %d, want 2", got)
	}

	req.Tickets = nil
	if got := req.TotalQuantity(); got != 0 {
		t.Errorf("TotalQuantity() = %d, want 0", got)
	}
}

func TestRegistrationCreateRequest_Primary(t *testing.T) {
	req := validCreateRequest()
	primary, err := req.Primary()
	if err != nil {
		t.Fatalf("Primary() error = %v", err)
	}
	if primary.Email != "alice@example.com" {
		t.Errorf("Primary() = %s, want alice@example.com", primary.Email)
	}

	req.Attendees[0].IsPrimary = false
	if _, err := req.Primary(); err == nil {
		t.Error("Primary() expected error when no attendee is primary")
	}
}

func TestRegistration_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		current RegistrationStatus
		target  RegistrationStatus
		want    bool
	}{
		{"pending to confirmed", RegistrationPending, RegistrationConfirmed, true},
		{"pending to cancelled", RegistrationPending, RegistrationCancelled, true},
		{"confirmed to cancelled", RegistrationConfirmed, RegistrationCancelled, true},
		{"confirmed to confirmed", RegistrationConfirmed, RegistrationConfirmed, false},
		{"cancelled to cancelled is idempotent", RegistrationCancelled, RegistrationCancelled, true},
		{"cancelled to confirmed", RegistrationCancelled, RegistrationConfirmed, false},
		{"cancelled to pending", RegistrationCancelled, RegistrationPending, false},
		{"confirmed to pending", RegistrationConfirmed, RegistrationPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Registration{Status: tt.current}
			if got := reg.CanTransitionTo(tt.target); got != tt.want {
				t.Errorf("CanTransitionTo(%s) from %s = %v, want %v", tt.target, tt.current, got, tt.want)
			}
		})
	}
}

func TestRegistration_PrimaryAttendee(t *testing.T) {
	reg := Registration{
		Attendees: []*Attendee{
			{ID: 1, IsPrimary: false},
			{ID: 2, IsPrimary: true},
		},
	}
	primary := reg.PrimaryAttendee()
	if primary == nil || primary.ID != 2 {
		t.Errorf("PrimaryAttendee() = %v, want attendee 2", primary)
	}

	reg.Attendees = nil
	if reg.PrimaryAttendee() != nil {
		t.Error("PrimaryAttendee() expected nil for no attendees")
	}
}
