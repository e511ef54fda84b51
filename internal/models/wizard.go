package models

import "time"

// WizardDraft is the server-side state of an in-progress booking wizard.
// Drafts live only in the state store with a TTL; abandoning one leaves no
// booking side effects.
type WizardDraft struct {
	AccountID   string         `json:"account_id"`
	CurrentStep string         `json:"current_step"`
	DepartureID string         `json:"departure_id,omitempty"`
	Allocation  RoomAllocation `json:"allocation"`
	Passengers  []Passenger    `json:"passengers,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
