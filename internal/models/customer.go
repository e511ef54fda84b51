package models

import "time"

// Customer is a person record. AccountID is set only for customers linked to
// an authenticated account; passenger-only customers leave it empty.
type Customer struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id,omitempty"`
	FullName  string    `json:"full_name"`
	Gender    string    `json:"gender"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
