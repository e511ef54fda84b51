package models

import "time"

// Package is a sellable travel product with per-room-type pricing.
type Package struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Prices    RoomPrices `json:"prices"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Departure is one scheduled instance of a package. BookedCount is the only
// aggregate mutated by concurrent bookings; booked_count <= quota must hold
// after every successful commit.
type Departure struct {
	ID            string    `json:"id"`
	PackageID     string    `json:"package_id"`
	DepartureDate time.Time `json:"departure_date"`
	ReturnDate    time.Time `json:"return_date"`
	Quota         int       `json:"quota"`
	BookedCount   int       `json:"booked_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SeatsLeft returns remaining capacity, never negative.
func (d *Departure) SeatsLeft() int {
	left := d.Quota - d.BookedCount
	if left < 0 {
		return 0
	}
	return left
}
