package models

import "time"

type Booking struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	DepartureID string    `json:"departure_id"`
	CustomerID  string    `json:"customer_id"`
	RoomType    RoomType  `json:"room_type"` // denormalized "main" room type, legacy display field
	TotalPrice  int64     `json:"total_price"`
	PaidAmount  int64     `json:"paid_amount"`
	TotalPax    int       `json:"total_pax"`
	AdultCount  int       `json:"adult_count"`
	ChildCount  int       `json:"child_count"`
	InfantCount int       `json:"infant_count"`
	Status      string    `json:"status"` // pending, confirmed, cancelled, completed
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int64     `json:"version"`
}

// RemainingAmount is the unpaid balance of the booking.
func (b *Booking) RemainingAmount() int64 {
	return b.TotalPrice - b.PaidAmount
}

type BookingPassenger struct {
	ID              string        `json:"id"`
	BookingID       string        `json:"booking_id"`
	CustomerID      string        `json:"customer_id"`
	IsMainPassenger bool          `json:"is_main_passenger"`
	PassengerType   PassengerType `json:"passenger_type"`
	RoomPreference  RoomType      `json:"room_preference"`
	Price           int64         `json:"price"`
	FullName        string        `json:"full_name"`
	CreatedAt       time.Time     `json:"created_at"`
}

type Payment struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}
