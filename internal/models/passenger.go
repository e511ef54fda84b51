package models

// PassengerType classifies a pilgrim for pricing/count purposes.
type PassengerType string

const (
	PassengerAdult  PassengerType = "adult"
	PassengerChild  PassengerType = "child"
	PassengerInfant PassengerType = "infant"
)

func (p PassengerType) Valid() bool {
	switch p {
	case PassengerAdult, PassengerChild, PassengerInfant:
		return true
	}
	return false
}

// Passenger is one pilgrim in a booking attempt. Passenger 0 is the main
// passenger and is linked to the authenticated account; the rest become
// minimal customer records without account linkage.
type Passenger struct {
	FullName      string        `json:"full_name"`
	Gender        string        `json:"gender"`
	Phone         string        `json:"phone"`
	PassengerType PassengerType `json:"passenger_type"`
	RoomType      RoomType      `json:"room_type"`
}
