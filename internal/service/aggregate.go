package service

import (
	"fmt"

	"umrahdesk/internal/models"
)

// PricedPassenger pairs a passenger with the price locked in for their room
// type at build time.
type PricedPassenger struct {
	models.Passenger
	Price int64
}

// BookingAggregate is a fully validated, unpersisted booking: the booking
// row values plus one priced entry per passenger. Passenger 0 is the main
// passenger.
type BookingAggregate struct {
	DepartureID  string
	MainRoomType models.RoomType
	TotalPrice   int64
	TotalPax     int
	AdultCount   int
	ChildCount   int
	InfantCount  int
	Notes        string
	Passengers   []PricedPassenger
}

// BuildAggregate validates the passenger list, prices every passenger from
// the resolved snapshot and computes the derived counts.
func BuildAggregate(prices models.RoomPrices, passengers []models.Passenger, departureID, notes string) (*BookingAggregate, error) {
	if departureID == "" {
		return nil, fmt.Errorf("%w: departure id is required", ErrInvalidInput)
	}
	if err := ValidatePassengers(passengers); err != nil {
		return nil, err
	}

	agg := &BookingAggregate{
		DepartureID: departureID,
		TotalPax:    len(passengers),
		Notes:       notes,
		Passengers:  make([]PricedPassenger, 0, len(passengers)),
	}

	roomCounts := make(map[models.RoomType]int, 4)
	for _, p := range passengers {
		price, err := prices.PriceFor(p.RoomType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		agg.TotalPrice += price
		agg.Passengers = append(agg.Passengers, PricedPassenger{Passenger: p, Price: price})
		roomCounts[p.RoomType]++

		switch p.PassengerType {
		case models.PassengerAdult:
			agg.AdultCount++
		case models.PassengerChild:
			agg.ChildCount++
		case models.PassengerInfant:
			agg.InfantCount++
		}
	}

	agg.MainRoomType = mainRoomType(roomCounts)
	return agg, nil
}

// mainRoomType picks the room type with the most passengers. Ties resolve to
// the first room type in priority order (quad > triple > double > single);
// this tie-break is relied on by downstream display code.
func mainRoomType(counts map[models.RoomType]int) models.RoomType {
	best := models.RoomQuad
	bestCount := -1
	for _, room := range models.RoomTypePriority {
		if counts[room] > bestCount {
			best = room
			bestCount = counts[room]
		}
	}
	return best
}
