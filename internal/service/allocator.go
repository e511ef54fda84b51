package service

import (
	"fmt"
	"strings"

	"umrahdesk/internal/models"
)

// ExpandAllocation turns a room-type quota into ordered passenger
// placeholders, one per seat: all quad seats first, then triple, double,
// single. The order is stable so passenger 0 is always the first seat of the
// highest-priority allocated room type.
func ExpandAllocation(alloc models.RoomAllocation) ([]models.Passenger, error) {
	if alloc.Quad < 0 || alloc.Triple < 0 || alloc.Double < 0 || alloc.Single < 0 {
		return nil, fmt.Errorf("%w: negative room count", ErrInvalidInput)
	}
	total := alloc.Total()
	if total < 1 {
		return nil, fmt.Errorf("%w: booking needs at least one passenger", ErrInvalidInput)
	}

	passengers := make([]models.Passenger, 0, total)
	for _, room := range models.RoomTypePriority {
		for i := 0; i < alloc.Count(room); i++ {
			passengers = append(passengers, models.Passenger{
				PassengerType: models.PassengerAdult,
				RoomType:      room,
			})
		}
	}
	return passengers, nil
}

// ValidatePassengers checks a direct-mode passenger list: at least one
// passenger, every name filled in, every room and passenger type known.
func ValidatePassengers(passengers []models.Passenger) error {
	if len(passengers) == 0 {
		return fmt.Errorf("%w: booking needs at least one passenger", ErrInvalidInput)
	}
	for i, p := range passengers {
		if strings.TrimSpace(p.FullName) == "" {
			return fmt.Errorf("%w: passenger %d has no name", ErrInvalidInput, i)
		}
		if !p.RoomType.Valid() {
			return fmt.Errorf("%w: passenger %d has unknown room type %q", ErrInvalidInput, i, p.RoomType)
		}
		if !p.PassengerType.Valid() {
			return fmt.Errorf("%w: passenger %d has unknown passenger type %q", ErrInvalidInput, i, p.PassengerType)
		}
	}
	return nil
}
