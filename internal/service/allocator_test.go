package service

import (
	"testing"

	"umrahdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandAllocationOrderAndTotal(t *testing.T) {
	alloc := models.RoomAllocation{Quad: 2, Triple: 1, Double: 1, Single: 1}

	passengers, err := ExpandAllocation(alloc)
	require.NoError(t, err)
	require.Len(t, passengers, 5)

	expected := []models.RoomType{
		models.RoomQuad, models.RoomQuad,
		models.RoomTriple,
		models.RoomDouble,
		models.RoomSingle,
	}
	for i, p := range passengers {
		assert.Equal(t, expected[i], p.RoomType, "seat %d", i)
		assert.Equal(t, models.PassengerAdult, p.PassengerType)
	}
}

func TestExpandAllocationSkipsZeroCounts(t *testing.T) {
	passengers, err := ExpandAllocation(models.RoomAllocation{Double: 3})
	require.NoError(t, err)
	require.Len(t, passengers, 3)
	for _, p := range passengers {
		assert.Equal(t, models.RoomDouble, p.RoomType)
	}
}

func TestExpandAllocationRejectsEmpty(t *testing.T) {
	_, err := ExpandAllocation(models.RoomAllocation{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExpandAllocationRejectsNegative(t *testing.T) {
	_, err := ExpandAllocation(models.RoomAllocation{Quad: 2, Single: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidatePassengers(t *testing.T) {
	valid := []models.Passenger{
		{FullName: "Ahmad Fauzi", PassengerType: models.PassengerAdult, RoomType: models.RoomQuad},
		{FullName: "Siti Aminah", PassengerType: models.PassengerChild, RoomType: models.RoomQuad},
	}
	assert.NoError(t, ValidatePassengers(valid))

	assert.ErrorIs(t, ValidatePassengers(nil), ErrInvalidInput)

	missingName := []models.Passenger{
		{FullName: "  ", PassengerType: models.PassengerAdult, RoomType: models.RoomQuad},
	}
	assert.ErrorIs(t, ValidatePassengers(missingName), ErrInvalidInput)

	badRoom := []models.Passenger{
		{FullName: "Ahmad Fauzi", PassengerType: models.PassengerAdult, RoomType: "suite"},
	}
	assert.ErrorIs(t, ValidatePassengers(badRoom), ErrInvalidInput)

	badType := []models.Passenger{
		{FullName: "Ahmad Fauzi", PassengerType: "senior", RoomType: models.RoomQuad},
	}
	assert.ErrorIs(t, ValidatePassengers(badType), ErrInvalidInput)
}
