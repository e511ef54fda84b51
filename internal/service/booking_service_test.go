package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"umrahdesk/internal/database"
	"umrahdesk/internal/events"
	"umrahdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.New(zerolog.NewConsoleWriter())
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedDeparture(t *testing.T, db *database.DB, quota int) *models.Departure {
	t.Helper()
	ctx := context.Background()

	pkg := &models.Package{
		Name:     "Umrah Ramadhan",
		Prices:   testPrices,
		IsActive: true,
	}
	require.NoError(t, db.CreatePackage(ctx, pkg))

	dep := &models.Departure{
		PackageID:     pkg.ID,
		DepartureDate: time.Now().AddDate(0, 2, 0),
		ReturnDate:    time.Now().AddDate(0, 2, 12),
		Quota:         quota,
	}
	require.NoError(t, db.CreateDeparture(ctx, dep))
	return dep
}

func newTestBookingService(db *database.DB) *BookingService {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	return NewBookingService(db, events.NewEventBus(), nil, &logger)
}

func fourPassengers() []models.Passenger {
	return []models.Passenger{
		{FullName: "Ahmad Fauzi", Gender: "M", Phone: "+628111111111"},
		{FullName: "Siti Aminah", Gender: "F"},
		{FullName: "Budi Santoso", Gender: "M"},
		{FullName: "Dewi Lestari", Gender: "F"},
	}
}

func TestSubmitAllocationMode(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)
	ctx := context.Background()

	identity := models.Identity{AccountID: "acc-1", Email: "ahmad@example.com"}
	input := SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Quad: 4},
		Passengers:  fourPassengers(),
	}

	result, err := svc.Submit(ctx, identity, input)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Code, "UMR"))
	assert.Equal(t, int64(60000000), result.TotalPrice)
	assert.Equal(t, 4, result.TotalPax)

	booking, err := db.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, models.RoomQuad, booking.RoomType)
	assert.Equal(t, 4, booking.AdultCount)

	passengers, err := db.GetBookingPassengers(ctx, result.BookingID)
	require.NoError(t, err)
	require.Len(t, passengers, 4)
	assert.True(t, passengers[0].IsMainPassenger)
	assert.Equal(t, "Ahmad Fauzi", passengers[0].FullName)
	for _, p := range passengers {
		assert.Equal(t, models.RoomQuad, p.RoomPreference)
		assert.Equal(t, int64(15000000), p.Price)
	}

	// Main passenger is linked to the account's customer record.
	primary, err := db.GetCustomerByAccountID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, primary.ID, passengers[0].CustomerID)
	assert.Equal(t, "ahmad@example.com", primary.Email)

	updated, err := db.GetDeparture(ctx, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.BookedCount)
}

func TestSubmitDirectModeMixedRooms(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)
	ctx := context.Background()

	input := SubmissionInput{
		DepartureID: dep.ID,
		Passengers: []models.Passenger{
			{FullName: "Ahmad Fauzi", PassengerType: models.PassengerAdult, RoomType: models.RoomQuad},
			{FullName: "Siti Aminah", PassengerType: models.PassengerAdult, RoomType: models.RoomQuad},
			{FullName: "Hasan Kecil", PassengerType: models.PassengerChild, RoomType: models.RoomDouble},
		},
	}

	result, err := svc.Submit(ctx, models.Identity{AccountID: "acc-2"}, input)
	require.NoError(t, err)
	assert.Equal(t, int64(52000000), result.TotalPrice)
	assert.Equal(t, 3, result.TotalPax)

	booking, err := db.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, 2, booking.AdultCount)
	assert.Equal(t, 1, booking.ChildCount)
}

func TestSubmitUnauthenticated(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)

	_, err := svc.Submit(context.Background(), models.Identity{}, SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Quad: 1},
		Passengers:  []models.Passenger{{FullName: "Ahmad Fauzi"}},
	})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSubmitPassengerCountMismatch(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)

	_, err := svc.Submit(context.Background(), models.Identity{AccountID: "acc-3"}, SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Quad: 4},
		Passengers:  fourPassengers()[:2],
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// A quota failure at the final commit step must leave no trace of the
// booking: no booking row, no passenger rows, no customers, no seat change.
func TestSubmitQuotaExceededRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 3)
	svc := newTestBookingService(db)
	ctx := context.Background()

	_, err := svc.Submit(ctx, models.Identity{AccountID: "acc-4"}, SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Quad: 4},
		Passengers:  fourPassengers(),
	})
	require.ErrorIs(t, err, database.ErrQuotaExceeded)

	bookings, err := db.ListBookingsByDeparture(ctx, dep.ID)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	_, err = db.GetCustomerByAccountID(ctx, "acc-4")
	assert.ErrorIs(t, err, database.ErrNotFound, "primary customer insert must roll back")

	updated, err := db.GetDeparture(ctx, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.BookedCount)
}

func TestSubmitReusesExistingCustomer(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)
	ctx := context.Background()

	existing := &models.Customer{AccountID: "acc-5", FullName: "Ahmad Fauzi", Phone: "+628111111111"}
	require.NoError(t, db.CreateCustomer(ctx, existing))

	result, err := svc.Submit(ctx, models.Identity{AccountID: "acc-5"}, SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Double: 1},
		Passengers:  []models.Passenger{{FullName: "Ahmad Fauzi"}},
	})
	require.NoError(t, err)

	booking, err := db.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, booking.CustomerID)
}

func TestConfirmBookingVersionFlow(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)
	ctx := context.Background()

	result, err := svc.Submit(ctx, models.Identity{AccountID: "acc-6"}, SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Quad: 1},
		Passengers:  []models.Passenger{{FullName: "Ahmad Fauzi"}},
	})
	require.NoError(t, err)

	err = svc.ConfirmBooking(ctx, result.BookingID, 99)
	assert.ErrorIs(t, err, database.ErrConcurrentModification)

	require.NoError(t, svc.ConfirmBooking(ctx, result.BookingID, 1))

	booking, err := db.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, booking.Status)
	assert.Equal(t, int64(2), booking.Version)
}

func TestCancelBookingReleasesSeats(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)
	ctx := context.Background()

	result, err := svc.Submit(ctx, models.Identity{AccountID: "acc-7"}, SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Quad: 3},
		Passengers:  fourPassengers()[:3],
	})
	require.NoError(t, err)

	before, err := db.GetDeparture(ctx, dep.ID)
	require.NoError(t, err)
	require.Equal(t, 3, before.BookedCount)

	require.NoError(t, svc.CancelBooking(ctx, result.BookingID, 1))

	booking, err := db.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, booking.Status)

	after, err := db.GetDeparture(ctx, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.BookedCount)
}

// Cancellation is one transaction: a version conflict must leave both the
// booking status and the departure's seat count untouched.
func TestCancelBookingVersionConflictKeepsSeats(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)
	ctx := context.Background()

	result, err := svc.Submit(ctx, models.Identity{AccountID: "acc-9"}, SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Quad: 2},
		Passengers:  fourPassengers()[:2],
	})
	require.NoError(t, err)

	err = svc.CancelBooking(ctx, result.BookingID, 99)
	require.ErrorIs(t, err, database.ErrConcurrentModification)

	booking, err := db.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.Status)

	after, err := db.GetDeparture(ctx, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.BookedCount)
}

func TestRecordPayment(t *testing.T) {
	db := newTestDB(t)
	dep := seedDeparture(t, db, 10)
	svc := newTestBookingService(db)
	ctx := context.Background()

	result, err := svc.Submit(ctx, models.Identity{AccountID: "acc-8"}, SubmissionInput{
		DepartureID: dep.ID,
		Allocation:  &models.RoomAllocation{Double: 1},
		Passengers:  []models.Passenger{{FullName: "Ahmad Fauzi"}},
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, result.BookingID, 0, "transfer", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	payment, err := svc.RecordPayment(ctx, result.BookingID, 10000000, "transfer", "TRX-001")
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ID)

	booking, err := db.GetBooking(ctx, result.BookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000000), booking.PaidAmount)
	assert.Equal(t, int64(12000000), booking.RemainingAmount())
}
