package database

import (
	"context"
	"fmt"

	"umrahdesk/internal/domain"
	"umrahdesk/internal/models"
)

// Tx exposes the write operations the commit orchestrator runs inside one
// transaction. Any error returned from the InTx callback rolls everything
// back, so a mid-sequence failure leaves no partial booking state.
type Tx struct {
	tx executor
}

func (db *DB) InTx(ctx context.Context, fn func(tx domain.TxStore) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func (t *Tx) GetCustomerByAccountID(ctx context.Context, accountID string) (*models.Customer, error) {
	return getCustomerByAccountID(ctx, t.tx, accountID)
}

func (t *Tx) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return createCustomer(ctx, t.tx, customer)
}

func (t *Tx) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return createBooking(ctx, t.tx, booking)
}

func (t *Tx) CreateBookingPassenger(ctx context.Context, bp *models.BookingPassenger) error {
	return createBookingPassenger(ctx, t.tx, bp)
}

func (t *Tx) IncrementBookedCount(ctx context.Context, departureID string, n int) error {
	return incrementBookedCount(ctx, t.tx, departureID, n)
}

func (t *Tx) UpdateBookingStatusWithVersion(ctx context.Context, id string, fromVersion int64, status string) error {
	return updateBookingStatusWithVersion(ctx, t.tx, id, fromVersion, status)
}

func (t *Tx) ReleaseSeats(ctx context.Context, departureID string, n int) error {
	return releaseSeats(ctx, t.tx, departureID, n)
}
