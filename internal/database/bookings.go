package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"umrahdesk/internal/models"

	"github.com/google/uuid"
)

func createBooking(ctx context.Context, ex executor, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now()
	query := `INSERT INTO bookings (
				id, code, departure_id, customer_id, room_type,
				total_price, paid_amount, total_pax, adult_count, child_count, infant_count,
				status, notes, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := ex.ExecContext(ctx, query,
		booking.ID,
		booking.Code,
		booking.DepartureID,
		booking.CustomerID,
		string(booking.RoomType),
		booking.TotalPrice,
		booking.PaidAmount,
		booking.TotalPax,
		booking.AdultCount,
		booking.ChildCount,
		booking.InfantCount,
		booking.Status,
		booking.Notes,
		now,
		now,
		1,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func createBookingPassenger(ctx context.Context, ex executor, bp *models.BookingPassenger) error {
	if bp.ID == "" {
		bp.ID = uuid.NewString()
	}
	now := time.Now()
	query := `INSERT INTO booking_passengers (
				id, booking_id, customer_id, is_main_passenger,
				passenger_type, room_preference, price, full_name, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := ex.ExecContext(ctx, query,
		bp.ID,
		bp.BookingID,
		bp.CustomerID,
		bp.IsMainPassenger,
		string(bp.PassengerType),
		string(bp.RoomPreference),
		bp.Price,
		bp.FullName,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking passenger: %w", err)
	}
	bp.CreatedAt = now
	return nil
}

const bookingColumns = `id, code, departure_id, customer_id, room_type,
                 total_price, paid_amount, total_pax, adult_count, child_count, infant_count,
                 status, COALESCE(notes, ''), created_at, updated_at, version`

func scanBooking(row *sql.Row) (*models.Booking, error) {
	var b models.Booking
	var roomType string
	err := row.Scan(
		&b.ID, &b.Code, &b.DepartureID, &b.CustomerID, &roomType,
		&b.TotalPrice, &b.PaidAmount, &b.TotalPax, &b.AdultCount, &b.ChildCount, &b.InfantCount,
		&b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	b.RoomType = models.RoomType(roomType)
	return &b, nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetBookingByCode(ctx context.Context, code string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE code = ?`
	return scanBooking(db.QueryRowContext(ctx, query, code))
}

func (db *DB) GetBookingPassengers(ctx context.Context, bookingID string) ([]*models.BookingPassenger, error) {
	query := `SELECT id, booking_id, customer_id, is_main_passenger,
                     passenger_type, room_preference, price, full_name, created_at
              FROM booking_passengers WHERE booking_id = ?
              ORDER BY is_main_passenger DESC, created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking passengers: %w", err)
	}
	defer rows.Close()

	var passengers []*models.BookingPassenger
	for rows.Next() {
		bp := &models.BookingPassenger{}
		var passengerType, roomPreference string
		err := rows.Scan(
			&bp.ID, &bp.BookingID, &bp.CustomerID, &bp.IsMainPassenger,
			&passengerType, &roomPreference, &bp.Price, &bp.FullName, &bp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking passenger: %w", err)
		}
		bp.PassengerType = models.PassengerType(passengerType)
		bp.RoomPreference = models.RoomType(roomPreference)
		passengers = append(passengers, bp)
	}
	return passengers, rows.Err()
}

func (db *DB) ListBookingsByDeparture(ctx context.Context, departureID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE departure_id = ? ORDER BY created_at ASC`
	rows, err := db.QueryContext(ctx, query, departureID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by departure: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		var roomType string
		err := rows.Scan(
			&b.ID, &b.Code, &b.DepartureID, &b.CustomerID, &roomType,
			&b.TotalPrice, &b.PaidAmount, &b.TotalPax, &b.AdultCount, &b.ChildCount, &b.InfantCount,
			&b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt, &b.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.RoomType = models.RoomType(roomType)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func updateBookingStatusWithVersion(ctx context.Context, ex executor, id string, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := ex.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id string, fromVersion int64, status string) error {
	return updateBookingStatusWithVersion(ctx, db.DB, id, fromVersion, status)
}

// RecordPayment inserts a payment row and bumps the booking's paid amount in
// one transaction.
func (db *DB) RecordPayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (id, booking_id, amount, method, reference, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.BookingID, payment.Amount, payment.Method, payment.Reference, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET paid_amount = paid_amount + ?, updated_at = ? WHERE id = ?`,
		payment.Amount, now, payment.BookingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update paid amount: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	payment.CreatedAt = now
	return tx.Commit()
}
