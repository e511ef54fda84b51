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

func (db *DB) CreatePackage(ctx context.Context, pkg *models.Package) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	now := time.Now()
	query := `INSERT INTO packages (id, name, quad_price, triple_price, double_price, single_price, is_active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		pkg.ID, pkg.Name,
		pkg.Prices.Quad, pkg.Prices.Triple, pkg.Prices.Double, pkg.Prices.Single,
		pkg.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create package: %w", err)
	}
	pkg.CreatedAt = now
	pkg.UpdatedAt = now
	return nil
}

func (db *DB) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	query := `SELECT id, name, quad_price, triple_price, double_price, single_price, is_active, created_at, updated_at
              FROM packages WHERE id = ?`
	var p models.Package
	err := db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name,
		&p.Prices.Quad, &p.Prices.Triple, &p.Prices.Double, &p.Prices.Single,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &p, nil
}

func (db *DB) CreateDeparture(ctx context.Context, dep *models.Departure) error {
	if dep.ID == "" {
		dep.ID = uuid.NewString()
	}
	now := time.Now()
	query := `INSERT INTO departures (id, package_id, departure_date, return_date, quota, booked_count, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		dep.ID, dep.PackageID, dep.DepartureDate, dep.ReturnDate, dep.Quota, dep.BookedCount, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create departure: %w", err)
	}
	dep.CreatedAt = now
	dep.UpdatedAt = now
	return nil
}

func (db *DB) GetDeparture(ctx context.Context, id string) (*models.Departure, error) {
	query := `SELECT id, package_id, departure_date, return_date, quota, booked_count, created_at, updated_at
              FROM departures WHERE id = ?`
	var d models.Departure
	err := db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.PackageID, &d.DepartureDate, &d.ReturnDate, &d.Quota, &d.BookedCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get departure: %w", err)
	}
	return &d, nil
}

// GetPackagePrices resolves the room-type price table for a departure via its
// package in a single query.
func (db *DB) GetPackagePrices(ctx context.Context, departureID string) (models.RoomPrices, error) {
	query := `SELECT p.quad_price, p.triple_price, p.double_price, p.single_price
              FROM departures d JOIN packages p ON p.id = d.package_id
              WHERE d.id = ?`
	var prices models.RoomPrices
	err := db.QueryRowContext(ctx, query, departureID).Scan(
		&prices.Quad, &prices.Triple, &prices.Double, &prices.Single,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoomPrices{}, ErrNotFound
	}
	if err != nil {
		return models.RoomPrices{}, fmt.Errorf("failed to get package prices: %w", err)
	}
	return prices, nil
}

func (db *DB) ListUpcomingDepartures(ctx context.Context, from time.Time) ([]*models.Departure, error) {
	query := `SELECT id, package_id, departure_date, return_date, quota, booked_count, created_at, updated_at
              FROM departures WHERE departure_date >= ? ORDER BY departure_date ASC`
	rows, err := db.QueryContext(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list departures: %w", err)
	}
	defer rows.Close()

	var departures []*models.Departure
	for rows.Next() {
		d := &models.Departure{}
		err := rows.Scan(&d.ID, &d.PackageID, &d.DepartureDate, &d.ReturnDate, &d.Quota, &d.BookedCount, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan departure: %w", err)
		}
		departures = append(departures, d)
	}
	return departures, rows.Err()
}

// incrementBookedCount reserves n seats with a conditional atomic update.
// Zero rows affected means the quota cannot hold n more passengers.
func incrementBookedCount(ctx context.Context, ex executor, departureID string, n int) error {
	query := `UPDATE departures
              SET booked_count = booked_count + ?, updated_at = ?
              WHERE id = ? AND booked_count + ? <= quota`
	result, err := ex.ExecContext(ctx, query, n, time.Now(), departureID, n)
	if err != nil {
		return fmt.Errorf("failed to increment booked count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

func (db *DB) IncrementBookedCount(ctx context.Context, departureID string, n int) error {
	return incrementBookedCount(ctx, db.DB, departureID, n)
}

// releaseSeats gives back n seats after a cancellation, clamped at zero.
func releaseSeats(ctx context.Context, ex executor, departureID string, n int) error {
	query := `UPDATE departures
              SET booked_count = MAX(booked_count - ?, 0), updated_at = ?
              WHERE id = ?`
	_, err := ex.ExecContext(ctx, query, n, time.Now(), departureID)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	return nil
}

func (db *DB) ReleaseSeats(ctx context.Context, departureID string, n int) error {
	return releaseSeats(ctx, db.DB, departureID, n)
}
