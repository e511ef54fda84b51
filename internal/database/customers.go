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

func createCustomer(ctx context.Context, ex executor, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	now := time.Now()

	var accountID interface{}
	if customer.AccountID != "" {
		accountID = customer.AccountID
	}

	query := `INSERT INTO customers (id, account_id, full_name, gender, phone, email, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := ex.ExecContext(ctx, query,
		customer.ID,
		accountID,
		customer.FullName,
		customer.Gender,
		customer.Phone,
		customer.Email,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return nil
}

func getCustomerByAccountID(ctx context.Context, ex executor, accountID string) (*models.Customer, error) {
	query := `SELECT id, COALESCE(account_id, ''), full_name, COALESCE(gender, ''), COALESCE(phone, ''), COALESCE(email, ''), created_at, updated_at
              FROM customers WHERE account_id = ?`
	return queryCustomer(ctx, ex, query, accountID)
}

func queryCustomer(ctx context.Context, ex executor, query string, args ...interface{}) (*models.Customer, error) {
	var c models.Customer
	err := ex.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.AccountID, &c.FullName, &c.Gender, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (db *DB) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return createCustomer(ctx, db.DB, customer)
}

func (db *DB) GetCustomerByAccountID(ctx context.Context, accountID string) (*models.Customer, error) {
	return getCustomerByAccountID(ctx, db.DB, accountID)
}

func (db *DB) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	query := `SELECT id, COALESCE(account_id, ''), full_name, COALESCE(gender, ''), COALESCE(phone, ''), COALESCE(email, ''), created_at, updated_at
              FROM customers WHERE id = ?`
	return queryCustomer(ctx, db.DB, query, id)
}

func (db *DB) UpdateCustomerContact(ctx context.Context, id, phone, email string) error {
	query := `UPDATE customers SET phone = ?, email = ?, updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, phone, email, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update customer contact: %w", err)
	}
	return nil
}
