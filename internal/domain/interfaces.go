package domain

import (
	"context"
	"time"

	"umrahdesk/internal/models"
)

// TxStore is the write surface available to the commit orchestrator inside a
// single transaction. Every operation either all commits or all rolls back.
type TxStore interface {
	GetCustomerByAccountID(ctx context.Context, accountID string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CreateBookingPassenger(ctx context.Context, bp *models.BookingPassenger) error
	IncrementBookedCount(ctx context.Context, departureID string, n int) error
	UpdateBookingStatusWithVersion(ctx context.Context, id string, version int64, status string) error
	ReleaseSeats(ctx context.Context, departureID string, n int) error
}

// Repository is the persistence surface the services depend on, implemented
// by database.DB.
type Repository interface {
	GetDeparture(ctx context.Context, id string) (*models.Departure, error)
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	GetPackagePrices(ctx context.Context, departureID string) (models.RoomPrices, error)
	ListUpcomingDepartures(ctx context.Context, from time.Time) ([]*models.Departure, error)
	CreatePackage(ctx context.Context, pkg *models.Package) error
	CreateDeparture(ctx context.Context, dep *models.Departure) error

	GetCustomerByAccountID(ctx context.Context, accountID string) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (*models.Booking, error)
	GetBookingPassengers(ctx context.Context, bookingID string) ([]*models.BookingPassenger, error)
	ListBookingsByDeparture(ctx context.Context, departureID string) ([]*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id string, version int64, status string) error
	RecordPayment(ctx context.Context, payment *models.Payment) error
	ReleaseSeats(ctx context.Context, departureID string, n int) error
	IncrementBookedCount(ctx context.Context, departureID string, n int) error

	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

// StateRepository stores in-progress wizard drafts keyed by account.
type StateRepository interface {
	GetDraft(ctx context.Context, accountID string) (*models.WizardDraft, error)
	SetDraft(ctx context.Context, draft *models.WizardDraft) error
	ClearDraft(ctx context.Context, accountID string) error
	CheckRateLimit(ctx context.Context, accountID string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// MessageSender delivers one templated text message to a phone number.
// Failures are logged and never affect the booking that triggered them.
type MessageSender interface {
	SendText(ctx context.Context, phone, text string) error
}

// ManagerAlerter pushes back-office alerts (new booking, payment received)
// to the operations channel.
type ManagerAlerter interface {
	Alert(ctx context.Context, text string) error
}

// NotifyEnqueuer schedules outbound notification tasks for async delivery.
type NotifyEnqueuer interface {
	EnqueueTask(ctx context.Context, taskType, bookingID string, payload interface{}) error
}
