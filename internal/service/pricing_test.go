package service

import (
	"context"
	"testing"
	"time"

	"umrahdesk/internal/domain"
	"umrahdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetDeparture(ctx context.Context, id string) (*models.Departure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Departure), args.Error(1)
}
func (m *mockRepo) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Package), args.Error(1)
}
func (m *mockRepo) GetPackagePrices(ctx context.Context, departureID string) (models.RoomPrices, error) {
	args := m.Called(ctx, departureID)
	return args.Get(0).(models.RoomPrices), args.Error(1)
}
func (m *mockRepo) ListUpcomingDepartures(ctx context.Context, from time.Time) ([]*models.Departure, error) {
	args := m.Called(ctx, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Departure), args.Error(1)
}
func (m *mockRepo) CreatePackage(ctx context.Context, pkg *models.Package) error {
	return m.Called(ctx, pkg).Error(0)
}
func (m *mockRepo) CreateDeparture(ctx context.Context, dep *models.Departure) error {
	return m.Called(ctx, dep).Error(0)
}
func (m *mockRepo) GetCustomerByAccountID(ctx context.Context, accountID string) (*models.Customer, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}
func (m *mockRepo) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}
func (m *mockRepo) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}
func (m *mockRepo) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingByCode(ctx context.Context, code string) (*models.Booking, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingPassengers(ctx context.Context, bookingID string) ([]*models.BookingPassenger, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingPassenger), args.Error(1)
}
func (m *mockRepo) ListBookingsByDeparture(ctx context.Context, departureID string) ([]*models.Booking, error) {
	args := m.Called(ctx, departureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) UpdateBookingStatusWithVersion(ctx context.Context, id string, version int64, status string) error {
	return m.Called(ctx, id, version, status).Error(0)
}
func (m *mockRepo) RecordPayment(ctx context.Context, payment *models.Payment) error {
	return m.Called(ctx, payment).Error(0)
}
func (m *mockRepo) ReleaseSeats(ctx context.Context, departureID string, n int) error {
	return m.Called(ctx, departureID, n).Error(0)
}
func (m *mockRepo) IncrementBookedCount(ctx context.Context, departureID string, n int) error {
	return m.Called(ctx, departureID, n).Error(0)
}
func (m *mockRepo) InTx(ctx context.Context, fn func(tx domain.TxStore) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func TestPricingResolverCachesPerAttempt(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetPackagePrices", mock.Anything, "dep-1").Return(testPrices, nil).Once()

	resolver := NewPricingResolver(repo)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "dep-1")
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, "dep-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "GetPackagePrices", 1)
}

func TestPricingResolverPropagatesError(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetPackagePrices", mock.Anything, "missing").
		Return(models.RoomPrices{}, assert.AnError)

	resolver := NewPricingResolver(repo)
	_, err := resolver.Resolve(context.Background(), "missing")
	assert.Error(t, err)
}
