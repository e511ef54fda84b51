package worker

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"umrahdesk/internal/database"
	"umrahdesk/internal/domain"
	"umrahdesk/internal/events"
	"umrahdesk/internal/models"
	"umrahdesk/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendText(ctx context.Context, phone, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

type fakeAlerter struct {
	alerts []string
}

func (f *fakeAlerter) Alert(ctx context.Context, text string) error {
	f.alerts = append(f.alerts, text)
	return nil
}

func newWorkerDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.New(zerolog.NewConsoleWriter())
	db, err := database.NewDB(filepath.Join(t.TempDir(), "worker.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedConfirmedBooking(t *testing.T, db *database.DB) *models.Booking {
	t.Helper()
	ctx := context.Background()

	pkg := &models.Package{Name: "Umrah Plus", Prices: models.RoomPrices{Quad: 15000000}, IsActive: true}
	require.NoError(t, db.CreatePackage(ctx, pkg))

	dep := &models.Departure{
		PackageID:     pkg.ID,
		DepartureDate: time.Now().AddDate(0, 1, 0),
		ReturnDate:    time.Now().AddDate(0, 1, 12),
		Quota:         45,
	}
	require.NoError(t, db.CreateDeparture(ctx, dep))

	customer := &models.Customer{FullName: "Ahmad Fauzi", Phone: "+628111111111"}
	require.NoError(t, db.CreateCustomer(ctx, customer))

	booking := &models.Booking{
		Code:        "UMRWRK1",
		DepartureID: dep.ID,
		CustomerID:  customer.ID,
		RoomType:    models.RoomQuad,
		TotalPrice:  60000000,
		TotalPax:    4,
		Status:      models.StatusConfirmed,
	}
	require.NoError(t, db.InTx(ctx, func(tx domain.TxStore) error {
		return tx.CreateBooking(ctx, booking)
	}))
	return booking
}

func newTestWorker(t *testing.T, db *database.DB, sender *fakeSender, alerter *fakeAlerter, client *redis.Client) *NotifyWorker {
	t.Helper()
	logger := zerolog.New(zerolog.NewConsoleWriter())
	policy := RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}
	// Avoid wrapping a typed nil in the interface arguments: the worker's
	// nil checks compare the interface value, not the concrete pointer.
	var s domain.MessageSender
	if sender != nil {
		s = sender
	}
	var a domain.ManagerAlerter
	if alerter != nil {
		a = alerter
	}
	return NewNotifyWorker(db, s, a, client, policy, &logger)
}

func TestEnqueueTaskPersistsAndPushesToRedis(t *testing.T) {
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	db := newWorkerDB(t)
	w := newTestWorker(t, db, &fakeSender{}, &fakeAlerter{}, client)
	ctx := context.Background()

	require.NoError(t, w.EnqueueTask(ctx, events.EventBookingCreated, "bk-1", map[string]int64{"amount": 100}))

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, events.EventBookingCreated, pending[0].TaskType)

	raw, err := client.RPop(ctx, "notify:queue").Result()
	require.NoError(t, err)
	var task models.NotifyTask
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	assert.Equal(t, "bk-1", task.BookingID)
}

func TestEnqueueTaskValidation(t *testing.T) {
	db := newWorkerDB(t)
	w := newTestWorker(t, db, &fakeSender{}, &fakeAlerter{}, nil)
	ctx := context.Background()

	assert.Error(t, w.EnqueueTask(ctx, "", "bk-1", nil))
	assert.Error(t, w.EnqueueTask(ctx, events.EventBookingCreated, "", nil))
}

func TestProcessTaskDeliversConfirmation(t *testing.T) {
	db := newWorkerDB(t)
	booking := seedConfirmedBooking(t, db)
	sender := &fakeSender{}
	alerter := &fakeAlerter{}
	w := newTestWorker(t, db, sender, alerter, nil)
	ctx := context.Background()

	task := &models.NotifyTask{TaskType: events.EventBookingConfirmed, BookingID: booking.ID, Status: "pending"}
	require.NoError(t, db.CreateNotifyTask(ctx, task))

	w.processTask(ctx, task)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], booking.Code)
	assert.Contains(t, sender.sent[0], "Ahmad Fauzi")
	require.Len(t, alerter.alerts, 1)

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// The receipt must carry the amount of the payment that triggered it, not
// a zero or the booking's running total.
func TestProcessTaskDeliversPaymentReceipt(t *testing.T) {
	db := newWorkerDB(t)
	booking := seedConfirmedBooking(t, db)
	sender := &fakeSender{}
	w := newTestWorker(t, db, sender, nil, nil)
	logger := zerolog.New(zerolog.NewConsoleWriter())
	svc := service.NewBookingService(db, nil, w, &logger)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, booking.ID, 10000000, "transfer", "TRX-777")
	require.NoError(t, err)

	pending, err := db.GetPendingNotifyTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, events.EventPaymentReceived, pending[0].TaskType)

	w.processTask(ctx, &pending[0])

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Pembayaran sebesar Rp 10000000")
	assert.Contains(t, sender.sent[0], booking.Code)
}

func TestProcessTaskSchedulesRetryOnFailure(t *testing.T) {
	db := newWorkerDB(t)
	booking := seedConfirmedBooking(t, db)
	sender := &fakeSender{err: errors.New("gateway down")}
	w := newTestWorker(t, db, sender, nil, nil)
	ctx := context.Background()

	task := &models.NotifyTask{TaskType: events.EventBookingConfirmed, BookingID: booking.ID, Status: "pending"}
	require.NoError(t, db.CreateNotifyTask(ctx, task))

	w.processTask(ctx, task)

	// The task is rescheduled, not completed or failed yet.
	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestProcessTaskFailsAfterMaxRetries(t *testing.T) {
	db := newWorkerDB(t)
	booking := seedConfirmedBooking(t, db)
	sender := &fakeSender{err: errors.New("gateway down")}
	w := newTestWorker(t, db, sender, nil, nil)
	ctx := context.Background()

	task := &models.NotifyTask{TaskType: events.EventBookingConfirmed, BookingID: booking.ID, Status: "retry", RetryCount: 2}
	require.NoError(t, db.CreateNotifyTask(ctx, task))

	w.processTask(ctx, task)

	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].LastError, "gateway down")
}

func TestProcessTaskUnknownType(t *testing.T) {
	db := newWorkerDB(t)
	booking := seedConfirmedBooking(t, db)
	w := newTestWorker(t, db, &fakeSender{}, nil, nil)
	ctx := context.Background()

	task := &models.NotifyTask{TaskType: "mystery", BookingID: booking.ID, Status: "retry", RetryCount: 2}
	require.NoError(t, db.CreateNotifyTask(ctx, task))

	w.processTask(ctx, task)

	failed, err := db.GetFailedNotifyTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
}
