package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"umrahdesk/internal/database"
	"umrahdesk/internal/domain"
	"umrahdesk/internal/events"
	"umrahdesk/internal/metrics"
	"umrahdesk/internal/models"
	"umrahdesk/internal/notify"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotifyWorker delivers booking notifications out of the transactional path.
// Tasks are persisted to the notify_queue table first, then scheduled via a
// redis list (or the in-memory channel when redis is down) and retried with
// exponential backoff. A booking never fails because a message did.
type NotifyWorker struct {
	db            *database.DB
	sender        domain.MessageSender
	alerter       domain.ManagerAlerter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.NotifyTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

func NewNotifyWorker(db *database.DB, sender domain.MessageSender, alerter domain.ManagerAlerter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *NotifyWorker {
	return &NotifyWorker{
		db:            db,
		sender:        sender,
		alerter:       alerter,
		redis:         redisClient,
		retryPolicy:   retry.withDefaults(),
		queue:         make(chan models.NotifyTask, 128),
		redisQueueKey: "notify:queue",
		deadLetterKey: "notify:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueTask persists the task to the queue table and schedules it via
// redis or the in-memory channel.
func (w *NotifyWorker) EnqueueTask(ctx context.Context, taskType, bookingID string, payload interface{}) error {
	if taskType == "" {
		return errors.New("task type is required")
	}
	if bookingID == "" {
		return errors.New("booking id is required")
	}

	var payloadStr string
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		payloadStr = string(raw)
	}

	task := models.NotifyTask{
		TaskType:  taskType,
		BookingID: bookingID,
		Payload:   payloadStr,
		Status:    "pending",
		CreatedAt: time.Now(),
	}

	if err := w.db.CreateNotifyTask(ctx, &task); err != nil {
		return fmt.Errorf("persist notify task: %w", err)
	}

	// Redis first for durability across restarts.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("notify_worker: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("notify_worker: in-memory queue full, task left to polling")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("notify_worker: started")
	defer w.logger.Info().Msg("notify_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingNotifyTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("notify_worker: fetch pending")
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *NotifyWorker) tryLocalQueue() (models.NotifyTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.NotifyTask{}, false
	}
}

func (w *NotifyWorker) tryRedis(ctx context.Context) (models.NotifyTask, bool) {
	if w.redis == nil {
		return models.NotifyTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.NotifyTask{}, false
		}
		w.logger.Error().Err(err).Msg("notify_worker: redis BRPOP error")
		return models.NotifyTask{}, false
	}
	if len(res) != 2 {
		return models.NotifyTask{}, false
	}
	var task models.NotifyTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("notify_worker: decode redis task")
		return models.NotifyTask{}, false
	}
	return task, true
}

func (w *NotifyWorker) processTask(ctx context.Context, task *models.NotifyTask) {
	if err := w.deliver(ctx, task); err != nil {
		metrics.IncNotifyFailure(task.TaskType)
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncNotifySent(task.TaskType)
	if err := w.db.UpdateNotifyTaskStatus(ctx, task.ID, "completed", "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: mark completed")
	}
}

// deliver renders and sends the message for a task, resolving the booking,
// its main passenger and departure from the database.
func (w *NotifyWorker) deliver(ctx context.Context, task *models.NotifyTask) error {
	booking, err := w.db.GetBooking(ctx, task.BookingID)
	if err != nil {
		return fmt.Errorf("resolve booking: %w", err)
	}

	customer, err := w.db.GetCustomerByID(ctx, booking.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve customer: %w", err)
	}

	switch task.TaskType {
	case events.EventBookingCreated:
		if w.alerter == nil {
			return nil
		}
		return w.alerter.Alert(ctx, notify.ManagerAlertText(task.TaskType, booking, customer.FullName))

	case events.EventBookingConfirmed:
		departure, err := w.db.GetDeparture(ctx, booking.DepartureID)
		if err != nil {
			return fmt.Errorf("resolve departure: %w", err)
		}
		if w.alerter != nil {
			if err := w.alerter.Alert(ctx, notify.ManagerAlertText(task.TaskType, booking, customer.FullName)); err != nil {
				w.logger.Warn().Err(err).Str("booking_id", booking.ID).Msg("notify_worker: manager alert failed")
			}
		}
		if w.sender == nil {
			return nil
		}
		return w.sender.SendText(ctx, customer.Phone, notify.BookingConfirmedText(customer.FullName, booking, departure))

	case events.EventPaymentReceived:
		var payload events.PaymentEventPayload
		if task.Payload != "" {
			if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
				return fmt.Errorf("decode payload: %w", err)
			}
		}
		if w.sender == nil {
			return nil
		}
		return w.sender.SendText(ctx, customer.Phone, notify.PaymentReceivedText(customer.FullName, booking, payload.Amount))

	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}

func (w *NotifyWorker) retryOrFail(ctx context.Context, task *models.NotifyTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		if err := w.db.UpdateNotifyTaskStatus(ctx, task.ID, "failed", cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: mark failed")
		}
		w.pushDeadLetter(ctx, task)
		return
	}

	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	if err := w.db.UpdateNotifyTaskStatus(ctx, task.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: mark retry")
	}
}

func (w *NotifyWorker) pushRedis(ctx context.Context, task models.NotifyTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *NotifyWorker) pushDeadLetter(ctx context.Context, task *models.NotifyTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("notify_worker: deadletter push")
	}
}
