package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	// BookingCodePrefix prepends every generated booking code.
	BookingCodePrefix = "UMR"

	// DefaultRedisTTL время жизни черновика мастера в Redis (24 часа в секундах)
	DefaultRedisTTL = 24 * 60 * 60

	// WorkerQueueSize размер очереди воркера уведомлений
	WorkerQueueSize = 1000

	// RateLimitMessages количество запросов в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты запросов (1 минута в секундах)
	RateLimitWindow = 60
)

const (
	StepSelectDeparture = "select_departure"
	StepSelectRooms     = "select_rooms"
	StepPassengerData   = "passenger_data"
	StepReview          = "review"
)
