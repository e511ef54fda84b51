package service

import (
	"context"
	"errors"
	"fmt"

	"umrahdesk/internal/database"
	"umrahdesk/internal/domain"
	"umrahdesk/internal/events"
	"umrahdesk/internal/models"

	"github.com/rs/zerolog"
)

// maxCodeAttempts bounds booking-code regeneration on unique-index
// collisions.
const maxCodeAttempts = 3

// SubmissionInput is one booking attempt. Allocation mode: Allocation is
// set and passenger identities are matched to the expanded seats in fixed
// room order. Direct mode: Allocation is nil and every passenger carries an
// explicit room type.
type SubmissionInput struct {
	DepartureID string                 `json:"departure_id"`
	Allocation  *models.RoomAllocation `json:"allocation,omitempty"`
	Passengers  []models.Passenger     `json:"passengers"`
	Notes       string                 `json:"notes,omitempty"`
}

type SubmissionResult struct {
	BookingID  string `json:"booking_id"`
	Code       string `json:"code"`
	TotalPrice int64  `json:"total_price"`
	TotalPax   int    `json:"total_pax"`
}

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	notifier domain.NotifyEnqueuer
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, notifier domain.NotifyEnqueuer, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		notifier: notifier,
		logger:   logger,
	}
}

// Submit runs the whole booking workflow: resolve prices, assemble the
// aggregate, then commit customer, booking, passenger and seat-count writes
// in a single transaction. On any failure nothing is persisted.
func (s *BookingService) Submit(ctx context.Context, identity models.Identity, input SubmissionInput) (*SubmissionResult, error) {
	if identity.AccountID == "" {
		return nil, ErrUnauthenticated
	}

	passengers, err := s.assemblePassengers(input)
	if err != nil {
		return nil, err
	}

	// Prices are read once and reused for every passenger in this attempt.
	prices, err := NewPricingResolver(s.repo).Resolve(ctx, input.DepartureID)
	if err != nil {
		return nil, fmt.Errorf("resolve pricing: %w", err)
	}

	agg, err := BuildAggregate(prices, passengers, input.DepartureID, input.Notes)
	if err != nil {
		return nil, err
	}

	result, err := s.commit(ctx, identity, agg)
	if err != nil {
		return nil, err
	}

	s.publishBookingEvent(events.EventBookingCreated, result.BookingID, result.Code, agg)
	s.enqueueNotify(ctx, events.EventBookingCreated, result.BookingID, nil)

	return result, nil
}

// assemblePassengers normalizes the two input modes into one passenger list.
func (s *BookingService) assemblePassengers(input SubmissionInput) ([]models.Passenger, error) {
	if input.Allocation == nil {
		return input.Passengers, nil
	}

	slots, err := ExpandAllocation(*input.Allocation)
	if err != nil {
		return nil, err
	}
	if len(input.Passengers) != len(slots) {
		return nil, fmt.Errorf("%w: allocation expects %d passengers, got %d",
			ErrInvalidInput, len(slots), len(input.Passengers))
	}

	// Identities in caller order take the room types of the expanded seats.
	for i := range slots {
		p := input.Passengers[i]
		p.RoomType = slots[i].RoomType
		if p.PassengerType == "" {
			p.PassengerType = slots[i].PassengerType
		}
		slots[i] = p
	}
	return slots, nil
}

// commit is the transactional write sequence. Step order matters: later
// steps reference IDs produced by earlier ones.
func (s *BookingService) commit(ctx context.Context, identity models.Identity, agg *BookingAggregate) (*SubmissionResult, error) {
	var result SubmissionResult

	err := s.repo.InTx(ctx, func(tx domain.TxStore) error {
		// 1. Resolve or create the primary customer for this account.
		primary, err := tx.GetCustomerByAccountID(ctx, identity.AccountID)
		if errors.Is(err, database.ErrNotFound) {
			main := agg.Passengers[0]
			primary = &models.Customer{
				AccountID: identity.AccountID,
				FullName:  main.FullName,
				Gender:    main.Gender,
				Phone:     main.Phone,
				Email:     identity.Email,
			}
			if err := tx.CreateCustomer(ctx, primary); err != nil {
				return fmt.Errorf("create primary customer: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("resolve primary customer: %w", err)
		}

		// 2. Insert the booking row, regenerating the code on collision.
		booking := &models.Booking{
			DepartureID: agg.DepartureID,
			CustomerID:  primary.ID,
			RoomType:    agg.MainRoomType,
			TotalPrice:  agg.TotalPrice,
			TotalPax:    agg.TotalPax,
			AdultCount:  agg.AdultCount,
			ChildCount:  agg.ChildCount,
			InfantCount: agg.InfantCount,
			Status:      models.StatusPending,
			Notes:       agg.Notes,
		}
		if err := s.insertBookingWithCode(ctx, tx, booking); err != nil {
			return err
		}

		// 3+4. Passenger customers and join rows, main passenger first.
		for i, p := range agg.Passengers {
			customerID := primary.ID
			if i > 0 {
				passengerCustomer := &models.Customer{
					FullName: p.FullName,
					Gender:   p.Gender,
					Phone:    p.Phone,
				}
				if err := tx.CreateCustomer(ctx, passengerCustomer); err != nil {
					return fmt.Errorf("create passenger customer %d: %w", i, err)
				}
				customerID = passengerCustomer.ID
			}

			bp := &models.BookingPassenger{
				BookingID:       booking.ID,
				CustomerID:      customerID,
				IsMainPassenger: i == 0,
				PassengerType:   p.PassengerType,
				RoomPreference:  p.RoomType,
				Price:           p.Price,
				FullName:        p.FullName,
			}
			if err := tx.CreateBookingPassenger(ctx, bp); err != nil {
				return fmt.Errorf("create booking passenger %d: %w", i, err)
			}
		}

		// 5. Conditional atomic seat reservation; rolls everything back
		// when the departure cannot hold the group.
		if err := tx.IncrementBookedCount(ctx, agg.DepartureID, agg.TotalPax); err != nil {
			return fmt.Errorf("reserve seats: %w", err)
		}

		result = SubmissionResult{
			BookingID:  booking.ID,
			Code:       booking.Code,
			TotalPrice: booking.TotalPrice,
			TotalPax:   booking.TotalPax,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *BookingService) insertBookingWithCode(ctx context.Context, tx domain.TxStore, booking *models.Booking) error {
	booking.Code = GenerateBookingCode()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		err := tx.CreateBooking(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, database.ErrDuplicateCode) {
			return fmt.Errorf("create booking: %w", err)
		}
		booking.ID = ""
		booking.Code = generateRetryCode()
	}
	return ErrCodeCollision
}

// ConfirmBooking moves a pending booking to confirmed with an optimistic
// version check and triggers the confirmation notification.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string, version int64) error {
	if err := s.repo.UpdateBookingStatusWithVersion(ctx, bookingID, version, models.StatusConfirmed); err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err == nil {
		s.publishStatusEvent(events.EventBookingConfirmed, booking)
		s.enqueueNotify(ctx, events.EventBookingConfirmed, booking.ID, nil)
	}
	return nil
}

// CancelBooking cancels a booking and releases its seats back to the
// departure. The status change and the seat release commit together.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, version int64) error {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	err = s.repo.InTx(ctx, func(tx domain.TxStore) error {
		if err := tx.UpdateBookingStatusWithVersion(ctx, bookingID, version, models.StatusCancelled); err != nil {
			return err
		}
		return tx.ReleaseSeats(ctx, booking.DepartureID, booking.TotalPax)
	})
	if err != nil {
		return err
	}

	booking.Status = models.StatusCancelled
	s.publishStatusEvent(events.EventBookingCancelled, booking)
	return nil
}

// RecordPayment registers a payment against a booking and triggers the
// payment-received notification.
func (s *BookingService) RecordPayment(ctx context.Context, bookingID string, amount int64, method, reference string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}

	payment := &models.Payment{
		BookingID: bookingID,
		Amount:    amount,
		Method:    method,
		Reference: reference,
	}
	if err := s.repo.RecordPayment(ctx, payment); err != nil {
		return nil, err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err == nil {
		s.publishStatusEvent(events.EventPaymentReceived, booking)
		s.enqueueNotify(ctx, events.EventPaymentReceived, booking.ID, events.PaymentEventPayload{Amount: amount})
	}
	return payment, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingPassengers(ctx context.Context, bookingID string) ([]*models.BookingPassenger, error) {
	return s.repo.GetBookingPassengers(ctx, bookingID)
}

func (s *BookingService) publishBookingEvent(eventType, bookingID, code string, agg *BookingAggregate) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   bookingID,
		Code:        code,
		DepartureID: agg.DepartureID,
		TotalPrice:  agg.TotalPrice,
		TotalPax:    agg.TotalPax,
		Status:      models.StatusPending,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", bookingID).Msg("publish event error")
	}
}

func (s *BookingService) publishStatusEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		Code:        booking.Code,
		DepartureID: booking.DepartureID,
		TotalPrice:  booking.TotalPrice,
		PaidAmount:  booking.PaidAmount,
		TotalPax:    booking.TotalPax,
		Status:      booking.Status,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

// enqueueNotify schedules the outbound notification. Fire-and-forget:
// failures are logged, never propagated to the booking result.
func (s *BookingService) enqueueNotify(ctx context.Context, taskType, bookingID string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.EnqueueTask(ctx, taskType, bookingID, payload); err != nil {
		s.logger.Error().Err(err).Str("booking_id", bookingID).Str("task", taskType).Msg("notify enqueue error")
	}
}
