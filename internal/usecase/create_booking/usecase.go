package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/booking"
	facilityRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/facility"
	membershipRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/membership"
	"github.com/m04kA/SMC-ClubBooking/pkg/mq"
	"github.com/m04kA/SMC-ClubBooking/pkg/txmanager"
)

// Исходы допуска для метрики booking_admissions_total
const (
	outcomeCreated             = "created"
	outcomeInvalid             = "invalid"
	outcomeFacilityUnavailable = "facility_unavailable"
	outcomeMembershipRequired  = "membership_required"
	outcomeEntitlementDenied   = "entitlement_denied"
	outcomeDailyLimit          = "daily_limit"
	outcomeAdvanceWindow       = "advance_window"
	outcomeConflict            = "conflict"
	outcomeBusy                = "busy"
	outcomeInternal            = "internal"
)

// Settings параметры допуска
type Settings struct {
	Location         *time.Location // Часовой пояс клуба
	AdmissionTimeout time.Duration  // Общий предел ожидания транзакции допуска, 0 - без предела
}

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	facilities   FacilityCatalog
	memberships  MembershipDirectory
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      Metrics
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	facilities FacilityCatalog,
	memberships MembershipDirectory,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		facilities:   facilities,
		memberships:  memberships,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Все проверки после валидации входа и вставка выполняются в одной
// сериализуемой транзакции: при любой ошибке ничего не записывается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, facility=%d, start=%s, end=%s",
		req.UserID, req.FacilityID, req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339))

	now := uc.timeProvider.Now()
	loc := uc.settings.Location

	// 1. Валидация входных данных
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.metrics.RecordAdmission(outcomeInvalid)
		return nil, err
	}

	requested := domain.Interval{Start: req.StartTime, End: req.EndTime}

	if uc.settings.AdmissionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.settings.AdmissionTimeout)
		defer cancel()
	}

	var result *domain.Booking

	// 2-9. Проверки и вставка в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		result = nil

		// 2. Объект существует и доступен
		facility, err := uc.facilities.GetByID(txCtx, req.FacilityID)
		if err != nil {
			if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
				return fmt.Errorf("%w: facility id=%d not found", ErrFacilityUnavailable, req.FacilityID)
			}
			return fmt.Errorf("%w: failed to get facility: %w", ErrInternal, err)
		}
		if !facility.IsAvailable() {
			return fmt.Errorf("%w: facility id=%d is %s", ErrFacilityUnavailable, facility.ID, facility.Status)
		}

		// 3. Длительность ровно равна длительности бронирования объекта
		if err := validateDuration(facility, requested); err != nil {
			return err
		}

		// 4. Интервал в рабочих часах
		if err := validateOperatingHours(facility, requested, loc); err != nil {
			return err
		}

		// 5. Действующий абонемент с доступом к типу объекта
		membership, err := uc.memberships.GetActiveMembership(txCtx, req.UserID, now.In(loc))
		if err != nil {
			if errors.Is(err, membershipRepo.ErrMembershipNotFound) {
				return fmt.Errorf("%w: user id=%d", ErrMembershipRequired, req.UserID)
			}
			return fmt.Errorf("%w: failed to get membership: %w", ErrInternal, err)
		}
		if err := validateEntitlement(membership, facility); err != nil {
			return err
		}

		// 6. Дневной лимит по дате начала
		count, err := uc.bookingRepo.CountForUserOnDate(txCtx, req.UserID, localDay(req.StartTime, loc), domain.DailyLimitStatuses)
		if err != nil {
			return fmt.Errorf("%w: failed to count user bookings: %w", ErrInternal, err)
		}
		if count >= membership.Type.MaxBookingsPerDay {
			return fmt.Errorf("%w: %d of %d bookings used", ErrDailyLimitExceeded, count, membership.Type.MaxBookingsPerDay)
		}

		// 7. Окно предварительного бронирования
		if err := validateAdvanceWindow(req.StartTime, now, loc, membership.Type.MaxBookingDaysAhead); err != nil {
			return err
		}

		// 8. Эксклюзивная секция объекта и проверка пересечений
		existing, err := uc.bookingRepo.ListForFacilityWithLock(txCtx, facility.ID, requested, domain.BlockingStatuses)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrFacilityNotFound) {
				return fmt.Errorf("%w: facility id=%d not found", ErrFacilityUnavailable, facility.ID)
			}
			return fmt.Errorf("%w: failed to lock facility: %w", ErrInternal, err)
		}
		if conflict := findConflict(existing, requested); conflict != nil {
			return fmt.Errorf("%w: overlaps booking id=%d", ErrConflict, conflict.ID)
		}

		// 9. Вставка
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			UserID:     req.UserID,
			FacilityID: facility.ID,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			Status:     domain.StatusConfirmed,
			Notes:      req.Notes,
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrOverlap) {
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		err = uc.classify(err)
		uc.logFailure(req, err)
		return nil, err
	}

	uc.metrics.RecordAdmission(outcomeCreated)
	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	uc.publish(ctx, result)

	return &Response{
		ID:         result.ID,
		UserID:     result.UserID,
		FacilityID: result.FacilityID,
		StartTime:  result.StartTime,
		EndTime:    result.EndTime,
		Status:     string(result.Status),
		Notes:      result.Notes,
		TotalCost:  result.TotalCost,
		CreatedAt:  result.CreatedAt,
		UpdatedAt:  result.UpdatedAt,
	}, nil
}

// classify сводит ошибки транзакции к ошибкам use case.
// Конкуренция, истечение таймаута допуска и отмена запроса клиентом - ErrBusy.
func (uc *UseCase) classify(err error) error {
	switch {
	case errors.Is(err, txmanager.ErrContention),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		txmanager.IsRetryable(err):
		return fmt.Errorf("%w: %v", ErrBusy, err)
	case errors.Is(err, bookingRepo.ErrOverlap):
		// Пересечение, пойманное только при фиксации
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, ErrFacilityUnavailable),
		errors.Is(err, ErrMembershipRequired),
		errors.Is(err, ErrEntitlementDenied),
		errors.Is(err, ErrDailyLimitExceeded),
		errors.Is(err, ErrAdvanceWindowExceeded),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInternal):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func (uc *UseCase) logFailure(req *Request, err error) {
	outcome := outcomeOf(err)
	uc.metrics.RecordAdmission(outcome)

	if outcome == outcomeInternal {
		uc.logger.Error("CreateBooking: user=%d, facility=%d: %v", req.UserID, req.FacilityID, err)
		return
	}
	uc.logger.Warn("CreateBooking: rejected user=%d, facility=%d (%s): %v", req.UserID, req.FacilityID, outcome, err)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrBusy):
		return outcomeBusy
	case errors.Is(err, ErrConflict):
		return outcomeConflict
	case errors.Is(err, ErrFacilityUnavailable):
		return outcomeFacilityUnavailable
	case errors.Is(err, ErrMembershipRequired):
		return outcomeMembershipRequired
	case errors.Is(err, ErrEntitlementDenied):
		return outcomeEntitlementDenied
	case errors.Is(err, ErrDailyLimitExceeded):
		return outcomeDailyLimit
	case errors.Is(err, ErrAdvanceWindowExceeded):
		return outcomeAdvanceWindow
	default:
		return outcomeInternal
	}
}

// publish отправляет событие booking.created. Ошибка публикации не отменяет бронирование.
func (uc *UseCase) publish(ctx context.Context, b *domain.Booking) {
	event := mq.BookingEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		FacilityID: b.FacilityID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     string(b.Status),
		ActorID:    b.UserID,
		OccurredAt: uc.timeProvider.Now().UTC(),
	}
	if err := uc.publisher.PublishJSON(ctx, mq.KeyBookingCreated, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", b.ID, err)
	}
}
