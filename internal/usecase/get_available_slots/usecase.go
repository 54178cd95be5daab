package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	facilityRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/facility"
)

// UseCase use case для получения слотов объекта на дату.
// Результат носит справочный характер: допуск бронирования проверяет всё заново.
type UseCase struct {
	bookingRepo  BookingRepository
	facilities   FacilityCatalog
	txManager    TransactionManager
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	facilities FacilityCatalog,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		facilities:   facilities,
		txManager:    txManager,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: facility=%d, date=%s", req.FacilityID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if req.FacilityID <= 0 {
		return nil, fmt.Errorf("%w: facilityID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	y, m, d := req.Date.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, uc.location)
	day := domain.Interval{Start: date, End: date.AddDate(0, 0, 1)}

	var (
		facility *domain.Facility
		window   domain.Interval
		bookings []*domain.Booking
	)

	// 2-3. Объект и его бронирования читаются из одного снимка
	err := uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		facility, err = uc.facilities.GetByID(txCtx, req.FacilityID)
		if err != nil {
			if errors.Is(err, facilityRepo.ErrFacilityNotFound) {
				uc.logger.Warn("GetAvailableSlots: facility id=%d not found", req.FacilityID)
				return ErrFacilityNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get facility id=%d: %v", req.FacilityID, err)
			return fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
		}

		window, err = facility.OperatingWindow(date, uc.location)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: facility id=%d has invalid operating hours: %v", facility.ID, err)
			return fmt.Errorf("%w: %v", ErrInvalidFacilityConfig, err)
		}

		bookings, err = uc.bookingRepo.ListForFacilityOnDate(txCtx, facility.ID, day, domain.BlockingStatuses)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFacilityNotFound) || errors.Is(err, ErrInvalidFacilityConfig) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("GetAvailableSlots: read transaction failed for facility id=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 4. Генерируем слоты
	slots, err := generateSlots(window, facility.BookingDuration(), facility.BookingBuffer(), bookedIntervals(bookings), uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: facility id=%d: %v", facility.ID, err)
		return nil, err
	}

	// Недоступный объект показывает расписание, но без свободных слотов
	if !facility.IsAvailable() {
		for i := range slots {
			slots[i].Available = false
		}
	}

	response := &Response{
		Date: date,
		Facility: FacilityInfo{
			ID:              facility.ID,
			DurationMinutes: facility.BookingDurationMinutes,
			BufferMinutes:   facility.BookingBufferMinutes,
			HoursStart:      facility.OperatingHoursStart,
			HoursEnd:        facility.OperatingHoursEnd,
		},
		Slots: make([]Slot, len(slots)),
	}
	for i, s := range slots {
		response.Slots[i] = Slot{StartTime: s.StartTime, EndTime: s.EndTime, Available: s.Available}
	}

	uc.logger.Info("GetAvailableSlots: facility=%d, date=%s, %d slots generated",
		facility.ID, date.Format(domain.DateFormat), len(response.Slots))

	return response, nil
}
