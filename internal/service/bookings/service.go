package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/booking"
	userRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/user"
	"github.com/m04kA/SMC-ClubBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-ClubBooking/pkg/mq"
)

// Service сервис для работы с бронированиями после их создания
type Service struct {
	bookingRepo BookingRepository
	users       UserDirectory
	publisher   EventPublisher
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	users UserDirectory,
	publisher EventPublisher,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		users:       users,
		publisher:   publisher,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID.
// Владелец видит своё бронирование, персонал - любое.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if booking.UserID != userID {
		if err := s.requirePrivileged(ctx, userID); err != nil {
			s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
			return nil, err
		}
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя (сначала новые).
// Пользователь видит свои бронирования, персонал - любого пользователя.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d by user=%d, status=%v", req.UserID, req.RequesterID, req.Status)

	if req.RequesterID != req.UserID {
		if err := s.requirePrivileged(ctx, req.RequesterID); err != nil {
			s.logger.Warn("GetUserBookings: access denied for user=%d to bookings of user=%d", req.RequesterID, req.UserID)
			return nil, err
		}
	}

	filter := domain.BookingsFilter{UserID: &req.UserID}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Statuses = []domain.BookingStatus{status}
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetFacilityBookings получает бронирования объекта в хронологическом порядке.
// Доступно только персоналу и администраторам.
//
// Примеры использования:
// - Все бронирования объекта: GetFacilityBookings(ctx, &GetFacilityBookingsRequest{FacilityID: 1, RequesterID: 100})
// - За период: From и To (To не включительно)
// - Только подтверждённые: Status = "confirmed"
func (s *Service) GetFacilityBookings(ctx context.Context, req *models.GetFacilityBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetFacilityBookings: fetching bookings for facility=%d, user=%d", req.FacilityID, req.RequesterID)
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(time.RFC3339), req.To.Format(time.RFC3339))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if err := s.requirePrivileged(ctx, req.RequesterID); err != nil {
		s.logger.Warn("GetFacilityBookings: access denied for user=%d", req.RequesterID)
		return nil, err
	}

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetFacilityBookings: invalid filter for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetFacilityBookings: repository error for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: GetFacilityBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetFacilityBookings: successfully fetched %d bookings for facility=%d", len(bookings), req.FacilityID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование одним условным обновлением.
// Участник клуба отменяет только своё бронирование, персонал - любое.
// Отменить можно только pending и confirmed; повторная отмена не проходит.
// Любая неудача возвращает ErrNotFoundOrNotCancellable.
func (s *Service) Cancel(ctx context.Context, bookingID int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, userID)

	role, err := s.role(ctx, userID)
	if err != nil {
		return nil, err
	}

	owner := &userID
	if role.IsPrivileged() {
		owner = nil
	}

	booking, err := s.bookingRepo.CancelIfOwned(ctx, bookingID, owner)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not cancelled for user=%d", bookingID, userID)
			return nil, ErrNotFoundOrNotCancellable
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d by user=%d (role=%s)", bookingID, userID, role)
	s.publish(ctx, mq.KeyBookingCancelled, booking, userID)

	return models.FromDomainBooking(booking), nil
}

// UpdateStatus меняет статус бронирования. Только персонал и администраторы.
// confirmed -> completed | no_show, любой неотменённый -> cancelled.
// Пересечения заново не проверяются: интервал не меняется.
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d", bookingID, req.Status, req.UserID)

	if err := s.requirePrivileged(ctx, req.UserID); err != nil {
		s.logger.Warn("UpdateStatus: access denied for user=%d", req.UserID)
		return nil, err
	}

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, req.Status)
	}

	from := transitionSources(newStatus)
	if len(from) == 0 {
		return nil, fmt.Errorf("%w: cannot set status %s", ErrInvalidStatus, newStatus)
	}

	current, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}
	if !current.CanTransitionTo(newStatus) {
		s.logger.Warn("UpdateStatus: booking id=%d cannot go from %s to %s", bookingID, current.Status, newStatus)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
	}

	// Условное обновление: статус мог измениться между чтением и записью
	updated, err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, newStatus)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d changed concurrently", bookingID)
			return nil, fmt.Errorf("%w: booking status changed concurrently", ErrInvalidTransition)
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	s.publish(ctx, mq.KeyBookingStatusChanged, updated, req.UserID)

	return models.FromDomainBooking(updated), nil
}

// UpdateBooking меняет разрешённые поля бронирования (см. updatableFields).
// Владелец меняет заметки, персонал - заметки и стоимость.
func (s *Service) UpdateBooking(ctx context.Context, bookingID int64, req *models.UpdateBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateBooking: updating booking id=%d by user=%d, fields=%d", bookingID, req.UserID, len(req.Fields))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateBooking: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("UpdateBooking: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateBooking - repository error: %v", ErrInternal, err)
	}

	role, err := s.role(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != req.UserID && !role.IsPrivileged() {
		s.logger.Warn("UpdateBooking: access denied for user=%d to booking id=%d", req.UserID, bookingID)
		return nil, ErrAccessDenied
	}

	columns, err := resolveFields(req.Fields, role)
	if err != nil {
		s.logger.Warn("UpdateBooking: rejected update of booking id=%d: %v", bookingID, err)
		return nil, err
	}

	updated, err := s.bookingRepo.UpdateFields(ctx, bookingID, columns)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("UpdateBooking: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateBooking - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateBooking: successfully updated booking id=%d", bookingID)
	return models.FromDomainBooking(updated), nil
}

// Вспомогательные методы

// transitionSources статусы, из которых разрешён переход в to
func transitionSources(to domain.BookingStatus) []domain.BookingStatus {
	switch to {
	case domain.StatusCompleted, domain.StatusNoShow:
		return []domain.BookingStatus{domain.StatusConfirmed}
	case domain.StatusCancelled:
		sources := make([]domain.BookingStatus, 0, len(domain.AllStatuses))
		for _, st := range domain.AllStatuses {
			if st != domain.StatusCancelled {
				sources = append(sources, st)
			}
		}
		return sources
	default:
		return nil
	}
}

// role возвращает роль пользователя; неизвестный пользователь считается участником
func (s *Service) role(ctx context.Context, userID int64) (domain.UserRole, error) {
	role, err := s.users.GetRole(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return domain.RoleMember, nil
		}
		s.logger.Error("role: failed to get role of user=%d: %v", userID, err)
		return "", fmt.Errorf("%w: failed to get user role: %v", ErrInternal, err)
	}
	return role, nil
}

// requirePrivileged проверяет, что пользователь - персонал или администратор
func (s *Service) requirePrivileged(ctx context.Context, userID int64) error {
	role, err := s.role(ctx, userID)
	if err != nil {
		return err
	}
	if !role.IsPrivileged() {
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) publish(ctx context.Context, key string, b *domain.Booking, actorID int64) {
	event := mq.BookingEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		FacilityID: b.FacilityID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     string(b.Status),
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, key, event); err != nil {
		s.logger.Warn("publish: failed to publish %s for booking id=%d: %v", key, b.ID, err)
	}
}
