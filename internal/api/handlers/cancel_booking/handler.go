package cancel_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ClubBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClubBooking/internal/api/middleware"
	"github.com/m04kA/SMC-ClubBooking/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "требуется заголовок X-User-ID"
	msgCannotCancel     = "бронирование не найдено или не может быть отменено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/cancel
// Любая причина отказа (нет бронирования, чужое, уже отменено) отдаётся одним 404.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/cancel - %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := h.service.Cancel(r.Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, bookings.ErrNotFoundOrNotCancellable) {
			h.logger.Warn("PATCH /bookings/{id}/cancel - Not cancelled: booking_id=%d, user_id=%d", bookingID, userID)
			handlers.RespondNotFound(w, msgCannotCancel)
			return
		}
		h.logger.Error("PATCH /bookings/{id}/cancel - Failed to cancel booking: booking_id=%d, error=%v, request_id=%s", bookingID, err, middleware.GetRequestID(r.Context()))
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PATCH /bookings/{id}/cancel - Booking cancelled: booking_id=%d, user_id=%d", bookingID, userID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
