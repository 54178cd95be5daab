package create_booking

import (
	"errors"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-ClubBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClubBooking/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-ClubBooking/internal/usecase/create_booking"
)

const (
	msgMissingUserID         = "требуется заголовок X-User-ID"
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidTime           = "некорректный формат времени, ожидается RFC3339"
	msgInvalidInput          = "некорректный интервал бронирования"
	msgFacilityUnavailable   = "объект недоступен для бронирования в выбранное время"
	msgMembershipRequired    = "требуется действующий абонемент"
	msgEntitlementDenied     = "абонемент не даёт доступа к этому объекту"
	msgDailyLimitExceeded    = "превышен дневной лимит бронирований"
	msgAdvanceWindowExceeded = "дата бронирования слишком далеко в будущем"
	msgSlotNotAvailable      = "выбранный временной слот уже занят"
	msgFacilityBusy          = "объект занят, повторите запрос позже"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondErrorDetails(w, http.StatusBadRequest, msgInvalidInput, details(err, createBooking.ErrInvalidInput))

		case errors.Is(err, createBooking.ErrMembershipRequired):
			h.logger.Warn("POST /bookings - Membership required: user_id=%d", userID)
			handlers.RespondForbidden(w, msgMembershipRequired)

		case errors.Is(err, createBooking.ErrEntitlementDenied):
			h.logger.Warn("POST /bookings - Entitlement denied: user_id=%d, facility_id=%d", userID, req.FacilityID)
			handlers.RespondErrorDetails(w, http.StatusForbidden, msgEntitlementDenied, details(err, createBooking.ErrEntitlementDenied))

		case errors.Is(err, createBooking.ErrConflict):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%d, facility_id=%d", userID, req.FacilityID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrBusy):
			h.logger.Warn("POST /bookings - Facility busy: facility_id=%d", req.FacilityID)
			w.Header().Set("Retry-After", "1")
			handlers.RespondConflict(w, msgFacilityBusy)

		case errors.Is(err, createBooking.ErrFacilityUnavailable):
			h.logger.Warn("POST /bookings - Facility unavailable: facility_id=%d, error=%v", req.FacilityID, err)
			handlers.RespondErrorDetails(w, http.StatusUnprocessableEntity, msgFacilityUnavailable, details(err, createBooking.ErrFacilityUnavailable))

		case errors.Is(err, createBooking.ErrDailyLimitExceeded):
			h.logger.Warn("POST /bookings - Daily limit exceeded: user_id=%d", userID)
			handlers.RespondErrorDetails(w, http.StatusUnprocessableEntity, msgDailyLimitExceeded, details(err, createBooking.ErrDailyLimitExceeded))

		case errors.Is(err, createBooking.ErrAdvanceWindowExceeded):
			h.logger.Warn("POST /bookings - Date too far: user_id=%d", userID)
			handlers.RespondErrorDetails(w, http.StatusUnprocessableEntity, msgAdvanceWindowExceeded, details(err, createBooking.ErrAdvanceWindowExceeded))

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, facility_id=%d, error=%v, request_id=%s",
				userID, req.FacilityID, err, middleware.GetRequestID(r.Context()))
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}

// details возвращает пояснение из ошибки use case без текста самой ошибки-метки
func details(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
