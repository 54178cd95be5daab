package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	// (пустой или перевёрнутый интервал, начало в прошлом, слишком длинные заметки)
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrFacilityUnavailable возвращается, когда объект не найден, не доступен,
	// длительность не совпадает с длительностью бронирования объекта или интервал вне рабочих часов
	ErrFacilityUnavailable = errors.New("create_booking: facility unavailable")

	// ErrMembershipRequired возвращается, когда у пользователя нет действующего абонемента
	ErrMembershipRequired = errors.New("create_booking: active membership required")

	// ErrEntitlementDenied возвращается, когда тариф не даёт доступа к типу объекта
	ErrEntitlementDenied = errors.New("create_booking: membership does not grant access to facility type")

	// ErrDailyLimitExceeded возвращается, когда исчерпан дневной лимит бронирований
	ErrDailyLimitExceeded = errors.New("create_booking: daily booking limit exceeded")

	// ErrAdvanceWindowExceeded возвращается, когда дата дальше, чем разрешает тариф
	ErrAdvanceWindowExceeded = errors.New("create_booking: date is too far in the future")

	// ErrConflict возвращается, когда интервал пересекается с существующим бронированием
	ErrConflict = errors.New("create_booking: time slot already booked")

	// ErrBusy возвращается, когда не удалось получить блокировку объекта или транзакция
	// не прошла из-за конкуренции после повтора, а также при отмене запроса клиентом.
	// Запрос можно повторить.
	ErrBusy = errors.New("create_booking: facility is busy, retry later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
