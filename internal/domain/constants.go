package domain

// Default facility values
const (
	DefaultBookingDurationMinutes = 60
	DefaultBookingBufferMinutes   = 15
)

// Business validation constants
const (
	MaxNotesLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// AllStatuses все известные статусы бронирования
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
	StatusNoShow,
}

// BlockingStatuses статусы, при которых бронирование занимает интервал объекта.
// Используется при проверке конфликтов и при расчёте доступных слотов
var BlockingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// DailyLimitStatuses статусы, учитываемые в дневном лимите пользователя
var DailyLimitStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// CancellableStatuses статусы, из которых бронирование можно отменить
var CancellableStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
