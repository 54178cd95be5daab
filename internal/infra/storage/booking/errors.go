package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено (или не подходит под условие обновления)
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrOverlap возвращается, когда вставка нарушила ограничение исключения по интервалам
	ErrOverlap = errors.New("booking.repository: booking overlaps an existing booking")

	// ErrLockRequiresTx возвращается при попытке взять блокировку вне транзакции
	ErrLockRequiresTx = errors.New("booking.repository: facility lock requires a transaction")

	// ErrFacilityNotFound возвращается, когда нечего блокировать: объекта нет
	ErrFacilityNotFound = errors.New("booking.repository: facility not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")

	// ErrUnknownField возвращается при попытке обновить колонку вне списка разрешённых
	ErrUnknownField = errors.New("booking.repository: field is not updatable")
)
