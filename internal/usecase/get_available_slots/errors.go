package get_available_slots

import "errors"

var (
	// ErrFacilityNotFound возвращается, когда объект не найден
	ErrFacilityNotFound = errors.New("get_available_slots: facility not found")

	// ErrInvalidFacilityConfig возвращается, когда длительность бронирования объекта
	// не положительна или перерыв отрицателен
	ErrInvalidFacilityConfig = errors.New("get_available_slots: invalid facility configuration")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
