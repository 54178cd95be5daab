package membership

import "errors"

var (
	// ErrMembershipNotFound возвращается, когда у пользователя нет действующего абонемента
	ErrMembershipNotFound = errors.New("membership.repository: active membership not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("membership.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("membership.repository: failed to scan row")
)
