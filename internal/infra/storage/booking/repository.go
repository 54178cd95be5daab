package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	"github.com/m04kA/SMC-ClubBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClubBooking/pkg/psqlbuilder"
)

// codeExclusionViolation нарушение EXCLUDE-ограничения bookings_no_overlap
const codeExclusionViolation = "23P01"

// bookingColumns порядок колонок совпадает с порядком полей в scanBooking
var bookingColumns = []string{
	"id",
	"user_id",
	"facility_id",
	"start_time",
	"end_time",
	"status",
	"notes",
	"total_cost",
	"created_at",
	"updated_at",
}

// updatableColumns колонки, которые разрешено менять через UpdateFields.
// Интервал, объект и владелец после создания не меняются.
var updatableColumns = map[string]struct{}{
	"notes":      {},
	"total_cost": {},
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
// Пересечение с уже существующим блокирующим бронированием, пойманное
// ограничением исключения, возвращается как ErrOverlap.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"facility_id",
			"start_time",
			"end_time",
			"status",
			"notes",
			"total_cost",
		).
		Values(
			booking.UserID,
			booking.FacilityID,
			booking.StartTime,
			booking.EndTime,
			string(booking.Status),
			booking.Notes,
			booking.TotalCost,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == codeExclusionViolation {
			return nil, fmt.Errorf("%w: Create - facility=%d: %v", ErrOverlap, booking.FacilityID, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// ListForFacilityWithLock открывает эксклюзивную секцию объекта и возвращает
// его бронирования со статусами statuses, пересекающие window.
//
// Работает только внутри транзакции: сначала блокируется строка объекта
// (это покрывает случай, когда бронирований ещё нет), затем сами бронирования.
// Блокировки держатся до конца транзакции, поэтому проверка пересечений и
// вставка нового бронирования выполняются атомарно относительно других
// запросов на тот же объект. Запросы на разные объекты не конкурируют.
func (r *Repository) ListForFacilityWithLock(ctx context.Context, facilityID int64, window domain.Interval, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrLockRequiresTx
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	lockQuery, lockArgs, err := psqlbuilder.Select("id").
		From("facilities").
		Where(squirrel.Eq{"id": facilityID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForFacilityWithLock - build lock query: %v", ErrBuildQuery, err)
	}

	var lockedID int64
	err = executor.QueryRowContext(ctx, lockQuery, lockArgs...).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ListForFacilityWithLock - lock facility=%d: %w", ErrExecQuery, facilityID, err)
	}

	query, args, err := overlapping(psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"facility_id": facilityID}), window, statuses).
		OrderBy("start_time ASC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForFacilityWithLock - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForFacilityWithLock - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListForFacilityOnDate возвращает бронирования объекта со статусами statuses,
// пересекающие день day. Без блокировок: используется генератором слотов.
func (r *Repository) ListForFacilityOnDate(ctx context.Context, facilityID int64, day domain.Interval, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := overlapping(psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"facility_id": facilityID}), day, statuses).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForFacilityOnDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForFacilityOnDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CountForUserOnDate считает бронирования пользователя со статусами statuses,
// начинающиеся в день day (по всем объектам)
func (r *Repository) CountForUserOnDate(ctx context.Context, userID int64, day domain.Interval, statuses []domain.BookingStatus) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"status": statusStrings(statuses)}).
		Where(squirrel.GtOrEq{"start_time": day.Start}).
		Where(squirrel.Lt{"start_time": day.End}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountForUserOnDate - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountForUserOnDate - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// List получает бронирования по фильтру
//
// Примеры использования:
//
//  1. Все бронирования пользователя:
//     filter := domain.BookingsFilter{UserID: ptr.Ptr(int64(42))}
//
//  2. Бронирования объекта за период:
//     filter := domain.BookingsFilter{FacilityID: &id, From: &from, To: &to}
//
//  3. Только подтверждённые:
//     filter := domain.BookingsFilter{UserID: &id, Statuses: []domain.BookingStatus{domain.StatusConfirmed}}
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// CancelIfOwned атомарно отменяет бронирование, если оно в отменяемом статусе
// и (при userID != nil) принадлежит пользователю. userID == nil - привилегированная отмена.
// Любое невыполненное условие возвращает ErrBookingNotFound без уточнения причины.
func (r *Repository) CancelIfOwned(ctx context.Context, id int64, userID *int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	update := psqlbuilder.Update("bookings").
		Set("status", string(domain.StatusCancelled)).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(domain.CancellableStatuses)})
	if userID != nil {
		update = update.Where(squirrel.Eq{"user_id": *userID})
	}

	query, args, err := returning(update).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CancelIfOwned - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CancelIfOwned - execute update: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// UpdateStatus переводит бронирование в статус to, если текущий статус входит в from
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := returning(psqlbuilder.Update("bookings").
		Set("status", string(to)).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(from)})).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// UpdateFields обновляет разрешённые колонки бронирования (см. updatableColumns)
func (r *Repository) UpdateFields(ctx context.Context, id int64, fields map[string]any) (*domain.Booking, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	for column := range fields {
		if _, ok := updatableColumns[column]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, column)
		}
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := returning(psqlbuilder.Update("bookings").
		SetMap(fields).
		Where(squirrel.Eq{"id": id})).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateFields - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateFields - execute update: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// listQuery строит выборку по фильтру. Вынесено отдельно для тестов SQL.
func listQuery(filter domain.BookingsFilter) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.FacilityID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"facility_id": *filter.FacilityID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if len(filter.Statuses) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings(filter.Statuses)})
	}

	// Для одного объекта - хронологически, иначе сначала новые
	if filter.FacilityID != nil {
		return selectBuilder.OrderBy("start_time ASC", "id ASC")
	}
	return selectBuilder.OrderBy("start_time DESC", "id DESC")
}

// overlapping добавляет условие полуоткрытого пересечения с window и фильтр по статусам
func overlapping(b squirrel.SelectBuilder, window domain.Interval, statuses []domain.BookingStatus) squirrel.SelectBuilder {
	return b.
		Where(squirrel.Eq{"status": statusStrings(statuses)}).
		Where(squirrel.Lt{"start_time": window.End}).
		Where(squirrel.Gt{"end_time": window.Start})
}

func returning(b squirrel.UpdateBuilder) squirrel.UpdateBuilder {
	return b.Suffix("RETURNING id, user_id, facility_id, start_time, end_time, status, notes, total_cost, created_at, updated_at")
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBooking сканирует одну строку в порядке bookingColumns
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var notes sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.FacilityID,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&notes,
		&booking.TotalCost,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		booking.Notes = &notes.String
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}
