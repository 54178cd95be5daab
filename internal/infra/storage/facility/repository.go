package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	"github.com/m04kA/SMC-ClubBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClubBooking/pkg/psqlbuilder"
)

// Repository каталог объектов клуба (только чтение)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр каталога объектов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает объект по ID.
// Если в контексте передана активная транзакция, чтение идёт в ней.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"type",
		"capacity",
		"operating_hours_start",
		"operating_hours_end",
		"booking_duration_minutes",
		"booking_buffer_minutes",
		"requires_supervision",
		"status",
		"created_at",
		"updated_at",
	).
		From("facilities").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var facility domain.Facility
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&facility.ID,
		&facility.Name,
		&facility.Type,
		&facility.Capacity,
		&facility.OperatingHoursStart,
		&facility.OperatingHoursEnd,
		&facility.BookingDurationMinutes,
		&facility.BookingBufferMinutes,
		&facility.RequiresSupervision,
		&facility.Status,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan facility: %w", ErrScanRow, err)
	}

	facility.CreatedAt = createdAt.Time
	facility.UpdatedAt = updatedAt.Time

	return &facility, nil
}
