package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	"github.com/m04kA/SMC-ClubBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClubBooking/pkg/psqlbuilder"
)

// Repository справочник абонементов (только чтение)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр справочника абонементов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActiveMembership возвращает действующий на дату today абонемент пользователя.
// Если действующих несколько, берётся созданный последним (при равенстве - с большим ID).
func (r *Repository) GetActiveMembership(ctx context.Context, userID int64, today time.Time) (*domain.Membership, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := activeMembershipQuery(userID, today).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveMembership - build select query: %v", ErrBuildQuery, err)
	}

	var m domain.Membership
	var access pq.StringArray

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&m.ID,
		&m.UserID,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.CreatedAt,
		&m.Type.ID,
		&m.Type.Name,
		&access,
		&m.Type.MaxBookingsPerDay,
		&m.Type.MaxBookingDaysAhead,
		&m.Type.Price,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveMembership - scan membership: %w", ErrScanRow, err)
	}

	m.Type.FacilitiesAccess = []string(access)

	return &m, nil
}

func activeMembershipQuery(userID int64, today time.Time) squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"m.id",
		"m.user_id",
		"m.start_date",
		"m.end_date",
		"m.status",
		"m.created_at",
		"t.id",
		"t.name",
		"t.facilities_access",
		"t.max_bookings_per_day",
		"t.max_booking_days_ahead",
		"t.price",
	).
		From("memberships m").
		Join("membership_types t ON t.id = m.membership_type_id").
		Where(squirrel.Eq{"m.user_id": userID}).
		Where(squirrel.Eq{"m.status": string(domain.MembershipActive)}).
		// Колонка DATE: сравниваем с календарной датой "сегодня" клуба
		Where(squirrel.GtOrEq{"m.end_date": domain.CivilDate(today).Format(domain.DateFormat)}).
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(1)
}
