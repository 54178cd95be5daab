package domain

import "time"

// MembershipStatus represents the state of a user's membership
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipExpired   MembershipStatus = "expired"
	MembershipCancelled MembershipStatus = "cancelled"
	MembershipPending   MembershipStatus = "pending"
)

// MembershipType тариф абонемента
type MembershipType struct {
	ID                  int64
	Name                string
	FacilitiesAccess    []string // Типы объектов, доступные по тарифу
	MaxBookingsPerDay   int
	MaxBookingDaysAhead int
	Price               float64
}

// Membership абонемент пользователя, ограниченный по времени
type Membership struct {
	ID        int64
	UserID    int64
	Type      MembershipType
	StartDate time.Time
	EndDate   time.Time
	Status    MembershipStatus
	CreatedAt time.Time
}

// IsActiveOn проверяет, что абонемент активен и не истёк на дату today
func (m *Membership) IsActiveOn(today time.Time) bool {
	if m.Status != MembershipActive {
		return false
	}
	return !CivilDate(m.EndDate).Before(CivilDate(today))
}

// Grants проверяет, что тариф даёт доступ к объектам типа facilityType
func (m *Membership) Grants(facilityType string) bool {
	for _, t := range m.Type.FacilitiesAccess {
		if t == facilityType {
			return true
		}
	}
	return false
}

// NewerThan реализует политику выбора абонемента: из нескольких активных
// берётся созданный последним, при равенстве created_at - с большим ID
func (m *Membership) NewerThan(other *Membership) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.After(other.CreatedAt)
	}
	return m.ID > other.ID
}

// DateOnly обнуляет время, сохраняя часовой пояс
func DateOnly(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}

// CivilDate календарная дата t (в её собственном часовом поясе) как полночь UTC.
// Позволяет сравнивать даты из разных часовых поясов (колонка DATE и "сегодня" клуба)
func CivilDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
