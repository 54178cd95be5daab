package memory

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	facilityRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/facility"
	membershipRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/membership"
	userRepo "github.com/m04kA/SMC-ClubBooking/internal/infra/storage/user"
)

// FacilityCatalog каталог объектов поверх Store
type FacilityCatalog struct {
	store *Store
}

// NewFacilityCatalog создает каталог объектов
func NewFacilityCatalog(store *Store) *FacilityCatalog {
	return &FacilityCatalog{store: store}
}

// GetByID получает объект по ID
func (c *FacilityCatalog) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	f, ok := c.store.facilities[id]
	if !ok {
		return nil, facilityRepo.ErrFacilityNotFound
	}
	copied := *f
	return &copied, nil
}

// MembershipDirectory справочник абонементов поверх Store
type MembershipDirectory struct {
	store *Store
}

// NewMembershipDirectory создает справочник абонементов
func NewMembershipDirectory(store *Store) *MembershipDirectory {
	return &MembershipDirectory{store: store}
}

// GetActiveMembership возвращает самый новый действующий на today абонемент
func (d *MembershipDirectory) GetActiveMembership(ctx context.Context, userID int64, today time.Time) (*domain.Membership, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	var newest *domain.Membership
	for _, m := range d.store.memberships[userID] {
		if !m.IsActiveOn(today) {
			continue
		}
		if newest == nil || m.NewerThan(newest) {
			newest = m
		}
	}
	if newest == nil {
		return nil, membershipRepo.ErrMembershipNotFound
	}

	copied := *newest
	copied.Type.FacilitiesAccess = append([]string(nil), newest.Type.FacilitiesAccess...)
	return &copied, nil
}

// UserDirectory справочник пользователей поверх Store
type UserDirectory struct {
	store *Store
}

// NewUserDirectory создает справочник пользователей
func NewUserDirectory(store *Store) *UserDirectory {
	return &UserDirectory{store: store}
}

// GetRole возвращает роль пользователя
func (d *UserDirectory) GetRole(ctx context.Context, userID int64) (domain.UserRole, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	role, ok := d.store.users[userID]
	if !ok {
		return "", userRepo.ErrUserNotFound
	}
	return role, nil
}
