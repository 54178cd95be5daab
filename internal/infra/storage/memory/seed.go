package memory

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	"github.com/m04kA/SMC-ClubBooking/pkg/types"
)

// ErrInvalidSeed возвращается при некорректном файле начальных данных
var ErrInvalidSeed = errors.New("memory: invalid seed")

// Seed начальные данные in-memory хранилища (TOML)
type Seed struct {
	Users           []SeedUser           `toml:"users"`
	MembershipTypes []SeedMembershipType `toml:"membership_types"`
	Memberships     []SeedMembership     `toml:"memberships"`
	Facilities      []SeedFacility       `toml:"facilities"`
}

// SeedUser пользователь и его роль
type SeedUser struct {
	ID   int64  `toml:"id"`
	Role string `toml:"role"`
}

// SeedMembershipType тариф
type SeedMembershipType struct {
	ID                  int64    `toml:"id"`
	Name                string   `toml:"name"`
	FacilitiesAccess    []string `toml:"facilities_access"`
	MaxBookingsPerDay   int      `toml:"max_bookings_per_day"`
	MaxBookingDaysAhead int      `toml:"max_booking_days_ahead"`
	Price               float64  `toml:"price"`
}

// SeedMembership абонемент; даты в формате YYYY-MM-DD
type SeedMembership struct {
	ID               int64     `toml:"id"`
	UserID           int64     `toml:"user_id"`
	MembershipTypeID int64     `toml:"membership_type_id"`
	StartDate        string    `toml:"start_date"`
	EndDate          string    `toml:"end_date"`
	Status           string    `toml:"status"`
	CreatedAt        time.Time `toml:"created_at"`
}

// SeedFacility объект клуба
type SeedFacility struct {
	ID                     int64  `toml:"id"`
	Name                   string `toml:"name"`
	Type                   string `toml:"type"`
	Capacity               int    `toml:"capacity"`
	OperatingHoursStart    string `toml:"operating_hours_start"`
	OperatingHoursEnd      string `toml:"operating_hours_end"`
	BookingDurationMinutes int    `toml:"booking_duration_minutes"`
	BookingBufferMinutes   *int   `toml:"booking_buffer_minutes"`
	RequiresSupervision    bool   `toml:"requires_supervision"`
	Status                 string `toml:"status"`
}

// LoadSeed читает файл начальных данных
func LoadSeed(path string) (*Seed, error) {
	var seed Seed
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidSeed, path, err)
	}
	return &seed, nil
}

// Apply загружает начальные данные в хранилище
func (s *Store) Apply(seed *Seed) error {
	membershipTypes := make(map[int64]domain.MembershipType, len(seed.MembershipTypes))
	for _, t := range seed.MembershipTypes {
		membershipTypes[t.ID] = domain.MembershipType{
			ID:                  t.ID,
			Name:                t.Name,
			FacilitiesAccess:    t.FacilitiesAccess,
			MaxBookingsPerDay:   t.MaxBookingsPerDay,
			MaxBookingDaysAhead: t.MaxBookingDaysAhead,
			Price:               t.Price,
		}
	}

	for _, u := range seed.Users {
		role := domain.UserRole(u.Role)
		if role == "" {
			role = domain.RoleMember
		}
		s.AddUser(u.ID, role)
	}

	for _, m := range seed.Memberships {
		mt, ok := membershipTypes[m.MembershipTypeID]
		if !ok {
			return fmt.Errorf("%w: membership id=%d references unknown type id=%d", ErrInvalidSeed, m.ID, m.MembershipTypeID)
		}
		start, err := time.Parse(domain.DateFormat, m.StartDate)
		if err != nil {
			return fmt.Errorf("%w: membership id=%d start_date: %v", ErrInvalidSeed, m.ID, err)
		}
		end, err := time.Parse(domain.DateFormat, m.EndDate)
		if err != nil {
			return fmt.Errorf("%w: membership id=%d end_date: %v", ErrInvalidSeed, m.ID, err)
		}
		s.AddMembership(domain.Membership{
			ID:        m.ID,
			UserID:    m.UserID,
			Type:      mt,
			StartDate: start,
			EndDate:   end,
			Status:    domain.MembershipStatus(m.Status),
			CreatedAt: m.CreatedAt,
		})
	}

	for _, f := range seed.Facilities {
		facility, err := f.toDomain()
		if err != nil {
			return err
		}
		s.AddFacility(facility)
	}

	return nil
}

func (f SeedFacility) toDomain() (domain.Facility, error) {
	start, err := types.NewTimeStringFromString(f.OperatingHoursStart)
	if err != nil {
		return domain.Facility{}, fmt.Errorf("%w: facility id=%d operating_hours_start: %v", ErrInvalidSeed, f.ID, err)
	}
	end, err := types.NewTimeStringFromString(f.OperatingHoursEnd)
	if err != nil {
		return domain.Facility{}, fmt.Errorf("%w: facility id=%d operating_hours_end: %v", ErrInvalidSeed, f.ID, err)
	}

	duration := f.BookingDurationMinutes
	if duration == 0 {
		duration = domain.DefaultBookingDurationMinutes
	}
	buffer := domain.DefaultBookingBufferMinutes
	if f.BookingBufferMinutes != nil {
		buffer = *f.BookingBufferMinutes
	}
	status := domain.FacilityStatus(f.Status)
	if status == "" {
		status = domain.FacilityAvailable
	}

	return domain.Facility{
		ID:                     f.ID,
		Name:                   f.Name,
		Type:                   f.Type,
		Capacity:               f.Capacity,
		OperatingHoursStart:    start,
		OperatingHoursEnd:      end,
		BookingDurationMinutes: duration,
		BookingBufferMinutes:   buffer,
		RequiresSupervision:    f.RequiresSupervision,
		Status:                 status,
	}, nil
}
