package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ClubBooking/pkg/types"
)

// Request модель запроса на получение слотов
type Request struct {
	FacilityID int64     // ID объекта
	Date       time.Time // Календарная дата (берутся год, месяц и день)
}

// Response модель ответа со списком слотов
type Response struct {
	Date     time.Time    // Полночь запрошенной даты в часовом поясе клуба
	Facility FacilityInfo // Параметры расписания объекта
	Slots    []Slot       // Слоты по возрастанию начала
}

// FacilityInfo параметры, по которым построены слоты
type FacilityInfo struct {
	ID              int64
	DurationMinutes int
	BufferMinutes   int
	HoursStart      types.TimeString
	HoursEnd        types.TimeString
}

// Slot модель временного слота
type Slot struct {
	StartTime time.Time // Начало слота
	EndTime   time.Time // Конец слота, не включительно
	Available bool      // Слот можно забронировать
}
