package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ClubBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date     string          `json:"date"`
	Facility FacilityInfo    `json:"facility"`
	Slots    []AvailableSlot `json:"slots"`
}

// FacilityInfo параметры расписания объекта
type FacilityInfo struct {
	ID              int64  `json:"id"`
	DurationMinutes int    `json:"durationMinutes"`
	BufferMinutes   int    `json:"bufferMinutes"`
	HoursStart      string `json:"hoursStart"`
	HoursEnd        string `json:"hoursEnd"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime: slot.StartTime.Format(time.RFC3339),
			EndTime:   slot.EndTime.Format(time.RFC3339),
			Available: slot.Available,
		}
	}

	return &AvailableSlotsResponse{
		Date: resp.Date.Format(domain.DateFormat),
		Facility: FacilityInfo{
			ID:              resp.Facility.ID,
			DurationMinutes: resp.Facility.DurationMinutes,
			BufferMinutes:   resp.Facility.BufferMinutes,
			HoursStart:      resp.Facility.HoursStart.String(),
			HoursEnd:        resp.Facility.HoursEnd.String(),
		},
		Slots: slots,
	}
}

// ToUseCaseRequest создает запрос use case из параметров пути и query
func ToUseCaseRequest(facilityID int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		FacilityID: facilityID,
		Date:       date,
	}, nil
}
