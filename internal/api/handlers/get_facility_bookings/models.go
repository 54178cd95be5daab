package get_facility_bookings

import (
	"net/http"

	"github.com/m04kA/SMC-ClubBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClubBooking/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров.
// from и to - RFC3339, to не включительно; status - опционально.
func ToServiceRequest(r *http.Request, facilityID, requesterID int64) (*models.GetFacilityBookingsRequest, error) {
	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		return nil, err
	}

	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		return nil, err
	}

	return &models.GetFacilityBookingsRequest{
		RequesterID: requesterID,
		FacilityID:  facilityID,
		From:        from,
		To:          to,
		Status:      handlers.QueryString(r, "status"),
	}, nil
}
