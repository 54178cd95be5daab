package create_booking

import (
	"time"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID     int64     // ID пользователя
	FacilityID int64     // ID объекта
	StartTime  time.Time // Начало интервала (с часовым поясом)
	EndTime    time.Time // Конец интервала, не включительно
	Notes      *string   // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64     // ID созданного бронирования
	UserID     int64     // ID пользователя
	FacilityID int64     // ID объекта
	StartTime  time.Time // Начало
	EndTime    time.Time // Конец
	Status     string    // Статус бронирования
	Notes      *string   // Заметки
	TotalCost  float64   // Стоимость

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
