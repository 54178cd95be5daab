package bookings

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-ClubBooking/internal/domain"
)

// fieldRule правило обновления одного поля бронирования через API
type fieldRule struct {
	column         string                                 // Колонка в bookings
	privilegedOnly bool                                   // Только персонал и администраторы
	parse          func(raw json.RawMessage) (any, error) // Разбор и валидация значения
}

// updatableFields поля, которые можно менять после создания.
// Интервал, объект, владелец и статус здесь не меняются.
var updatableFields = map[string]fieldRule{
	"notes":     {column: "notes", parse: parseNotes},
	"totalCost": {column: "total_cost", privilegedOnly: true, parse: parseTotalCost},
}

func parseNotes(raw json.RawMessage) (any, error) {
	var notes *string
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, errors.New("notes must be a string or null")
	}
	if notes != nil && utf8.RuneCountInString(*notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("notes must be at most %d characters", domain.MaxNotesLength)
	}
	return notes, nil
}

func parseTotalCost(raw json.RawMessage) (any, error) {
	var cost float64
	if err := json.Unmarshal(raw, &cost); err != nil {
		return nil, errors.New("totalCost must be a number")
	}
	if cost < 0 {
		return nil, errors.New("totalCost must not be negative")
	}
	return cost, nil
}

// resolveFields превращает поля запроса в колонки по таблице updatableFields
func resolveFields(fields map[string]json.RawMessage, role domain.UserRole) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	columns := make(map[string]any, len(fields))
	for name, raw := range fields {
		rule, ok := updatableFields[name]
		if !ok {
			return nil, fmt.Errorf("%w: field %q cannot be updated", ErrInvalidInput, name)
		}
		if rule.privilegedOnly && !role.IsPrivileged() {
			return nil, fmt.Errorf("%w: field %q requires staff role", ErrAccessDenied, name)
		}
		value, err := rule.parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		columns[rule.column] = value
	}

	return columns, nil
}
