package domain

import "time"

// Slot candidate time window within a facility's operating hours
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}

// Interval возвращает интервал слота
func (s *Slot) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}
