package domain

import "time"

// Slot вычисленный кандидат для бронирования. Никогда не персистится.
type Slot struct {
	Start time.Time
	End   time.Time
	Label string // отображаемое локальное время начала, например "10:00"
}

// DurationMinutes returns the slot length in minutes
func (s Slot) DurationMinutes() int {
	return int(s.End.Sub(s.Start).Minutes())
}
