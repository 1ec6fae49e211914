package services

import (
	"fmt"
	"time"
)

// Window adalah interval [Start, End). End nil berarti open-ended: meja
// dianggap terpakai tanpa batas sejak Start, jadi selalu bentrok dengan
// window apa pun yang mulai setelahnya.
type Window struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Overlaps menguji start1 < end2 && end1 > start2, dengan end yang absen
// diperlakukan sebagai +infinity.
func (w Window) Overlaps(other Window) bool {
	if other.End != nil && !w.Start.Before(*other.End) {
		return false
	}
	if w.End != nil && !w.End.After(other.Start) {
		return false
	}
	return true
}

// Describe dipakai di pesan konflik ("14:00 - 15:30" atau "14:00 - selesai").
func (w Window) Describe() string {
	if w.End == nil {
		return fmt.Sprintf("%s - open", w.Start.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", w.Start.Format("15:04"), w.End.Format("15:04"))
}

// WindowUntil membangun window berdurasi tetap dari start.
func WindowUntil(start time.Time, durationMinutes int) Window {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return Window{Start: start, End: &end}
}
