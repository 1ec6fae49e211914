package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowOverlaps(t *testing.T) {
	base := time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local)

	w1 := WindowUntil(base, 60)                        // 14:00 - 15:00
	w2 := WindowUntil(base.Add(30*time.Minute), 60)    // 14:30 - 15:30
	w3 := WindowUntil(base.Add(60*time.Minute), 30)    // 15:00 - 15:30
	w4 := WindowUntil(base.Add(-60*time.Minute), 30)   // 13:00 - 13:30
	open := Window{Start: base.Add(30 * time.Minute)}  // 14:30 - open
	early := Window{Start: base.Add(-2 * time.Hour)}   // 12:00 - open

	assert.True(t, w1.Overlaps(w2))
	assert.True(t, w2.Overlaps(w1))

	// Interval half-open: akhir yang persis menyentuh awal bukan overlap
	assert.False(t, w1.Overlaps(w3))
	assert.False(t, w3.Overlaps(w1))

	assert.False(t, w1.Overlaps(w4))

	// Open-ended bentrok dengan apa pun yang mulai setelahnya
	assert.True(t, open.Overlaps(w2))
	assert.True(t, w2.Overlaps(open))
	assert.True(t, early.Overlaps(w1))
	assert.True(t, early.Overlaps(open))

	// Open-ended tidak bentrok dengan window yang sudah selesai sebelum mulai
	assert.False(t, open.Overlaps(w4))
}

func TestWindowDescribe(t *testing.T) {
	base := time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local)

	assert.Equal(t, "14:00 - 15:30", WindowUntil(base, 90).Describe())
	assert.Equal(t, "14:00 - open", Window{Start: base}.Describe())
}
