package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/utils"
)

const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

const (
	ConflictActiveSession = "active_session"
	ConflictReservation   = "reservation"
	ConflictQueueSeated   = "queue_assignment"
	ConflictSystemError   = "system_error"
)

// OverrideMode menggantikan flag force/acknowledge yang dulu tersebar.
// Konflik severity error tidak pernah bisa di-override.
type OverrideMode int

const (
	OverrideNone OverrideMode = iota
	OverrideAcknowledgeWarnings
)

type Conflict struct {
	Kind     string     `json:"kind"`
	Severity string     `json:"severity"`
	RefID    uint       `json:"ref_id,omitempty"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
	Message  string     `json:"message"`
}

type Report struct {
	HasConflicts bool       `json:"has_conflicts"`
	Severity     string     `json:"severity,omitempty"`
	Conflicts    []Conflict `json:"conflicts,omitempty"`
}

// Blocks menjawab apakah report ini menghentikan booking pada mode override
// tertentu. Error selalu memblok; warning hanya lolos kalau caller sudah
// meng-acknowledge.
func (r Report) Blocks(mode OverrideMode) bool {
	if !r.HasConflicts {
		return false
	}
	if r.Severity == SeverityError {
		return true
	}
	return mode != OverrideAcknowledgeWarnings
}

// Summary adalah bentuk user-facing dari report, dipakai frontend untuk
// prompt "lanjutkan?" pada konflik level warning.
type Summary struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	CanProceed bool   `json:"can_proceed"`
	Severity   string `json:"severity,omitempty"`
	Question   string `json:"question,omitempty"`
}

// Exclusion mengeluarkan satu record dari pemeriksaan, mis. session yang
// sedang di-update atau reservation yang sedang dikonsumsi jadi session.
type Exclusion struct {
	SessionID     uint
	ReservationID uint
	QueueEntryID  uint
}

// ConflictResolver mengevaluasi apakah candidate window di satu meja bentrok
// dengan komitmen yang sudah ada. Murni evaluasi, tidak pernah menulis, dan
// tidak memegang koneksi sendiri: caller yang sedang dalam transaksi wajib
// mengoper tx-nya supaya pemeriksaan ikut lock check-then-act yang sama.
type ConflictResolver struct{}

func NewConflictResolver() *ConflictResolver {
	return &ConflictResolver{}
}

// CheckConflicts mengumpulkan session aktif, reservation pending/active, dan
// queue entry seated di meja tsb lalu menguji overlap terhadap candidate.
// Start di masa lalu di-clamp ke sekarang. Kegagalan store menghasilkan
// konflik system_error severity error -> fail closed, bukan report kosong.
func (cr *ConflictResolver) CheckConflicts(db *gorm.DB, scope models.Scope, tableID uint, candidate Window, exclude Exclusion) Report {
	now := time.Now()
	if candidate.Start.Before(now) {
		candidate.Start = now
	}

	var conflicts []Conflict

	var sessions []models.Session
	q := scope.Apply(db).Where("table_id = ? AND status = ?", tableID, models.SessionStatusActive)
	if exclude.SessionID != 0 {
		q = q.Where("id <> ?", exclude.SessionID)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return systemErrorReport(err)
	}
	for _, s := range sessions {
		w := sessionWindow(&s)
		if w.Overlaps(candidate) {
			conflicts = append(conflicts, Conflict{
				Kind:     ConflictActiveSession,
				Severity: SeverityError,
				RefID:    s.ID,
				Start:    &w.Start,
				End:      w.End,
				Message:  fmt.Sprintf("table has an active session (%s)", w.Describe()),
			})
		}
	}

	var reservations []models.Reservation
	q = scope.Apply(db).Where("table_id = ? AND status IN ?", tableID,
		[]string{models.ReservationStatusPending, models.ReservationStatusActive})
	if exclude.ReservationID != 0 {
		q = q.Where("id <> ?", exclude.ReservationID)
	}
	if err := q.Find(&reservations).Error; err != nil {
		return systemErrorReport(err)
	}
	for _, rv := range reservations {
		if rv.ToTime.IsZero() || rv.ToTime.Before(rv.FromTime) {
			// Record rusak: jangan pura-pura tidak ada konflik.
			return systemErrorReport(fmt.Errorf("reservation %d has a malformed window", rv.ID))
		}
		end := rv.ToTime
		w := Window{Start: rv.FromTime, End: &end}
		if w.Overlaps(candidate) {
			severity := SeverityWarning
			if rv.Status == models.ReservationStatusActive {
				severity = SeverityError
			}
			conflicts = append(conflicts, Conflict{
				Kind:     ConflictReservation,
				Severity: severity,
				RefID:    rv.ID,
				Start:    &w.Start,
				End:      w.End,
				Message:  fmt.Sprintf("table is reserved for %s (%s)", rv.CustomerName, w.Describe()),
			})
		}
	}

	var entries []models.QueueEntry
	q = scope.Apply(db).Where("seated_table_key = ? AND status = ?", tableID, models.QueueStatusSeated)
	if exclude.QueueEntryID != 0 {
		q = q.Where("id <> ?", exclude.QueueEntryID)
	}
	if err := q.Find(&entries).Error; err != nil {
		return systemErrorReport(err)
	}
	for _, e := range entries {
		// Marker "segera diduduki": tidak punya window, selalu bentrok.
		conflicts = append(conflicts, Conflict{
			Kind:     ConflictQueueSeated,
			Severity: SeverityWarning,
			RefID:    e.ID,
			Message:  fmt.Sprintf("queue entry %s has been assigned this table", e.Code),
		})
	}

	return buildReport(conflicts)
}

// SuggestAlternatives memindai maksimal enam kandidat window kelipatan 30
// menit mulai dari max(now, requestedStart) dan mengembalikan sampai tiga
// yang bebas konflik.
func (cr *ConflictResolver) SuggestAlternatives(db *gorm.DB, scope models.Scope, tableID uint, requestedStart time.Time, durationMinutes int) []Window {
	start := requestedStart
	if now := time.Now(); start.Before(now) {
		start = now
	}

	var free []Window
	for i := 0; i < 6 && len(free) < 3; i++ {
		cand := WindowUntil(start.Add(time.Duration(i*30)*time.Minute), durationMinutes)
		report := cr.CheckConflicts(db, scope, tableID, cand, Exclusion{})
		if !report.HasConflicts {
			free = append(free, cand)
		}
	}
	return free
}

// Summarize memetakan report ke bentuk yang siap dirender. Error tidak
// pernah bisa dilanjutkan; warning mendapat pertanyaan konfirmasi.
func (cr *ConflictResolver) Summarize(report Report) Summary {
	if !report.HasConflicts {
		return Summary{
			Title:      "Table available",
			Message:    "No conflicting bookings found for this table.",
			CanProceed: true,
		}
	}

	msg := ""
	for i, c := range report.Conflicts {
		if i > 0 {
			msg += "; "
		}
		msg += c.Message
	}

	if report.Severity == SeverityError {
		return Summary{
			Title:      "Table unavailable",
			Message:    msg,
			CanProceed: false,
			Severity:   SeverityError,
		}
	}
	return Summary{
		Title:      "Possible conflict",
		Message:    msg,
		CanProceed: true,
		Severity:   SeverityWarning,
		Question:   "Proceed anyway?",
	}
}

// sessionWindow menghitung window efektif session aktif: pakai EndTime kalau
// ada, kalau tidak start+duration, kalau tidak open-ended.
func sessionWindow(s *models.Session) Window {
	if s.EndTime != nil {
		return Window{Start: s.StartTime, End: s.EndTime}
	}
	if s.DurationMinutes != nil {
		return WindowUntil(s.StartTime, *s.DurationMinutes)
	}
	return Window{Start: s.StartTime}
}

func systemErrorReport(err error) Report {
	utils.ErrorLogger.Printf("conflict check failed, failing closed: %v", err)
	return Report{
		HasConflicts: true,
		Severity:     SeverityError,
		Conflicts: []Conflict{{
			Kind:     ConflictSystemError,
			Severity: SeverityError,
			Message:  "could not verify table availability, booking blocked",
		}},
	}
}

func buildReport(conflicts []Conflict) Report {
	if len(conflicts) == 0 {
		return Report{}
	}
	severity := SeverityWarning
	for _, c := range conflicts {
		if c.Severity == SeverityError {
			severity = SeverityError
			break
		}
	}
	return Report{HasConflicts: true, Severity: severity, Conflicts: conflicts}
}
