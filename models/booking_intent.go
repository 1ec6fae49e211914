package models

import (
	"fmt"
	"time"
)

type BookingType string

const (
	BookingTimer BookingType = "timer" // main berdasarkan durasi
	BookingSet   BookingType = "set"   // main sampai jam tertentu
	BookingFrame BookingType = "frame" // main per frame, open-ended
)

// BookingIntent adalah tagged union untuk niat booking customer. Field yang
// dipakai tergantung Type; selain itu diabaikan.
type BookingIntent struct {
	Type            BookingType `json:"type" binding:"required"`
	DurationMinutes int         `json:"duration_minutes,omitempty"`
	TargetTime      string      `json:"target_time,omitempty"` // wall clock "15:04"
	FrameCount      int         `json:"frame_count,omitempty"`
}

func (bi BookingIntent) Validate() error {
	switch bi.Type {
	case BookingTimer:
		if bi.DurationMinutes <= 0 {
			return fmt.Errorf("timer booking requires duration_minutes > 0")
		}
	case BookingSet:
		if _, err := time.Parse("15:04", bi.TargetTime); err != nil {
			return fmt.Errorf("set booking requires target_time in HH:MM format")
		}
	case BookingFrame:
		if bi.FrameCount <= 0 {
			return fmt.Errorf("frame booking requires frame_count > 0")
		}
	default:
		return fmt.Errorf("unknown booking type %q", bi.Type)
	}
	return nil
}

// ComputeEndTime menghitung end time dari intent. Nil berarti open-ended
// (meja dianggap terpakai tanpa batas sejak start). Target jam pada booking
// "set" yang sudah lewat digeser ke hari berikutnya.
func ComputeEndTime(bi BookingIntent, now time.Time) (*time.Time, error) {
	if err := bi.Validate(); err != nil {
		return nil, err
	}
	switch bi.Type {
	case BookingTimer:
		end := now.Add(time.Duration(bi.DurationMinutes) * time.Minute)
		return &end, nil
	case BookingSet:
		target, _ := time.Parse("15:04", bi.TargetTime)
		end := time.Date(now.Year(), now.Month(), now.Day(),
			target.Hour(), target.Minute(), 0, 0, now.Location())
		if !end.After(now) {
			end = end.Add(24 * time.Hour)
		}
		return &end, nil
	case BookingFrame:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown booking type %q", bi.Type)
}
