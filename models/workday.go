package models

import (
	"time"
)

type WorkDayStatus string

const (
	StatusWork      WorkDayStatus = "WORK"
	StatusHoliday   WorkDayStatus = "HOLIDAY"
	StatusSickLeave WorkDayStatus = "SICK_LEAVE"
	StatusChildCare WorkDayStatus = "CHILD_CARE"
)

func (s WorkDayStatus) Valid() bool {
	switch s {
	case StatusWork, StatusHoliday, StatusSickLeave, StatusChildCare:
		return true
	}
	return false
}

// IsAbsence reports whether the status is one of the absence kinds.
func (s WorkDayStatus) IsAbsence() bool {
	return s.Valid() && s != StatusWork
}

// WorkDay is one claimed day of an employee. Day holds the local calendar date of
// Start and backs the one-record-per-employee-per-day unique index.
type WorkDay struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	EmployeeID uint          `gorm:"not null;uniqueIndex:idx_work_days_employee_day" json:"employee_id"`
	Employee   *Employee     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Day        time.Time     `gorm:"not null;type:date;uniqueIndex:idx_work_days_employee_day" json:"day"`
	Start      time.Time     `gorm:"not null;index" json:"start"`
	Stop       *time.Time    `json:"stop"`
	Status     WorkDayStatus `gorm:"not null;size:20;default:WORK" json:"status"`
	Tasks      []Task        `gorm:"foreignKey:WorkDayID;constraint:OnDelete:RESTRICT" json:"tasks,omitempty"`
}

func (w *WorkDay) IsOpen() bool {
	return w.Stop == nil
}

// Duration is zero for an open work day.
func (w *WorkDay) Duration() time.Duration {
	if w.Stop == nil {
		return 0
	}
	return w.Stop.Sub(w.Start)
}

// WorkDayFilter selects work days. Zero values are ignored; StartFrom is inclusive
// and StartTo exclusive.
type WorkDayFilter struct {
	ID            uint
	EmployeeID    uint
	Status        WorkDayStatus
	ExcludeStatus WorkDayStatus
	StartFrom     time.Time
	StartTo       time.Time
	Stopped       *bool
}

func (f WorkDayFilter) Match(w *WorkDay) bool {
	if f.ID != 0 && w.ID != f.ID {
		return false
	}
	if f.EmployeeID != 0 && w.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Status != "" && w.Status != f.Status {
		return false
	}
	if f.ExcludeStatus != "" && w.Status == f.ExcludeStatus {
		return false
	}
	if !f.StartFrom.IsZero() && w.Start.Before(f.StartFrom) {
		return false
	}
	if !f.StartTo.IsZero() && !w.Start.Before(f.StartTo) {
		return false
	}
	if f.Stopped != nil && (w.Stop != nil) != *f.Stopped {
		return false
	}
	return true
}

// Bool returns a pointer to b, for the tri-state filter fields.
func Bool(b bool) *bool {
	return &b
}

// DayOf returns the calendar date of t, in t's own location, as a UTC midnight
// suitable for a date column.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
