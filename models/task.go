package models

import (
	"time"
)

type WorkMode string

const (
	ModeHomeOffice  WorkMode = "HOME_OFFICE"
	ModeOnSite      WorkMode = "ON_SITE"
	ModeDelegation  WorkMode = "DELEGATION"
	ModeMaintenance WorkMode = "MAINTENANCE"
)

func (m WorkMode) Valid() bool {
	switch m {
	case ModeHomeOffice, ModeOnSite, ModeDelegation, ModeMaintenance:
		return true
	}
	return false
}

// Task is a segment of work inside a WORK-status work day.
type Task struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Start     time.Time  `gorm:"not null;index" json:"start"`
	Stop      *time.Time `json:"stop"`
	Location  string     `gorm:"not null;size:50" json:"location"`
	WorkMode  WorkMode   `gorm:"not null;size:20" json:"work_mode"`
	ProjectID uint       `gorm:"not null;index" json:"project_id"`
	Project   *Project   `gorm:"foreignKey:ProjectID;constraint:OnDelete:RESTRICT" json:"project,omitempty"`
	WorkDayID uint       `gorm:"not null;index" json:"work_day_id"`
	WorkDay   *WorkDay   `gorm:"foreignKey:WorkDayID" json:"-"`
}

func (t *Task) IsOpen() bool {
	return t.Stop == nil
}

// TaskFilter selects tasks. Zero values are ignored.
type TaskFilter struct {
	WorkDayID uint
	ProjectID uint
	StartFrom time.Time
	StartTo   time.Time
	Stopped   *bool
}

func (f TaskFilter) Match(t *Task) bool {
	if f.WorkDayID != 0 && t.WorkDayID != f.WorkDayID {
		return false
	}
	if f.ProjectID != 0 && t.ProjectID != f.ProjectID {
		return false
	}
	if !f.StartFrom.IsZero() && t.Start.Before(f.StartFrom) {
		return false
	}
	if !f.StartTo.IsZero() && !t.Start.Before(f.StartTo) {
		return false
	}
	if f.Stopped != nil && (t.Stop != nil) != *f.Stopped {
		return false
	}
	return true
}
