package models

import (
	"time"
)

// OvertimeParameters configures the overtime rule. The most recently created
// record is the one in force. OvertimeDay is an ISO weekday (1=Monday..7=Sunday)
// on which every worked hour counts as overtime.
type OvertimeParameters struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	OvertimeAfter int       `gorm:"not null" json:"overtime_after"`
	OvertimeDay   int       `gorm:"not null" json:"overtime_day"`
}

// IsOvertimeDay reports whether t falls on the configured weekday.
func (p OvertimeParameters) IsOvertimeDay(t time.Time) bool {
	return ISOWeekday(t) == p.OvertimeDay
}

// ISOWeekday maps time.Weekday onto 1=Monday..7=Sunday.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
