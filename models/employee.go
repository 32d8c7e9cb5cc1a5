package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Employee owns its work days; deleting an employee with recorded work days is refused.
type Employee struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Email            string    `gorm:"uniqueIndex;not null;size:100" json:"email"`
	FirstName        string    `gorm:"not null;size:30" json:"first_name"`
	LastName         string    `gorm:"not null;size:50" json:"last_name"`
	PasswordHash     string    `gorm:"not null" json:"-"`
	Role             Role      `gorm:"not null;size:20" json:"role"`
	Active           bool      `gorm:"default:true" json:"active"`
	HolidayAllowance int       `gorm:"not null;default:0" json:"holiday_allowance"`
	WorkDays         []WorkDay `gorm:"foreignKey:EmployeeID;constraint:OnDelete:RESTRICT" json:"work_days,omitempty"`
}

func (e *Employee) DisplayName() string {
	if e.FirstName != "" || e.LastName != "" {
		return e.FirstName + " " + e.LastName
	}
	return e.Email
}

func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

func (e *Employee) IsManager() bool {
	return e.Role == RoleManager
}

func (e *Employee) CanManageWorkDayOf(employeeID uint) bool {
	if e.IsAdmin() {
		return true
	}
	return e.ID == employeeID
}

func (e *Employee) CanViewReports() bool {
	return e.IsAdmin() || e.IsManager()
}

func (e *Employee) CanExport() bool {
	return e.IsAdmin() || e.IsManager()
}
