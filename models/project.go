package models

import (
	"time"
)

type Project struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Name          string    `gorm:"not null;size:100" json:"name"`
	ClientCompany string    `gorm:"not null;size:50" json:"client_company"`
	Location      string    `gorm:"not null;size:50" json:"location"`
	Finished      bool      `gorm:"default:false" json:"finished"`
}
