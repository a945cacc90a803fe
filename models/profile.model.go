package models

import (
	"time"

	"gorm.io/gorm"
)

// StudentProfile is created alongside every student account
type StudentProfile struct {
	gorm.Model
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	StudentID        string    `gorm:"size:20;uniqueIndex;not null" json:"student_id"` // STU000001
	EnrollmentDate   time.Time `json:"enrollment_date"`
	CurrentLevel     string    `gorm:"size:50" json:"current_level"`
	GPA              *float64  `json:"gpa"`
	EmergencyContact string    `gorm:"size:100" json:"emergency_contact"`
	EmergencyPhone   string    `gorm:"size:15" json:"emergency_phone"`
}

type TutorProfile struct {
	gorm.Model
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	EmployeeID     string    `gorm:"size:20;uniqueIndex;not null" json:"employee_id"` // TUT000001
	HireDate       time.Time `json:"hire_date"`
	Department     string    `gorm:"size:100" json:"department"`
	Specialization string    `gorm:"size:200" json:"specialization"`
	Bio            string    `gorm:"type:text" json:"bio"`
	HourlyRate     *float64  `json:"hourly_rate"`
}

type AdminProfile struct {
	gorm.Model
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	EmployeeID       string    `gorm:"size:20;uniqueIndex;not null" json:"employee_id"` // ADM000001
	HireDate         time.Time `json:"hire_date"`
	Department       string    `gorm:"size:100" json:"department"`
	Position         string    `gorm:"size:100" json:"position"`
	PermissionsLevel string    `gorm:"size:50;default:'standard'" json:"permissions_level"`
}
