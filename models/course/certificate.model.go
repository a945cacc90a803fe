package course

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion
type Certificate struct {
	gorm.Model
	StudentID     uint        `json:"student_id" gorm:"index;not null"`
	CourseID      uint        `json:"course_id" gorm:"index;not null"`
	EnrollmentID  uint        `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	Course        *Course     `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Enrollment    *Enrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	CertificateID string      `json:"certificate_id" gorm:"size:50;uniqueIndex;not null"`
	IssuedAt      time.Time   `json:"issued_at"`
}

func CertificateNumber(enrollmentID, studentID, courseID uint) string {
	return fmt.Sprintf("CERT-%d-%d-%d", enrollmentID, studentID, courseID)
}
