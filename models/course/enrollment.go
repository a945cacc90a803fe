package course

import (
	"time"

	"lms/models"

	"gorm.io/gorm"
)

const (
	EnrollmentStatusEnrolled   = "ENROLLED"
	EnrollmentStatusInProgress = "IN_PROGRESS"
	EnrollmentStatusCompleted  = "COMPLETED"
)

// Enrollment tracks a student's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	StudentID          uint         `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID           uint         `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	Student            *models.User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course             *Course      `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Status             string       `json:"status" gorm:"size:20;default:'ENROLLED'"`
	ProgressPercentage float64      `json:"progress_percentage" gorm:"default:0"` // 0-100
	CompletedLessons   int          `json:"completed_lessons" gorm:"default:0"`
	TotalLessons       int          `json:"total_lessons" gorm:"default:0"`
	IsCompleted        bool         `json:"is_completed" gorm:"default:false"`
	EnrolledAt         time.Time    `json:"enrolled_at"`
	CompletedAt        *time.Time   `json:"completed_at"`
}

// LessonProgress is the per-student, per-lesson completion record
type LessonProgress struct {
	gorm.Model
	StudentID        uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_progress_student_lesson"`
	LessonID         uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_progress_student_lesson"`
	CourseID         uint       `json:"course_id" gorm:"index;not null"`
	IsCompleted      bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt      *time.Time `json:"completed_at"`
	TimeSpentMinutes int        `json:"time_spent_minutes" gorm:"default:0"`
	QuizCompleted    bool       `json:"quiz_completed" gorm:"default:false"`
	QuizCompletedAt  *time.Time `json:"quiz_completed_at"`
}
