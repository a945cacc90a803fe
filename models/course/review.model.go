package course

import (
	"lms/models"

	"gorm.io/gorm"
)

// CourseReview can only be left by a student who completed the course
type CourseReview struct {
	gorm.Model
	StudentID  uint         `json:"student_id" gorm:"not null;uniqueIndex:idx_review_student_course"`
	CourseID   uint         `json:"course_id" gorm:"not null;uniqueIndex:idx_review_student_course"`
	Student    *models.User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Rating     int          `json:"rating" gorm:"not null"` // 1-5
	ReviewText string       `json:"review_text" gorm:"type:text"`
}

// RefreshRating recomputes average_rating and total_ratings for a course
func RefreshRating(tx *gorm.DB, courseID uint) error {
	var agg struct {
		Avg   float64
		Total int64
	}
	if err := tx.Model(&CourseReview{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Where("course_id = ?", courseID).
		Scan(&agg).Error; err != nil {
		return err
	}
	return tx.Model(&Course{}).Where("id = ?", courseID).UpdateColumns(map[string]interface{}{
		"average_rating": agg.Avg,
		"total_ratings":  agg.Total,
	}).Error
}
