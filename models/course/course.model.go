package course

import (
	"time"

	"lms/models"

	"gorm.io/gorm"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Course represents a learning course owned by a tutor
type Course struct {
	gorm.Model
	Title            string       `json:"title" gorm:"size:200;not null"`
	Description      string       `json:"description" gorm:"type:text"`
	ShortDescription string       `json:"short_description" gorm:"size:300"`
	InstructorID     uint         `json:"instructor_id" gorm:"index;not null"`
	Instructor       *models.User `json:"instructor,omitempty" gorm:"foreignKey:InstructorID"`
	CategoryID       *uint        `json:"category_id" gorm:"index"`
	Category         *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Price            float64      `json:"price" gorm:"default:0"`
	IsFree           bool         `json:"is_free"`
	Difficulty       string       `json:"difficulty" gorm:"size:20;default:'beginner'"` // beginner, intermediate, advanced
	DurationHours    int          `json:"duration_hours" gorm:"default:0"`
	Language         string       `json:"language" gorm:"size:50;default:'English'"`
	ThumbnailURL     string       `json:"thumbnail_url"`
	PreviewVideoURL  string       `json:"preview_video_url"`
	Status           string       `json:"status" gorm:"size:20;default:'draft';index"` // draft, published, archived
	IsFeatured       bool         `json:"is_featured" gorm:"default:false"`
	PublishedAt      *time.Time   `json:"published_at"`
	TotalLessons     int          `json:"total_lessons" gorm:"default:0"`
	TotalStudents    int          `json:"total_students" gorm:"default:0"`
	AverageRating    float64      `json:"average_rating" gorm:"default:0"`
	TotalRatings     int          `json:"total_ratings" gorm:"default:0"`
	IsDeleted        bool         `json:"-" gorm:"default:false"`
}

// BeforeSave keeps IsFree consistent with Price
func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.IsFree = c.Price == 0
	return nil
}

func (c Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}

// RefreshLessonCount stores the number of published lessons on the course row
func RefreshLessonCount(tx *gorm.DB, courseID uint) (int, error) {
	var count int64
	if err := tx.Model(&Lesson{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&Course{}).Where("id = ?", courseID).
		UpdateColumn("total_lessons", count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
