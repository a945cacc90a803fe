package course

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson is one ordered unit of a course
type Lesson struct {
	gorm.Model
	CourseID        uint           `json:"course_id" gorm:"not null;uniqueIndex:idx_lesson_course_order"`
	Order           int            `json:"order" gorm:"column:lesson_order;not null;uniqueIndex:idx_lesson_course_order"`
	Title           string         `json:"title" gorm:"size:200;not null"`
	Description     string         `json:"description" gorm:"type:text"`
	Content         string         `json:"content" gorm:"type:text"`
	VideoURL        string         `json:"video_url"`
	LessonType      string         `json:"lesson_type" gorm:"size:20;default:'text'"` // video, text, mixed
	DurationMinutes int            `json:"duration_minutes" gorm:"default:0"`
	Resources       datatypes.JSON `json:"resources"`
	IsPublished     bool           `json:"is_published" gorm:"default:false"`
	Quiz            *Quiz          `json:"quiz,omitempty" gorm:"foreignKey:LessonID"`
}

// StringList decodes a JSON array column, returning nil for empty or malformed values
func StringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// JSONList encodes a string slice for a JSON array column
func JSONList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}
