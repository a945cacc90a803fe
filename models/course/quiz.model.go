package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
)

// Quiz belongs to exactly one lesson
type Quiz struct {
	gorm.Model
	LessonID         uint           `json:"lesson_id" gorm:"uniqueIndex;not null"`
	Lesson           *Lesson        `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
	Title            string         `json:"title" gorm:"size:200;default:'Quiz'"`
	Description      string         `json:"description" gorm:"type:text"`
	TimeLimitMinutes int            `json:"time_limit_minutes" gorm:"default:30"` // advisory only
	PassingScore     int            `json:"passing_score"`                        // percentage, 0 accepts any score
	MaxAttempts      int            `json:"max_attempts" gorm:"default:3"`
	IsPublished      bool           `json:"is_published" gorm:"default:false"`
	Questions        []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

type QuizQuestion struct {
	gorm.Model
	QuizID            uint           `json:"quiz_id" gorm:"not null;uniqueIndex:idx_question_quiz_order"`
	QuestionText      string         `json:"question_text" gorm:"type:text;not null"`
	QuestionType      string         `json:"question_type" gorm:"size:20;default:'multiple_choice'"`
	Order             int            `json:"order" gorm:"column:question_order;not null;uniqueIndex:idx_question_quiz_order"`
	Points            int            `json:"points" gorm:"default:1"`
	Options           datatypes.JSON `json:"options"`
	CorrectAnswer     string         `json:"correct_answer,omitempty" gorm:"size:500"`
	AcceptableAnswers datatypes.JSON `json:"acceptable_answers,omitempty"`
}

// QuizAttempt is one graded submission; attempt numbers start at 1 per (student, quiz)
type QuizAttempt struct {
	gorm.Model
	StudentID      uint         `json:"student_id" gorm:"not null;uniqueIndex:idx_attempt_student_quiz_number"`
	QuizID         uint         `json:"quiz_id" gorm:"not null;uniqueIndex:idx_attempt_student_quiz_number"`
	AttemptNumber  int          `json:"attempt_number" gorm:"not null;uniqueIndex:idx_attempt_student_quiz_number"`
	Score          float64      `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	CorrectAnswers int          `json:"correct_answers"`
	EarnedPoints   int          `json:"earned_points"`
	TotalPoints    int          `json:"total_points"`
	StartedAt      time.Time    `json:"started_at"`
	CompletedAt    *time.Time   `json:"completed_at"`
	IsPassed       bool         `json:"is_passed" gorm:"default:false"`
	Answers        []QuizAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

type QuizAnswer struct {
	gorm.Model
	AttemptID    uint   `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	QuestionID   uint   `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	AnswerText   string `json:"answer_text" gorm:"type:text"`
	IsCorrect    bool   `json:"is_correct" gorm:"default:false"`
	PointsEarned int    `json:"points_earned" gorm:"default:0"`
}
