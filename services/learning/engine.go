// Package learning grades quiz submissions and keeps enrollment progress in step
// with lesson completions.
package learning

import (
	"context"
	"errors"
	"log"
	"time"

	courseModels "lms/models/course"
	"lms/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Engine struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// WithClock replaces the time source, used by tests
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

type AttemptResult struct {
	Attempt           courseModels.QuizAttempt `json:"attempt"`
	Score             float64                  `json:"score"`
	IsPassed          bool                     `json:"is_passed"`
	CorrectAnswers    int                      `json:"correct_answers"`
	TotalQuestions    int                      `json:"total_questions"`
	EarnedPoints      int                      `json:"earned_points"`
	TotalPoints       int                      `json:"total_points"`
	PassingScore      int                      `json:"passing_score"`
	AttemptsRemaining int                      `json:"attempts_remaining"`
}

type ProgressResult struct {
	Enrollment     courseModels.Enrollment     `json:"enrollment"`
	LessonProgress courseModels.LessonProgress `json:"lesson_progress"`
}

// lockEnrollment loads the (student, course) enrollment under a row lock.
// Every write that feeds progress goes through it, so completions for the same
// enrollment are applied one at a time.
func lockEnrollment(tx *gorm.DB, studentID, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	return &enrollment, nil
}

func findProgress(tx *gorm.DB, studentID uint, lesson courseModels.Lesson) (courseModels.LessonProgress, bool, error) {
	var progress courseModels.LessonProgress
	err := tx.Where("student_id = ? AND lesson_id = ?", studentID, lesson.ID).First(&progress).Error
	if err == nil {
		return progress, true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return courseModels.LessonProgress{StudentID: studentID, LessonID: lesson.ID, CourseID: lesson.CourseID}, false, nil
	}
	return progress, false, err
}

// SubmitAttempt grades answers for quizID and records the attempt, its answers
// and the quiz completion on the lesson progress row in one transaction.
func (e *Engine) SubmitAttempt(ctx context.Context, studentID, quizID uint, answers []Answer) (*AttemptResult, error) {
	var result *AttemptResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz courseModels.Quiz
		if err := tx.Preload("Lesson").
			Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("question_order ASC") }).
			First(&quiz, quizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !quiz.IsPublished || quiz.Lesson == nil {
			return ErrNotAvailable
		}

		if _, err := lockEnrollment(tx, studentID, quiz.Lesson.CourseID); err != nil {
			return err
		}

		var prior int64
		if err := tx.Model(&courseModels.QuizAttempt{}).
			Where("student_id = ? AND quiz_id = ?", studentID, quiz.ID).
			Count(&prior).Error; err != nil {
			return err
		}
		if int(prior) >= quiz.MaxAttempts {
			return ErrAttemptLimitReached
		}

		graded, err := Grade(quiz.Questions, answers)
		if err != nil {
			return err
		}

		now := e.now()
		attempt := courseModels.QuizAttempt{
			StudentID:      studentID,
			QuizID:         quiz.ID,
			AttemptNumber:  int(prior) + 1,
			Score:          graded.Score,
			TotalQuestions: len(quiz.Questions),
			CorrectAnswers: graded.CorrectAnswers,
			EarnedPoints:   graded.EarnedPoints,
			TotalPoints:    graded.TotalPoints,
			StartedAt:      now,
			CompletedAt:    &now,
			IsPassed:       graded.Score >= float64(quiz.PassingScore),
		}
		if err := tx.Create(&attempt).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return ErrAttemptConflict
			}
			return err
		}

		if len(graded.Answers) > 0 {
			rows := make([]courseModels.QuizAnswer, 0, len(graded.Answers))
			for _, a := range graded.Answers {
				rows = append(rows, courseModels.QuizAnswer{
					AttemptID:    attempt.ID,
					QuestionID:   a.QuestionID,
					AnswerText:   a.AnswerText,
					IsCorrect:    a.IsCorrect,
					PointsEarned: a.PointsEarned,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			attempt.Answers = rows
		}

		progress, exists, err := findProgress(tx, studentID, *quiz.Lesson)
		if err != nil {
			return err
		}
		progress.QuizCompleted = true
		if progress.QuizCompletedAt == nil {
			progress.QuizCompletedAt = &now
		}
		if exists {
			err = tx.Model(&progress).Select("quiz_completed", "quiz_completed_at").Updates(&progress).Error
		} else {
			err = tx.Create(&progress).Error
		}
		if err != nil {
			return err
		}

		result = &AttemptResult{
			Attempt:           attempt,
			Score:             attempt.Score,
			IsPassed:          attempt.IsPassed,
			CorrectAnswers:    attempt.CorrectAnswers,
			TotalQuestions:    attempt.TotalQuestions,
			EarnedPoints:      attempt.EarnedPoints,
			TotalPoints:       attempt.TotalPoints,
			PassingScore:      quiz.PassingScore,
			AttemptsRemaining: quiz.MaxAttempts - attempt.AttemptNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Quiz] student %d attempt %d on quiz %d scored %.2f", studentID, result.Attempt.AttemptNumber, quizID, result.Score)
	return result, nil
}

// ApplyProgress recomputes the derived progress fields of an enrollment.
// completed_at is stamped the first time the course reaches 100 and kept afterwards.
func ApplyProgress(enrollment *courseModels.Enrollment, completed, published int64, now time.Time) {
	var pct float64
	if published > 0 {
		if completed >= published {
			pct = 100
		} else {
			pct = float64(completed) / float64(published) * 100
		}
	}

	enrollment.ProgressPercentage = pct
	enrollment.CompletedLessons = int(completed)
	enrollment.TotalLessons = int(published)
	enrollment.IsCompleted = pct == 100
	if enrollment.IsCompleted && enrollment.CompletedAt == nil {
		enrollment.CompletedAt = &now
	}

	switch {
	case enrollment.IsCompleted:
		enrollment.Status = courseModels.EnrollmentStatusCompleted
	case pct > 0:
		enrollment.Status = courseModels.EnrollmentStatusInProgress
	default:
		enrollment.Status = courseModels.EnrollmentStatusEnrolled
	}
}

// MarkLessonComplete records the lesson as done and recomputes course progress
// while holding the enrollment lock.
func (e *Engine) MarkLessonComplete(ctx context.Context, studentID, lessonID uint) (*ProgressResult, error) {
	var result *ProgressResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lesson courseModels.Lesson
		if err := tx.Where("id = ? AND is_published = ?", lessonID, true).First(&lesson).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		enrollment, err := lockEnrollment(tx, studentID, lesson.CourseID)
		if err != nil {
			return err
		}

		now := e.now()
		progress, exists, err := findProgress(tx, studentID, lesson)
		if err != nil {
			return err
		}
		if !progress.IsCompleted {
			progress.IsCompleted = true
			progress.CompletedAt = &now
			if exists {
				err = tx.Model(&progress).Select("is_completed", "completed_at").Updates(&progress).Error
			} else {
				err = tx.Create(&progress).Error
			}
			if err != nil {
				return err
			}
		}

		var published, completed int64
		if err := tx.Model(&courseModels.Lesson{}).
			Where("course_id = ? AND is_published = ?", lesson.CourseID, true).
			Count(&published).Error; err != nil {
			return err
		}
		if err := tx.Model(&courseModels.LessonProgress{}).
			Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
			Where("lesson_progresses.student_id = ? AND lesson_progresses.is_completed = ?", studentID, true).
			Where("lessons.course_id = ? AND lessons.is_published = ? AND lessons.deleted_at IS NULL", lesson.CourseID, true).
			Distinct("lesson_progresses.lesson_id").
			Count(&completed).Error; err != nil {
			return err
		}

		ApplyProgress(enrollment, completed, published, now)
		if err := tx.Model(enrollment).
			Select("progress_percentage", "completed_lessons", "total_lessons", "is_completed", "completed_at", "status").
			Updates(enrollment).Error; err != nil {
			return err
		}

		result = &ProgressResult{Enrollment: *enrollment, LessonProgress: progress}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type LessonStatus struct {
	LessonID        uint       `json:"lesson_id"`
	Title           string     `json:"title"`
	Order           int        `json:"order"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at"`
	QuizCompleted   bool       `json:"quiz_completed"`
	QuizCompletedAt *time.Time `json:"quiz_completed_at"`
}

type CourseProgressReport struct {
	Enrollment courseModels.Enrollment `json:"enrollment"`
	Lessons    []LessonStatus          `json:"lessons"`
}

// CourseProgress lists every published lesson of the course with the student's status on it
func (e *Engine) CourseProgress(ctx context.Context, studentID, courseID uint) (*CourseProgressReport, error) {
	db := e.db.WithContext(ctx)

	var enrollment courseModels.Enrollment
	if err := db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_published = ?", courseID, true).
		Order("lesson_order ASC").Find(&lessons).Error; err != nil {
		return nil, err
	}

	var rows []courseModels.LessonProgress
	if err := db.Where("student_id = ? AND course_id = ?", studentID, courseID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byLesson := make(map[uint]courseModels.LessonProgress, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r
	}

	report := &CourseProgressReport{Enrollment: enrollment, Lessons: make([]LessonStatus, 0, len(lessons))}
	for _, l := range lessons {
		p := byLesson[l.ID]
		report.Lessons = append(report.Lessons, LessonStatus{
			LessonID:        l.ID,
			Title:           l.Title,
			Order:           l.Order,
			IsCompleted:     p.IsCompleted,
			CompletedAt:     p.CompletedAt,
			QuizCompleted:   p.QuizCompleted,
			QuizCompletedAt: p.QuizCompletedAt,
		})
	}
	return report, nil
}

// Attempts lists a student's attempts on a quiz, newest first
func (e *Engine) Attempts(ctx context.Context, studentID, quizID uint) ([]courseModels.QuizAttempt, error) {
	var attempts []courseModels.QuizAttempt
	err := e.db.WithContext(ctx).
		Preload("Answers").
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempt_number DESC").
		Find(&attempts).Error
	return attempts, err
}
