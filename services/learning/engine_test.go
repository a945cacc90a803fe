package learning

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	engine  *Engine
	student models.User
	course  courseModels.Course
	lessons []courseModels.Lesson
	clock   time.Time
}

func newFixture(t *testing.T, lessonCount int) *fixture {
	t.Helper()
	db, err := database.NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{db: db, clock: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)}
	f.engine = NewEngine(db).WithClock(func() time.Time { return f.clock })

	tutor := models.User{Username: "tutor", Email: "tutor@example.com", Password: "x", Role: models.RoleTutor}
	require.NoError(t, db.Create(&tutor).Error)
	f.student = models.User{Username: "student", Email: "student@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&f.student).Error)

	f.course = courseModels.Course{Title: "Go", InstructorID: tutor.ID, Status: courseModels.CourseStatusPublished}
	require.NoError(t, db.Create(&f.course).Error)

	for i := 1; i <= lessonCount; i++ {
		lesson := courseModels.Lesson{CourseID: f.course.ID, Order: i, Title: fmt.Sprintf("Lesson %d", i), IsPublished: true}
		require.NoError(t, db.Create(&lesson).Error)
		f.lessons = append(f.lessons, lesson)
	}
	return f
}

func (f *fixture) enroll(t *testing.T) {
	t.Helper()
	enrollment := courseModels.Enrollment{StudentID: f.student.ID, CourseID: f.course.ID, EnrolledAt: f.clock}
	require.NoError(t, f.db.Create(&enrollment).Error)
}

func (f *fixture) quiz(t *testing.T, lesson courseModels.Lesson, passing, maxAttempts int, questions ...courseModels.QuizQuestion) courseModels.Quiz {
	t.Helper()
	quiz := courseModels.Quiz{LessonID: lesson.ID, PassingScore: passing, MaxAttempts: maxAttempts, IsPublished: true}
	require.NoError(t, f.db.Create(&quiz).Error)
	for i := range questions {
		questions[i].QuizID = quiz.ID
		questions[i].Order = i + 1
		require.NoError(t, f.db.Create(&questions[i]).Error)
	}
	quiz.Questions = questions
	return quiz
}

func (f *fixture) enrollment(t *testing.T) courseModels.Enrollment {
	t.Helper()
	var e courseModels.Enrollment
	require.NoError(t, f.db.Where("student_id = ? AND course_id = ?", f.student.ID, f.course.ID).First(&e).Error)
	return e
}

func mc(text string, points int, correct string) courseModels.QuizQuestion {
	return courseModels.QuizQuestion{
		QuestionText:  text,
		QuestionType:  courseModels.QuestionMultipleChoice,
		Points:        points,
		Options:       courseModels.JSONList([]string{"A", "B", "C"}),
		CorrectAnswer: correct,
	}
}

func TestProgressAcrossFourLessons(t *testing.T) {
	f := newFixture(t, 4)
	f.enroll(t)
	ctx := context.Background()

	for _, lesson := range f.lessons[:3] {
		_, err := f.engine.MarkLessonComplete(ctx, f.student.ID, lesson.ID)
		require.NoError(t, err)
	}
	e := f.enrollment(t)
	assert.InDelta(t, 75.0, e.ProgressPercentage, 1e-9)
	assert.False(t, e.IsCompleted)
	assert.Nil(t, e.CompletedAt)
	assert.Equal(t, courseModels.EnrollmentStatusInProgress, e.Status)

	res, err := f.engine.MarkLessonComplete(ctx, f.student.ID, f.lessons[3].ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.Enrollment.ProgressPercentage)

	e = f.enrollment(t)
	assert.Equal(t, 100.0, e.ProgressPercentage)
	assert.True(t, e.IsCompleted)
	require.NotNil(t, e.CompletedAt)
	stamped := *e.CompletedAt
	assert.Equal(t, courseModels.EnrollmentStatusCompleted, e.Status)

	f.clock = f.clock.Add(time.Hour)
	_, err = f.engine.MarkLessonComplete(ctx, f.student.ID, f.lessons[3].ID)
	require.NoError(t, err)

	e = f.enrollment(t)
	assert.Equal(t, 100.0, e.ProgressPercentage)
	require.NotNil(t, e.CompletedAt)
	assert.True(t, stamped.Equal(*e.CompletedAt))
}

func TestProgressNeverDecreasesOnRepeatedCompletion(t *testing.T) {
	f := newFixture(t, 3)
	f.enroll(t)
	ctx := context.Background()

	last := 0.0
	for _, id := range []uint{f.lessons[0].ID, f.lessons[0].ID, f.lessons[1].ID, f.lessons[0].ID, f.lessons[2].ID} {
		res, err := f.engine.MarkLessonComplete(ctx, f.student.ID, id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Enrollment.ProgressPercentage, last)
		last = res.Enrollment.ProgressPercentage
	}
	assert.Equal(t, 100.0, last)

	var rows int64
	f.db.Model(&courseModels.LessonProgress{}).Where("student_id = ?", f.student.ID).Count(&rows)
	assert.Equal(t, int64(3), rows)
}

func TestUnpublishedLessonsDoNotCount(t *testing.T) {
	f := newFixture(t, 2)
	draft := courseModels.Lesson{CourseID: f.course.ID, Order: 3, Title: "Draft", IsPublished: false}
	require.NoError(t, f.db.Create(&draft).Error)
	f.enroll(t)

	_, err := f.engine.MarkLessonComplete(context.Background(), f.student.ID, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := f.engine.MarkLessonComplete(context.Background(), f.student.ID, f.lessons[0].ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, res.Enrollment.ProgressPercentage, 1e-9)
	assert.Equal(t, 2, res.Enrollment.TotalLessons)
}

func TestMarkLessonCompleteRequiresEnrollment(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.engine.MarkLessonComplete(context.Background(), f.student.ID, f.lessons[0].ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	var rows int64
	f.db.Model(&courseModels.LessonProgress{}).Count(&rows)
	assert.Zero(t, rows)
}

func TestSubmitAttemptScoresAndFails(t *testing.T) {
	f := newFixture(t, 1)
	f.enroll(t)
	quiz := f.quiz(t, f.lessons[0], 50, 3, mc("q1", 1, "A"), mc("q2", 2, "B"))

	res, err := f.engine.SubmitAttempt(context.Background(), f.student.ID, quiz.ID, []Answer{
		{QuestionID: quiz.Questions[0].ID, AnswerText: "A"},
		{QuestionID: quiz.Questions[1].ID, AnswerText: "C"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.EarnedPoints)
	assert.Equal(t, 3, res.TotalPoints)
	assert.InDelta(t, 33.333333, res.Score, 1e-4)
	assert.False(t, res.IsPassed)
	assert.Equal(t, 1, res.CorrectAnswers)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 1, res.Attempt.AttemptNumber)
	assert.Equal(t, 2, res.AttemptsRemaining)

	var answers []courseModels.QuizAnswer
	require.NoError(t, f.db.Where("attempt_id = ?", res.Attempt.ID).Order("question_id").Find(&answers).Error)
	require.Len(t, answers, 2)
	assert.True(t, answers[0].IsCorrect)
	assert.Equal(t, 1, answers[0].PointsEarned)
	assert.False(t, answers[1].IsCorrect)
	assert.Equal(t, 0, answers[1].PointsEarned)

	var progress courseModels.LessonProgress
	require.NoError(t, f.db.Where("student_id = ? AND lesson_id = ?", f.student.ID, f.lessons[0].ID).First(&progress).Error)
	assert.True(t, progress.QuizCompleted)
	assert.NotNil(t, progress.QuizCompletedAt)
	assert.False(t, progress.IsCompleted)
}

func TestSubmitAttemptNumbersAndLimit(t *testing.T) {
	f := newFixture(t, 1)
	f.enroll(t)
	quiz := f.quiz(t, f.lessons[0], 70, 2, mc("q1", 1, "A"))
	answers := []Answer{{QuestionID: quiz.Questions[0].ID, AnswerText: "A"}}

	for n := 1; n <= 2; n++ {
		res, err := f.engine.SubmitAttempt(context.Background(), f.student.ID, quiz.ID, answers)
		require.NoError(t, err)
		assert.Equal(t, n, res.Attempt.AttemptNumber)
		assert.True(t, res.IsPassed)
	}

	_, err := f.engine.SubmitAttempt(context.Background(), f.student.ID, quiz.ID, answers)
	assert.ErrorIs(t, err, ErrAttemptLimitReached)

	attempts, err := f.engine.Attempts(context.Background(), f.student.ID, quiz.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, 2, attempts[0].AttemptNumber)
	assert.Len(t, attempts[0].Answers, 1)
}

func TestSubmitAttemptPreconditions(t *testing.T) {
	f := newFixture(t, 1)
	quiz := f.quiz(t, f.lessons[0], 70, 3, mc("q1", 1, "A"))
	ctx := context.Background()

	_, err := f.engine.SubmitAttempt(ctx, f.student.ID, quiz.ID+100, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.engine.SubmitAttempt(ctx, f.student.ID, quiz.ID, nil)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	f.enroll(t)
	require.NoError(t, f.db.Model(&courseModels.Quiz{}).Where("id = ?", quiz.ID).Update("is_published", false).Error)
	_, err = f.engine.SubmitAttempt(ctx, f.student.ID, quiz.ID, nil)
	assert.ErrorIs(t, err, ErrNotAvailable)

	require.NoError(t, f.db.Model(&courseModels.Quiz{}).Where("id = ?", quiz.ID).Update("is_published", true).Error)
	_, err = f.engine.SubmitAttempt(ctx, f.student.ID, quiz.ID, []Answer{{QuestionID: 999, AnswerText: "A"}})
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	var attempts int64
	f.db.Model(&courseModels.QuizAttempt{}).Count(&attempts)
	assert.Zero(t, attempts)
}

func TestEmptySubmissionEarnsZero(t *testing.T) {
	f := newFixture(t, 1)
	f.enroll(t)
	quiz := f.quiz(t, f.lessons[0], 70, 3, mc("q1", 4, "A"))

	res, err := f.engine.SubmitAttempt(context.Background(), f.student.ID, quiz.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 4, res.TotalPoints)
	assert.False(t, res.IsPassed)
}

func TestCourseProgressReport(t *testing.T) {
	f := newFixture(t, 2)
	f.enroll(t)
	ctx := context.Background()

	_, err := f.engine.MarkLessonComplete(ctx, f.student.ID, f.lessons[1].ID)
	require.NoError(t, err)

	report, err := f.engine.CourseProgress(ctx, f.student.ID, f.course.ID)
	require.NoError(t, err)
	require.Len(t, report.Lessons, 2)
	assert.False(t, report.Lessons[0].IsCompleted)
	assert.True(t, report.Lessons[1].IsCompleted)
	assert.InDelta(t, 50.0, report.Enrollment.ProgressPercentage, 1e-9)

	_, err = f.engine.CourseProgress(ctx, f.student.ID+50, f.course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestApplyProgressWithoutPublishedLessons(t *testing.T) {
	var e courseModels.Enrollment
	ApplyProgress(&e, 0, 0, time.Now())
	assert.Equal(t, 0.0, e.ProgressPercentage)
	assert.False(t, e.IsCompleted)
	assert.Equal(t, courseModels.EnrollmentStatusEnrolled, e.Status)
}

func TestConcurrentLessonCompletionsReachFullProgress(t *testing.T) {
	f := newFixture(t, 5)
	f.enroll(t)

	var wg sync.WaitGroup
	errs := make(chan error, len(f.lessons))
	for _, lesson := range f.lessons {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := f.engine.MarkLessonComplete(context.Background(), f.student.ID, id)
			errs <- err
		}(lesson.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	e := f.enrollment(t)
	assert.Equal(t, 100.0, e.ProgressPercentage)
	assert.Equal(t, 5, e.CompletedLessons)
	assert.True(t, e.IsCompleted)
	assert.NotNil(t, e.CompletedAt)
	assert.Equal(t, courseModels.EnrollmentStatusCompleted, e.Status)
}

func TestConcurrentSubmissionsRespectAttemptLimit(t *testing.T) {
	f := newFixture(t, 1)
	f.enroll(t)
	quiz := f.quiz(t, f.lessons[0], 50, 3, mc("q1", 1, "A"))
	answers := []Answer{{QuestionID: quiz.Questions[0].ID, AnswerText: "A"}}

	const submissions = 7
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
		limited int
	)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.engine.SubmitAttempt(context.Background(), f.student.ID, quiz.ID, answers)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				numbers = append(numbers, res.Attempt.AttemptNumber)
			case assert.ErrorIs(t, err, ErrAttemptLimitReached):
				limited++
			}
		}()
	}
	wg.Wait()

	sort.Ints(numbers)
	assert.Equal(t, []int{1, 2, 3}, numbers)
	assert.Equal(t, submissions-3, limited)

	var stored int64
	f.db.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&stored)
	assert.Equal(t, int64(3), stored)
}

func TestCollidingAttemptNumberReportsConflict(t *testing.T) {
	f := newFixture(t, 1)
	f.enroll(t)
	quiz := f.quiz(t, f.lessons[0], 50, 3, mc("q1", 1, "A"))

	// a row holding number 2 while only one attempt exists makes the next insert collide
	stray := courseModels.QuizAttempt{StudentID: f.student.ID, QuizID: quiz.ID, AttemptNumber: 2, StartedAt: f.clock}
	require.NoError(t, f.db.Create(&stray).Error)

	_, err := f.engine.SubmitAttempt(context.Background(), f.student.ID, quiz.ID, []Answer{
		{QuestionID: quiz.Questions[0].ID, AnswerText: "A"},
	})
	assert.ErrorIs(t, err, ErrAttemptConflict)

	var attempts, answers, progress int64
	f.db.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&attempts)
	f.db.Model(&courseModels.QuizAnswer{}).Count(&answers)
	f.db.Model(&courseModels.LessonProgress{}).Count(&progress)
	assert.Equal(t, int64(1), attempts)
	assert.Zero(t, answers)
	assert.Zero(t, progress)
}
