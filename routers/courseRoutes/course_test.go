package courseRoutes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"lms/config"
	controllers "lms/controllers/course"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/learning"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	app     *fiber.App
	db      *gorm.DB
	tutor   string
	student string
	other   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret", JWTTTL: time.Hour}

	db, err := database.NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.Database.Db = db

	e := &env{app: fiber.New(), db: db}
	SetupCourseRoutes(e.app, controllers.New(db, learning.NewEngine(db), nil))

	e.tutor = e.user(t, "tutor", models.RoleTutor)
	e.student = e.user(t, "student", models.RoleStudent)
	e.other = e.user(t, "other", models.RoleStudent)
	return e
}

func (e *env) user(t *testing.T, name, role string) string {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", Password: "x", Role: role, IsVerified: true}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := middleware.GenerateJWT(u.ID, name, role, u.Email)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *env) call(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	if out != nil && len(res.Data) > 0 {
		require.NoError(t, json.Unmarshal(res.Data, out), res.Message)
	}
	return resp.StatusCode
}

type idOnly struct {
	ID uint `json:"ID"`
}

// publishCourse creates a published course with n published lessons through the API
func (e *env) publishCourse(t *testing.T, n int) (uint, []uint) {
	t.Helper()
	var course idOnly
	status := e.call(t, "POST", "/api/courses", e.tutor, fiber.Map{
		"title":       "Go Basics",
		"description": "Learn the language",
		"status":      "published",
	}, &course)
	require.Equal(t, fiber.StatusCreated, status)

	lessons := make([]uint, 0, n)
	for i := 1; i <= n; i++ {
		var lesson idOnly
		status := e.call(t, "POST", fmt.Sprintf("/api/courses/%d/lessons", course.ID), e.tutor, fiber.Map{
			"title":        fmt.Sprintf("Lesson %d", i),
			"order":        i,
			"is_published": true,
		}, &lesson)
		require.Equal(t, fiber.StatusCreated, status)
		lessons = append(lessons, lesson.ID)
	}
	return course.ID, lessons
}

type savedQuiz struct {
	ID        uint `json:"ID"`
	Questions []struct {
		ID uint `json:"ID"`
	} `json:"questions"`
}

func (e *env) saveQuiz(t *testing.T, lessonID uint) savedQuiz {
	t.Helper()
	var quiz savedQuiz
	status := e.call(t, "POST", fmt.Sprintf("/api/lessons/%d/quiz", lessonID), e.tutor, fiber.Map{
		"passing_score": 50,
		"max_attempts":  2,
		"is_published":  true,
		"questions": []fiber.Map{
			{"question_text": "2 + 2", "question_type": "multiple_choice", "options": []string{"3", "4"}, "correct_answer": "4"},
			{"question_text": "Go has generics", "question_type": "true_false", "correct_answer": "true"},
		},
	}, &quiz)
	require.Equal(t, fiber.StatusCreated, status)
	require.Len(t, quiz.Questions, 2)
	return quiz
}

func TestQuizSubmissionFlow(t *testing.T) {
	e := newEnv(t)
	courseID, lessons := e.publishCourse(t, 2)
	quiz := e.saveQuiz(t, lessons[0])

	quizPath := fmt.Sprintf("/api/lessons/%d/quiz", lessons[0])
	assert.Equal(t, fiber.StatusForbidden, e.call(t, "GET", quizPath, e.student, nil, nil))

	require.Equal(t, fiber.StatusCreated, e.call(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), e.student, nil, nil))
	assert.Equal(t, fiber.StatusConflict, e.call(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), e.student, nil, nil))

	var view struct {
		Questions []map[string]interface{} `json:"questions"`
	}
	require.Equal(t, fiber.StatusOK, e.call(t, "GET", quizPath, e.student, nil, &view))
	require.Len(t, view.Questions, 2)
	for _, q := range view.Questions {
		assert.NotContains(t, q, "correct_answer")
	}

	submit := fmt.Sprintf("/api/quizzes/%d/submit", quiz.ID)
	answers := fiber.Map{"answers": []fiber.Map{
		{"question_id": quiz.Questions[0].ID, "answer_text": "4"},
		{"question_id": quiz.Questions[1].ID, "answer_text": "FALSE"},
	}}

	var result learning.AttemptResult
	require.Equal(t, fiber.StatusCreated, e.call(t, "POST", submit, e.student, answers, &result))
	assert.Equal(t, 50.0, result.Score)
	assert.True(t, result.IsPassed)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 1, result.AttemptsRemaining)
	assert.Equal(t, 1, result.Attempt.AttemptNumber)

	require.Equal(t, fiber.StatusCreated, e.call(t, "POST", submit, e.student, answers, &result))
	assert.Equal(t, 0, result.AttemptsRemaining)
	assert.Equal(t, fiber.StatusBadRequest, e.call(t, "POST", submit, e.student, answers, nil))

	var attempts []courseModels.QuizAttempt
	require.Equal(t, fiber.StatusOK, e.call(t, "GET", fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), e.student, nil, &attempts))
	assert.Len(t, attempts, 2)

	// questions are frozen once attempts exist
	status := e.call(t, "POST", quizPath, e.tutor, fiber.Map{
		"questions": []fiber.Map{{"question_text": "New", "question_type": "true_false", "correct_answer": "false"}},
	}, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	assert.Equal(t, fiber.StatusForbidden, e.call(t, "POST", submit, e.other, answers, nil))
}

func TestLessonCompletionDrivesProgress(t *testing.T) {
	e := newEnv(t)
	courseID, lessons := e.publishCourse(t, 2)

	complete := func(lessonID uint) learning.ProgressResult {
		var res learning.ProgressResult
		require.Equal(t, fiber.StatusOK, e.call(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), e.student, nil, &res))
		return res
	}

	assert.Equal(t, fiber.StatusForbidden, e.call(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessons[0]), e.student, nil, nil))
	require.Equal(t, fiber.StatusCreated, e.call(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), e.student, nil, nil))

	first := complete(lessons[0])
	assert.Equal(t, 50.0, first.Enrollment.ProgressPercentage)
	assert.False(t, first.Enrollment.IsCompleted)

	again := complete(lessons[0])
	assert.Equal(t, 50.0, again.Enrollment.ProgressPercentage)

	last := complete(lessons[1])
	assert.Equal(t, 100.0, last.Enrollment.ProgressPercentage)
	assert.True(t, last.Enrollment.IsCompleted)
	assert.NotNil(t, last.Enrollment.CompletedAt)

	assert.Equal(t, fiber.StatusOK, e.call(t, "GET", fmt.Sprintf("/api/courses/%d/progress", courseID), e.student, nil, nil))
}

func TestTutorCannotEditOthersCourse(t *testing.T) {
	e := newEnv(t)
	courseID, _ := e.publishCourse(t, 1)
	intruder := e.user(t, "intruder", models.RoleTutor)

	status := e.call(t, "PUT", fmt.Sprintf("/api/courses/%d", courseID), intruder, fiber.Map{"title": "Hijacked"}, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status = e.call(t, "POST", "/api/courses", e.student, fiber.Map{"title": "Nope", "description": "students cannot author"}, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestPaidCourseRequiresPayment(t *testing.T) {
	e := newEnv(t)
	var course idOnly
	require.Equal(t, fiber.StatusCreated, e.call(t, "POST", "/api/courses", e.tutor, fiber.Map{
		"title":       "Advanced Go",
		"description": "Concurrency in depth",
		"price":       4999,
		"status":      "published",
	}, &course))

	assert.Equal(t, fiber.StatusPaymentRequired, e.call(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", course.ID), e.student, nil, nil))
}

func TestOnlyStudentsSubmitQuizzesAndCompleteLessons(t *testing.T) {
	e := newEnv(t)
	courseID, lessons := e.publishCourse(t, 1)
	quiz := e.saveQuiz(t, lessons[0])

	// an enrollment row alone must not let a tutor through
	var tutor models.User
	require.NoError(t, e.db.Where("username = ?", "tutor").First(&tutor).Error)
	require.NoError(t, e.db.Create(&courseModels.Enrollment{StudentID: tutor.ID, CourseID: courseID, EnrolledAt: time.Now()}).Error)

	answers := fiber.Map{"answers": []fiber.Map{{"question_id": quiz.Questions[0].ID, "answer_text": "4"}}}
	assert.Equal(t, fiber.StatusForbidden, e.call(t, "POST", fmt.Sprintf("/api/quizzes/%d/submit", quiz.ID), e.tutor, answers, nil))
	assert.Equal(t, fiber.StatusForbidden, e.call(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessons[0]), e.tutor, nil, nil))

	var attempts, progress int64
	e.db.Model(&courseModels.QuizAttempt{}).Count(&attempts)
	e.db.Model(&courseModels.LessonProgress{}).Count(&progress)
	assert.Zero(t, attempts)
	assert.Zero(t, progress)
}
