package controllers

import (
	"errors"
	"log"

	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errQuizHasAttempts = errors.New("quiz already has attempts")

// questionView is what a student sees of a question; answer keys stay server side
type questionView struct {
	ID           uint     `json:"id"`
	QuestionText string   `json:"question_text"`
	QuestionType string   `json:"question_type"`
	Order        int      `json:"order"`
	Points       int      `json:"points"`
	Options      []string `json:"options"`
}

func studentQuestions(questions []courseModels.QuizQuestion) []questionView {
	out := make([]questionView, 0, len(questions))
	for _, q := range questions {
		out = append(out, questionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			QuestionType: q.QuestionType,
			Order:        q.Order,
			Points:       q.Points,
			Options:      courseModels.StringList(q.Options),
		})
	}
	return out
}

// SaveQuiz creates the lesson's quiz or updates it. Sent questions replace the
// existing set, which is refused once students have attempted the quiz.
func (cc *CourseController) SaveQuiz(c *fiber.Ctx) error {
	reqData := c.Locals("validatedQuiz").(*courseValidator.QuizRequest)

	lesson, status, msg := cc.managedLesson(c, utils.ParamUint(c, "lesson_id"))
	if lesson == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var quiz courseModels.Quiz
	created := false
	err := cc.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("lesson_id = ?", lesson.ID).First(&quiz).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			quiz = courseModels.Quiz{LessonID: lesson.ID, Title: "Quiz", TimeLimitMinutes: 30, PassingScore: 70, MaxAttempts: 3}
		} else if err != nil {
			return err
		}

		if reqData.Title != "" {
			quiz.Title = reqData.Title
		}
		quiz.Description = reqData.Description
		if reqData.TimeLimitMinutes > 0 {
			quiz.TimeLimitMinutes = reqData.TimeLimitMinutes
		}
		if reqData.PassingScore != nil {
			quiz.PassingScore = *reqData.PassingScore
		}
		if reqData.MaxAttempts > 0 {
			quiz.MaxAttempts = reqData.MaxAttempts
		}
		quiz.IsPublished = reqData.IsPublished

		if err := tx.Save(&quiz).Error; err != nil {
			return err
		}

		if reqData.Questions == nil {
			return nil
		}

		var attempts int64
		if err := tx.Model(&courseModels.QuizAttempt{}).Where("quiz_id = ?", quiz.ID).Count(&attempts).Error; err != nil {
			return err
		}
		if attempts > 0 {
			return errQuizHasAttempts
		}

		if err := tx.Unscoped().Where("quiz_id = ?", quiz.ID).Delete(&courseModels.QuizQuestion{}).Error; err != nil {
			return err
		}
		if len(reqData.Questions) == 0 {
			return nil
		}

		questions := make([]courseModels.QuizQuestion, 0, len(reqData.Questions))
		for i, q := range reqData.Questions {
			points := q.Points
			if points == 0 {
				points = 1
			}
			questions = append(questions, courseModels.QuizQuestion{
				QuizID:            quiz.ID,
				QuestionText:      q.QuestionText,
				QuestionType:      q.QuestionType,
				Order:             i + 1,
				Points:            points,
				Options:           courseModels.JSONList(q.Options),
				CorrectAnswer:     q.CorrectAnswer,
				AcceptableAnswers: courseModels.JSONList(q.AcceptableAnswers),
			})
		}
		return tx.Create(&questions).Error
	})
	if err != nil {
		if errors.Is(err, errQuizHasAttempts) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Questions cannot be replaced once students have attempted the quiz!", nil)
		}
		log.Printf("Error saving quiz for lesson %d: %v", lesson.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save quiz!", nil)
	}

	cc.db.Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("question_order ASC") }).First(&quiz, quiz.ID)

	statusCode, message := fiber.StatusOK, "Quiz updated successfully."
	if created {
		statusCode, message = fiber.StatusCreated, "Quiz created successfully."
	}
	return middleware.JsonResponse(c, statusCode, true, message, quiz)
}

// GetQuiz returns the full quiz to its tutor and a redacted one to enrolled students
func (cc *CourseController) GetQuiz(c *fiber.Ctx) error {
	var lesson courseModels.Lesson
	if err := cc.db.Where("id = ?", utils.ParamUint(c, "lesson_id")).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	course, err := cc.findCourse(lesson.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var quiz courseModels.Quiz
	if err := cc.db.Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("question_order ASC") }).
		Where("lesson_id = ?", lesson.ID).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "This lesson has no quiz!", nil)
	}

	if canManage(c, *course) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully.", quiz)
	}

	studentID := utils.UserID(c)
	if !quiz.IsPublished || !lesson.IsPublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "This lesson has no quiz!", nil)
	}
	if !cc.isEnrolled(studentID, course.ID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in the course to take this quiz!", nil)
	}

	var used int64
	cc.db.Model(&courseModels.QuizAttempt{}).Where("student_id = ? AND quiz_id = ?", studentID, quiz.ID).Count(&used)
	remaining := quiz.MaxAttempts - int(used)
	if remaining < 0 {
		remaining = 0
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully.", fiber.Map{
		"id":                 quiz.ID,
		"lesson_id":          quiz.LessonID,
		"title":              quiz.Title,
		"description":        quiz.Description,
		"time_limit_minutes": quiz.TimeLimitMinutes,
		"passing_score":      quiz.PassingScore,
		"max_attempts":       quiz.MaxAttempts,
		"attempts_used":      used,
		"attempts_remaining": remaining,
		"questions":          studentQuestions(quiz.Questions),
	})
}

func (cc *CourseController) SubmitQuiz(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSubmission").(*courseValidator.SubmitQuizRequest)

	result, err := cc.engine.SubmitAttempt(c.UserContext(), utils.UserID(c), utils.ParamUint(c, "quiz_id"), reqData.Answers)
	if err != nil {
		return learningError(c, err)
	}

	message := "Quiz submitted. You did not reach the passing score."
	if result.IsPassed {
		message = "Quiz submitted. You passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, message, result)
}

func (cc *CourseController) QuizAttempts(c *fiber.Ctx) error {
	attempts, err := cc.engine.Attempts(c.UserContext(), utils.UserID(c), utils.ParamUint(c, "quiz_id"))
	if err != nil {
		return learningError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attempts fetched successfully.", attempts)
}
