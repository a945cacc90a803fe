package controllers

import (
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

func (cc *CourseController) StudentDashboard(c *fiber.Ctx) error {
	studentID := utils.UserID(c)

	var counts struct {
		Total      int64
		Completed  int64
		InProgress int64
	}
	cc.db.Model(&courseModels.Enrollment{}).
		Select("COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS in_progress",
			courseModels.EnrollmentStatusCompleted, courseModels.EnrollmentStatusInProgress).
		Where("student_id = ?", studentID).
		Scan(&counts)

	var certificates int64
	cc.db.Model(&courseModels.Certificate{}).Where("student_id = ?", studentID).Count(&certificates)

	var quiz struct {
		Attempts int64
		Passed   int64
		Score    float64
	}
	cc.db.Model(&courseModels.QuizAttempt{}).
		Select("COUNT(*) AS attempts, COALESCE(SUM(CASE WHEN is_passed THEN 1 ELSE 0 END), 0) AS passed, COALESCE(AVG(score), 0) AS score").
		Where("student_id = ?", studentID).
		Scan(&quiz)

	var continueLearning []courseModels.Enrollment
	cc.db.Preload("Course").
		Where("student_id = ? AND status IN ?", studentID, []string{courseModels.EnrollmentStatusEnrolled, courseModels.EnrollmentStatusInProgress}).
		Order("updated_at DESC").Limit(5).Find(&continueLearning)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", fiber.Map{
		"enrolled_courses":    counts.Total,
		"completed_courses":   counts.Completed,
		"in_progress_courses": counts.InProgress,
		"certificates":        certificates,
		"quiz_attempts":       quiz.Attempts,
		"quizzes_passed":      quiz.Passed,
		"average_quiz_score":  quiz.Score,
		"continue_learning":   continueLearning,
	})
}
