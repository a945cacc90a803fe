package controllers

import (
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

type courseStats struct {
	TotalEnrollments     int64   `json:"total_enrollments"`
	CompletedEnrollments int64   `json:"completed_enrollments"`
	AverageProgress      float64 `json:"average_progress"`
	QuizAttempts         int64   `json:"quiz_attempts"`
	AverageQuizScore     float64 `json:"average_quiz_score"`
	PassRate             float64 `json:"pass_rate"`
	Revenue              float64 `json:"revenue"`
}

func (cc *CourseController) statsFor(courseIDs []uint) courseStats {
	var stats courseStats
	if len(courseIDs) == 0 {
		return stats
	}

	var enrollment struct {
		Total     int64
		Completed int64
		Progress  float64
	}
	cc.db.Model(&courseModels.Enrollment{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0) AS completed, COALESCE(AVG(progress_percentage), 0) AS progress").
		Where("course_id IN ?", courseIDs).
		Scan(&enrollment)
	stats.TotalEnrollments = enrollment.Total
	stats.CompletedEnrollments = enrollment.Completed
	stats.AverageProgress = enrollment.Progress

	var quiz struct {
		Attempts int64
		Score    float64
		Passed   int64
	}
	cc.db.Model(&courseModels.QuizAttempt{}).
		Select("COUNT(*) AS attempts, COALESCE(AVG(quiz_attempts.score), 0) AS score, COALESCE(SUM(CASE WHEN quiz_attempts.is_passed THEN 1 ELSE 0 END), 0) AS passed").
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Joins("JOIN lessons ON lessons.id = quizzes.lesson_id").
		Where("lessons.course_id IN ?", courseIDs).
		Scan(&quiz)
	stats.QuizAttempts = quiz.Attempts
	stats.AverageQuizScore = quiz.Score
	if quiz.Attempts > 0 {
		stats.PassRate = float64(quiz.Passed) / float64(quiz.Attempts) * 100
	}

	cc.db.Model(&courseModels.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("course_id IN ? AND status = ?", courseIDs, courseModels.PaymentCompleted).
		Scan(&stats.Revenue)
	return stats
}

func (cc *CourseController) TutorCourses(c *fiber.Ctx) error {
	query := cc.db.Preload("Category").
		Where("instructor_id = ? AND is_deleted = ?", utils.UserID(c), false)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var courses []courseModels.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", courses)
}

func (cc *CourseController) TutorCourseDetail(c *fiber.Ctx) error {
	course, status, msg := cc.managedCourse(c, utils.ParamUint(c, "id"))
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	var lessons []courseModels.Lesson
	cc.db.Preload("Quiz").Where("course_id = ?", course.ID).Order("lesson_order ASC").Find(&lessons)

	var recent []courseModels.Enrollment
	cc.db.Preload("Student").Where("course_id = ?", course.ID).Order("enrolled_at DESC").Limit(10).Find(&recent)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", fiber.Map{
		"course":             course,
		"lessons":            lessons,
		"stats":              cc.statsFor([]uint{course.ID}),
		"recent_enrollments": recent,
	})
}

func (cc *CourseController) TutorCourseStats(c *fiber.Ctx) error {
	course, status, msg := cc.managedCourse(c, utils.ParamUint(c, "id"))
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course stats fetched successfully.", cc.statsFor([]uint{course.ID}))
}

func (cc *CourseController) TutorDashboard(c *fiber.Ctx) error {
	tutorID := utils.UserID(c)

	var courses []courseModels.Course
	if err := cc.db.Where("instructor_id = ? AND is_deleted = ?", tutorID, false).Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load dashboard!", nil)
	}

	ids := make([]uint, 0, len(courses))
	published, students, rated := 0, 0, 0
	ratingSum := 0.0
	for _, course := range courses {
		ids = append(ids, course.ID)
		if course.IsPublished() {
			published++
		}
		students += course.TotalStudents
		if course.TotalRatings > 0 {
			rated++
			ratingSum += course.AverageRating
		}
	}
	averageRating := 0.0
	if rated > 0 {
		averageRating = ratingSum / float64(rated)
	}

	var recent []courseModels.Enrollment
	if len(ids) > 0 {
		cc.db.Preload("Student").Preload("Course").
			Where("course_id IN ?", ids).Order("enrolled_at DESC").Limit(5).Find(&recent)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", fiber.Map{
		"total_courses":      len(courses),
		"published_courses":  published,
		"total_students":     students,
		"average_rating":     averageRating,
		"stats":              cc.statsFor(ids),
		"recent_enrollments": recent,
	})
}
