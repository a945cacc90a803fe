package controllers

import (
	"log"
	"time"

	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services/payment"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Enroll adds the student to a published course. Paid courses need a completed payment first.
func (cc *CourseController) Enroll(c *fiber.Ctx) error {
	studentID := utils.UserID(c)
	course, err := cc.findCourse(utils.ParamUint(c, "id"))
	if err != nil || !course.IsPublished() {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if cc.isEnrolled(studentID, course.ID) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
	}

	if course.Price > 0 {
		var paid int64
		cc.db.Model(&courseModels.Payment{}).
			Where("student_id = ? AND course_id = ? AND status = ?", studentID, course.ID, courseModels.PaymentCompleted).
			Count(&paid)
		if paid == 0 {
			return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "This is a paid course. Please complete the payment to enroll.", fiber.Map{
				"course_id": course.ID,
				"price":     course.Price,
			})
		}
	}

	var created bool
	err = cc.db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = payment.EnrollOnce(tx, studentID, course.ID, time.Now())
		return err
	})
	if err != nil {
		log.Printf("Error enrolling student %d in course %d: %v", studentID, course.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}
	if !created {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already enrolled in this course!", nil)
	}

	var enrollment courseModels.Enrollment
	cc.db.Preload("Course").Where("student_id = ? AND course_id = ?", studentID, course.ID).First(&enrollment)

	if student, err := cc.loadUser(studentID); err == nil && cc.mail != nil {
		cc.mail.SendEnrollmentEmail(student.Email, student.FullName(), course.Title)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Successfully enrolled in course.", enrollment)
}

func (cc *CourseController) MyEnrollments(c *fiber.Ctx) error {
	var enrollments []courseModels.Enrollment
	query := cc.db.Preload("Course").Preload("Course.Instructor").
		Where("student_id = ?", utils.UserID(c))
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("enrolled_at DESC").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", enrollments)
}

func (cc *CourseController) CompleteLesson(c *fiber.Ctx) error {
	result, err := cc.engine.MarkLessonComplete(c.UserContext(), utils.UserID(c), utils.ParamUint(c, "lesson_id"))
	if err != nil {
		return learningError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as complete.", result)
}

func (cc *CourseController) CourseProgress(c *fiber.Ctx) error {
	report, err := cc.engine.CourseProgress(c.UserContext(), utils.UserID(c), utils.ParamUint(c, "id"))
	if err != nil {
		return learningError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress fetched successfully.", report)
}
