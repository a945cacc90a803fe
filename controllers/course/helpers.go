package controllers

import (
	"errors"
	"log"

	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/learning"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CourseController serves the catalogue, learning and tutor endpoints
type CourseController struct {
	db     *gorm.DB
	engine *learning.Engine
	mail   *utils.EmailService
}

func New(db *gorm.DB, engine *learning.Engine, mail *utils.EmailService) *CourseController {
	return &CourseController{db: db, engine: engine, mail: mail}
}

// canManage reports whether the caller owns the course or is an administrator
func canManage(c *fiber.Ctx, course courseModels.Course) bool {
	return utils.Role(c) == models.RoleAdmin || course.InstructorID == utils.UserID(c)
}

func (cc *CourseController) findCourse(id uint) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := cc.db.Where("id = ? AND is_deleted = ?", id, false).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// managedCourse loads a course the caller may edit. On failure it returns the
// status and message to respond with.
func (cc *CourseController) managedCourse(c *fiber.Ctx, id uint) (*courseModels.Course, int, string) {
	course, err := cc.findCourse(id)
	if err != nil {
		return nil, fiber.StatusNotFound, "Course not found!"
	}
	if !canManage(c, *course) {
		return nil, fiber.StatusForbidden, "You can only manage your own courses!"
	}
	return course, 0, ""
}

func (cc *CourseController) isEnrolled(studentID, courseID uint) bool {
	var count int64
	cc.db.Model(&courseModels.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count)
	return count > 0
}

func (cc *CourseController) loadUser(id uint) (*models.User, error) {
	var user models.User
	if err := cc.db.Where("id = ? AND is_deleted = ?", id, false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func learningError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, learning.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, err.Error(), nil)
	case errors.Is(err, learning.ErrNotEnrolled):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, err.Error(), nil)
	case errors.Is(err, learning.ErrNotAvailable),
		errors.Is(err, learning.ErrAttemptLimitReached),
		errors.Is(err, learning.ErrUnknownQuestion),
		errors.Is(err, learning.ErrDuplicateAnswer):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, learning.ErrAttemptConflict):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
	}
	log.Printf("[Learning] unexpected error: %v", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
}
