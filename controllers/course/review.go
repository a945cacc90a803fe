package controllers

import (
	"log"

	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (cc *CourseController) ListReviews(c *fiber.Ctx) error {
	courseID := utils.ParamUint(c, "id")
	paging := utils.ResolvePaging(c, 10, 50)

	var total int64
	var reviews []courseModels.CourseReview
	query := cc.db.Model(&courseModels.CourseReview{}).Where("course_id = ?", courseID).Session(&gorm.Session{})
	query.Count(&total)
	if err := query.Preload("Student").Order("created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).Find(&reviews).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch reviews!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully.", fiber.Map{
		"reviews":    reviews,
		"pagination": paging.Meta(total),
	})
}

// SaveReview creates or replaces the student's review once the course is completed
func (cc *CourseController) SaveReview(c *fiber.Ctx) error {
	reqData := c.Locals("validatedReview").(*courseValidator.ReviewRequest)
	studentID := utils.UserID(c)
	courseID := utils.ParamUint(c, "id")

	var enrollment courseModels.Enrollment
	if err := cc.db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You must be enrolled in this course to review it!", nil)
	}
	if !enrollment.IsCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You can only review a course after completing it!", nil)
	}

	review := courseModels.CourseReview{
		StudentID:  studentID,
		CourseID:   courseID,
		Rating:     reqData.Rating,
		ReviewText: reqData.Comment,
	}
	err := cc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review_text", "updated_at"}),
		}).Create(&review).Error; err != nil {
			return err
		}
		return courseModels.RefreshRating(tx, courseID)
	})
	if err != nil {
		log.Printf("Error saving review: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save review!", nil)
	}

	cc.db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&review)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review saved successfully.", review)
}
