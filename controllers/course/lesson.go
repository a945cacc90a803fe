package controllers

import (
	"log"

	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListLessons shows published lessons to everyone and every lesson to the owner
func (cc *CourseController) ListLessons(c *fiber.Ctx) error {
	course, err := cc.findCourse(utils.ParamUint(c, "id"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	manager := canManage(c, *course)
	if !course.IsPublished() && !manager {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	query := cc.db.Where("course_id = ?", course.ID)
	if !manager {
		query = query.Where("is_published = ?", true)
	}

	var lessons []courseModels.Lesson
	if err := query.Order("lesson_order ASC").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	// lesson bodies are for enrolled students only
	if !manager && !cc.isEnrolled(utils.UserID(c), course.ID) {
		for i := range lessons {
			lessons[i].Content = ""
			lessons[i].VideoURL = ""
			lessons[i].Resources = nil
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully.", lessons)
}

func (cc *CourseController) GetLesson(c *fiber.Ctx) error {
	var lesson courseModels.Lesson
	if err := cc.db.Where("id = ?", utils.ParamUint(c, "lesson_id")).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	course, err := cc.findCourse(lesson.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if !canManage(c, *course) {
		if !lesson.IsPublished {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
		if !cc.isEnrolled(utils.UserID(c), course.ID) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enroll in the course to view this lesson!", nil)
		}
	}

	var progress courseModels.LessonProgress
	hasProgress := cc.db.Where("student_id = ? AND lesson_id = ?", utils.UserID(c), lesson.ID).First(&progress).Error == nil

	var quiz courseModels.Quiz
	hasQuiz := cc.db.Select("id", "lesson_id", "title", "passing_score", "max_attempts", "time_limit_minutes", "is_published").
		Where("lesson_id = ?", lesson.ID).First(&quiz).Error == nil

	data := fiber.Map{
		"lesson":    lesson,
		"resources": courseModels.StringList(lesson.Resources),
	}
	if hasProgress {
		data["progress"] = progress
	}
	if hasQuiz {
		data["quiz"] = quiz
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully.", data)
}

func (cc *CourseController) CreateLesson(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLesson").(*courseValidator.CreateLessonRequest)

	course, status, msg := cc.managedCourse(c, utils.ParamUint(c, "id"))
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	lesson := courseModels.Lesson{
		CourseID:        course.ID,
		Order:           reqData.Order,
		Title:           reqData.Title,
		Description:     reqData.Description,
		Content:         reqData.Content,
		VideoURL:        reqData.VideoURL,
		LessonType:      reqData.LessonType,
		DurationMinutes: reqData.DurationMinutes,
		Resources:       courseModels.JSONList(reqData.Resources),
		IsPublished:     reqData.IsPublished,
	}
	if lesson.LessonType == "" {
		lesson.LessonType = "text"
	}

	err := cc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}
		_, err := courseModels.RefreshLessonCount(tx, course.ID)
		return err
	})
	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			return middleware.ValidationErrorResponse(c, map[string]string{"order": "A lesson with this order already exists in the course!"})
		}
		log.Printf("Error creating lesson: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully.", lesson)
}

// managedLesson loads a lesson whose course the caller may edit
func (cc *CourseController) managedLesson(c *fiber.Ctx, id uint) (*courseModels.Lesson, int, string) {
	var lesson courseModels.Lesson
	if err := cc.db.Where("id = ?", id).First(&lesson).Error; err != nil {
		return nil, fiber.StatusNotFound, "Lesson not found!"
	}
	if _, status, msg := cc.managedCourse(c, lesson.CourseID); status != 0 {
		return nil, status, msg
	}
	return &lesson, 0, ""
}

func (cc *CourseController) UpdateLesson(c *fiber.Ctx) error {
	reqData := c.Locals("validatedLesson").(*courseValidator.UpdateLessonRequest)

	lesson, status, msg := cc.managedLesson(c, utils.ParamUint(c, "lesson_id"))
	if lesson == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.Content != nil {
		updates["content"] = *reqData.Content
	}
	if reqData.VideoURL != nil {
		updates["video_url"] = *reqData.VideoURL
	}
	if reqData.LessonType != nil {
		updates["lesson_type"] = *reqData.LessonType
	}
	if reqData.Order != nil {
		updates["lesson_order"] = *reqData.Order
	}
	if reqData.DurationMinutes != nil {
		updates["duration_minutes"] = *reqData.DurationMinutes
	}
	if reqData.Resources != nil {
		updates["resources"] = courseModels.JSONList(reqData.Resources)
	}
	if reqData.IsPublished != nil {
		updates["is_published"] = *reqData.IsPublished
	}
	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
	}

	err := cc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(lesson).Updates(updates).Error; err != nil {
			return err
		}
		_, err := courseModels.RefreshLessonCount(tx, lesson.CourseID)
		return err
	})
	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			return middleware.ValidationErrorResponse(c, map[string]string{"order": "A lesson with this order already exists in the course!"})
		}
		log.Printf("Error updating lesson %d: %v", lesson.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}
	cc.db.First(lesson, lesson.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully.", lesson)
}

// DeleteLesson removes the lesson with its quiz so the order slot can be reused
func (cc *CourseController) DeleteLesson(c *fiber.Ctx) error {
	lesson, status, msg := cc.managedLesson(c, utils.ParamUint(c, "lesson_id"))
	if lesson == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	err := cc.db.Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		if err := tx.Model(&courseModels.Quiz{}).Where("lesson_id = ?", lesson.ID).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if len(quizIDs) > 0 {
			if err := tx.Unscoped().Where("quiz_id IN ?", quizIDs).Delete(&courseModels.QuizQuestion{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", quizIDs).Delete(&courseModels.Quiz{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Delete(lesson).Error; err != nil {
			return err
		}
		_, err := courseModels.RefreshLessonCount(tx, lesson.CourseID)
		return err
	})
	if err != nil {
		log.Printf("Error deleting lesson %d: %v", lesson.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully.", nil)
}
