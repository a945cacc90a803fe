package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"lms/config"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var courseOrdering = map[string]string{
	"created_at":      "created_at ASC",
	"-created_at":     "created_at DESC",
	"price":           "price ASC",
	"-price":          "price DESC",
	"title":           "title ASC",
	"-title":          "title DESC",
	"average_rating":  "average_rating ASC",
	"-average_rating": "average_rating DESC",
	"total_students":  "total_students ASC",
	"-total_students": "total_students DESC",
}

func (cc *CourseController) ListCategories(c *fiber.Ctx) error {
	var categories []courseModels.Category
	if err := cc.db.Order("name ASC").Find(&categories).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch categories!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully.", categories)
}

func (cc *CourseController) CreateCategory(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCategory").(*courseValidator.CategoryRequest)

	category := courseModels.Category{
		Name:        strings.TrimSpace(reqData.Name),
		Description: reqData.Description,
	}
	if err := cc.db.Create(&category).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Category already exists!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create category!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully.", category)
}

// ListCourses returns the published catalogue with filters, search and ordering
func (cc *CourseController) ListCourses(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourseList").(*courseValidator.CourseListQuery)
	paging := utils.ResolvePaging(c, 12, 50)

	query := cc.db.Model(&courseModels.Course{}).
		Where("status = ? AND is_deleted = ?", courseModels.CourseStatusPublished, false)
	if reqData.Category > 0 {
		query = query.Where("category_id = ?", reqData.Category)
	}
	if reqData.Difficulty != "" {
		query = query.Where("difficulty = ?", reqData.Difficulty)
	}
	if reqData.IsFree != nil {
		query = query.Where("is_free = ?", *reqData.IsFree)
	}
	if search := strings.TrimSpace(reqData.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	order, ok := courseOrdering[reqData.Ordering]
	if !ok {
		order = "created_at DESC"
	}

	var total int64
	var courses []courseModels.Course
	query.Count(&total)
	if err := query.Preload("Instructor").Preload("Category").
		Order(order).Offset(paging.Offset).Limit(paging.Limit).
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", fiber.Map{
		"courses":    courses,
		"pagination": paging.Meta(total),
	})
}

// GetCourse shows a published course, or any course to its owner
func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	var course courseModels.Course
	if err := cc.db.Preload("Instructor").Preload("Category").
		Where("id = ? AND is_deleted = ?", utils.ParamUint(c, "id"), false).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.IsPublished() && !canManage(c, course) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var lessons []courseModels.Lesson
	cc.db.Select("id", "course_id", "lesson_order", "title", "lesson_type", "duration_minutes", "is_published").
		Where("course_id = ? AND is_published = ?", course.ID, true).
		Order("lesson_order ASC").Find(&lessons)

	userID := utils.UserID(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully.", fiber.Map{
		"course":      course,
		"lessons":     lessons,
		"is_enrolled": userID > 0 && cc.isEnrolled(userID, course.ID),
	})
}

func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)

	course := courseModels.Course{
		Title:            reqData.Title,
		Description:      reqData.Description,
		ShortDescription: reqData.ShortDescription,
		InstructorID:     utils.UserID(c),
		CategoryID:       reqData.CategoryID,
		Price:            reqData.Price,
		Difficulty:       reqData.Difficulty,
		DurationHours:    reqData.DurationHours,
		Language:         reqData.Language,
		ThumbnailURL:     reqData.ThumbnailURL,
		PreviewVideoURL:  reqData.PreviewVideoURL,
		Status:           reqData.Status,
		IsFeatured:       reqData.IsFeatured,
	}
	if course.Status == "" {
		course.Status = courseModels.CourseStatusDraft
	}
	if course.Status == courseModels.CourseStatusPublished {
		now := time.Now()
		course.PublishedAt = &now
	}

	if err := cc.db.Create(&course).Error; err != nil {
		log.Printf("Error creating course: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully.", course)
}

func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourse").(*courseValidator.UpdateCourseRequest)

	course, status, msg := cc.managedCourse(c, utils.ParamUint(c, "id"))
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = strings.TrimSpace(*reqData.Title)
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.ShortDescription != nil {
		updates["short_description"] = *reqData.ShortDescription
	}
	if reqData.CategoryID != nil {
		updates["category_id"] = *reqData.CategoryID
	}
	if reqData.Price != nil {
		updates["price"] = *reqData.Price
		updates["is_free"] = *reqData.Price == 0
	}
	if reqData.Difficulty != nil {
		updates["difficulty"] = *reqData.Difficulty
	}
	if reqData.DurationHours != nil {
		updates["duration_hours"] = *reqData.DurationHours
	}
	if reqData.Language != nil {
		updates["language"] = *reqData.Language
	}
	if reqData.ThumbnailURL != nil {
		updates["thumbnail_url"] = *reqData.ThumbnailURL
	}
	if reqData.PreviewVideoURL != nil {
		updates["preview_video_url"] = *reqData.PreviewVideoURL
	}
	if reqData.IsFeatured != nil {
		updates["is_featured"] = *reqData.IsFeatured
	}
	if reqData.Status != nil {
		updates["status"] = *reqData.Status
		if *reqData.Status == courseModels.CourseStatusPublished && course.PublishedAt == nil {
			updates["published_at"] = time.Now()
		}
	}
	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
	}

	updates["updated_at"] = time.Now()
	if err := cc.db.Model(course).UpdateColumns(updates).Error; err != nil {
		log.Printf("Error updating course %d: %v", course.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}
	cc.db.Preload("Category").First(course, course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully.", course)
}

// DeleteCourse archives the course; enrollments and history stay intact
func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	course, status, msg := cc.managedCourse(c, utils.ParamUint(c, "id"))
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	if err := cc.db.Model(course).UpdateColumns(map[string]interface{}{
		"is_deleted": true,
		"status":     courseModels.CourseStatusArchived,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully.", nil)
}

// UploadThumbnail stores a multipart "thumbnail" image for the course
func (cc *CourseController) UploadThumbnail(c *fiber.Ctx) error {
	course, status, msg := cc.managedCourse(c, utils.ParamUint(c, "id"))
	if course == nil {
		return middleware.JsonResponse(c, status, false, msg, nil)
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"thumbnail": "This field is required!"})
	}
	relPath, err := utils.SaveUploadedImage(file, config.AppConfig.UploadDir, "thumbnails")
	if err != nil {
		if errors.Is(err, utils.ErrUnsupportedFile) || errors.Is(err, utils.ErrFileTooLarge) {
			return middleware.ValidationErrorResponse(c, map[string]string{"thumbnail": err.Error()})
		}
		log.Printf("Error saving thumbnail for course %d: %v", course.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload thumbnail!", nil)
	}

	url := utils.GetFileURL(relPath)
	if err := cc.db.Model(course).UpdateColumns(map[string]interface{}{
		"thumbnail_url": url,
		"updated_at":    time.Now(),
	}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully.", fiber.Map{
		"thumbnail_url": url,
	})
}
