package contactController

import (
	"strings"
	"time"

	"lms/middleware"
	"lms/models"
	"lms/utils"
	contactValidator "lms/validators/contact"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ContactController struct {
	db   *gorm.DB
	mail *utils.EmailService
}

func New(db *gorm.DB, mail *utils.EmailService) *ContactController {
	return &ContactController{db: db, mail: mail}
}

func (cc *ContactController) Submit(c *fiber.Ctx) error {
	reqData := c.Locals("validatedContact").(*contactValidator.SubmitRequest)

	submission := models.ContactSubmission{
		FirstName: reqData.FirstName,
		LastName:  reqData.LastName,
		Email:     reqData.Email,
		Phone:     reqData.Phone,
		Message:   reqData.Message,
		Status:    models.ContactStatusNew,
		IPAddress: utils.ClientIP(c),
	}
	if err := cc.db.Create(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit message!", nil)
	}

	if cc.mail != nil {
		cc.mail.SendContactAcknowledgement(submission.Email, submission.FullName())
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Thank you for contacting us. We will get back to you soon.", fiber.Map{
		"id": submission.ID,
	})
}

func (cc *ContactController) List(c *fiber.Ctx) error {
	reqData := c.Locals("validatedContactList").(*contactValidator.ListQuery)
	paging := utils.ResolvePaging(c, 20, 100)

	query := cc.db.Model(&models.ContactSubmission{})
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}
	if search := strings.TrimSpace(reqData.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(message) LIKE ?",
			like, like, like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	var submissions []models.ContactSubmission
	query.Count(&total)
	if err := query.Order("created_at DESC").Offset(paging.Offset).Limit(paging.Limit).
		Find(&submissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch contact submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact submissions fetched successfully.", fiber.Map{
		"submissions": submissions,
		"pagination":  paging.Meta(total),
	})
}

// Get marks a new submission as read the first time an admin opens it
func (cc *ContactController) Get(c *fiber.Ctx) error {
	var submission models.ContactSubmission
	if err := cc.db.First(&submission, utils.ParamUint(c, "id")).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Contact submission not found!", nil)
	}

	if submission.Status == models.ContactStatusNew {
		submission.Status = models.ContactStatusRead
		cc.db.Model(&submission).Update("status", models.ContactStatusRead)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact submission fetched successfully.", submission)
}

func (cc *ContactController) UpdateStatus(c *fiber.Ctx) error {
	reqData := c.Locals("validatedStatus").(*contactValidator.StatusRequest)

	var submission models.ContactSubmission
	if err := cc.db.First(&submission, utils.ParamUint(c, "id")).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Contact submission not found!", nil)
	}

	updates := map[string]interface{}{"status": reqData.Status}
	if reqData.Status == models.ContactStatusReplied && submission.RepliedAt == nil {
		now := time.Now()
		updates["replied_at"] = now
		submission.RepliedAt = &now
	}
	if err := cc.db.Model(&submission).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update status!", nil)
	}
	submission.Status = reqData.Status

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Status updated successfully.", submission)
}

func (cc *ContactController) Delete(c *fiber.Ctx) error {
	res := cc.db.Delete(&models.ContactSubmission{}, utils.ParamUint(c, "id"))
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete contact submission!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Contact submission not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact submission deleted successfully.", nil)
}

func (cc *ContactController) Stats(c *fiber.Ctx) error {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := cc.db.Model(&models.ContactSubmission{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}

	byStatus := fiber.Map{
		models.ContactStatusNew:      int64(0),
		models.ContactStatusRead:     int64(0),
		models.ContactStatusReplied:  int64(0),
		models.ContactStatusArchived: int64(0),
	}
	var total int64
	for _, r := range rows {
		byStatus[r.Status] = r.Count
		total += r.Count
	}

	var lastWeek int64
	cc.db.Model(&models.ContactSubmission{}).
		Where("created_at >= ?", time.Now().AddDate(0, 0, -7)).Count(&lastWeek)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Contact stats fetched successfully.", fiber.Map{
		"total":           total,
		"by_status":       byStatus,
		"last_seven_days": lastWeek,
	})
}
