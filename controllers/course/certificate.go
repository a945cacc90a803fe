package controllers

import (
	"log"
	"time"

	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// GenerateCertificate issues the certificate for a completed enrollment. Calling it
// again returns the certificate already issued.
func (cc *CourseController) GenerateCertificate(c *fiber.Ctx) error {
	studentID := utils.UserID(c)
	courseID := utils.ParamUint(c, "id")

	var enrollment courseModels.Enrollment
	if err := cc.db.Preload("Course").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}
	if !enrollment.IsCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please complete the course before requesting a certificate!", nil)
	}

	var existing courseModels.Certificate
	if err := cc.db.Preload("Course").Where("enrollment_id = ?", enrollment.ID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate already issued.", existing)
	}

	certificate := courseModels.Certificate{
		StudentID:     studentID,
		CourseID:      courseID,
		EnrollmentID:  enrollment.ID,
		CertificateID: courseModels.CertificateNumber(enrollment.ID, studentID, courseID),
		IssuedAt:      time.Now(),
	}
	if err := cc.db.Create(&certificate).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			cc.db.Preload("Course").Where("enrollment_id = ?", enrollment.ID).First(&existing)
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate already issued.", existing)
		}
		log.Printf("Error issuing certificate: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to issue certificate!", nil)
	}
	certificate.Course = enrollment.Course

	if student, err := cc.loadUser(studentID); err == nil && cc.mail != nil && enrollment.Course != nil {
		cc.mail.SendCertificateEmail(student.Email, student.FullName(), enrollment.Course.Title, certificate.CertificateID)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully.", certificate)
}

func (cc *CourseController) ListCertificates(c *fiber.Ctx) error {
	var certificates []courseModels.Certificate
	if err := cc.db.Preload("Course").
		Where("student_id = ?", utils.UserID(c)).
		Order("issued_at DESC").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully.", certificates)
}

func (cc *CourseController) GetCertificate(c *fiber.Ctx) error {
	var certificate courseModels.Certificate
	if err := cc.db.Preload("Course").Preload("Course.Instructor").
		Where("certificate_id = ?", c.Params("certificate_id")).
		First(&certificate).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}
	if certificate.StudentID != utils.UserID(c) && utils.Role(c) != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	var student models.User
	cc.db.Select("id", "first_name", "last_name", "username").First(&student, certificate.StudentID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate fetched successfully.", fiber.Map{
		"certificate":  certificate,
		"student_name": student.FullName(),
	})
}
