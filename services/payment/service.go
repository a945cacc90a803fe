package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"lms/config"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns the payment rows and turns verified payments into enrollments
type Service struct {
	db      *gorm.DB
	gateway Gateway
	cfg     config.PaymentConfig
	now     func() time.Time
}

func NewService(db *gorm.DB, gateway Gateway, cfg config.PaymentConfig) *Service {
	return &Service{db: db, gateway: gateway, cfg: cfg, now: time.Now}
}

func (s *Service) Provider() string { return s.gateway.Name() }

// Initiate opens a checkout for a paid course. An existing pending payment for the
// same course is handed back instead of creating a second one; reused reports that.
func (s *Service) Initiate(ctx context.Context, student models.User, courseID uint) (payment *courseModels.Payment, reused bool, err error) {
	db := s.db.WithContext(ctx)

	var course courseModels.Course
	if err := db.Where("id = ? AND status = ? AND is_deleted = ?", courseID, courseModels.CourseStatusPublished, false).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrCourseNotFound
		}
		return nil, false, err
	}
	if course.Price <= 0 {
		return nil, false, ErrFreeCourse
	}

	var enrolled int64
	if err := db.Model(&courseModels.Enrollment{}).
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&enrolled).Error; err != nil {
		return nil, false, err
	}
	if enrolled > 0 {
		return nil, false, ErrAlreadyEnrolled
	}

	var existing courseModels.Payment
	err = db.Where("student_id = ? AND course_id = ? AND status = ?", student.ID, course.ID, courseModels.PaymentPending).
		Order("created_at DESC").First(&existing).Error
	if err == nil && existing.CheckoutURL != "" {
		existing.Course = &course
		return &existing, true, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	p := courseModels.Payment{
		StudentID: student.ID,
		CourseID:  course.ID,
		Amount:    course.Price,
		Currency:  s.cfg.Currency,
		Provider:  s.gateway.Name(),
		Status:    courseModels.PaymentPending,
	}
	if p.Currency == "" {
		p.Currency = "NGN"
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, false, err
	}

	checkout, err := s.gateway.Initiate(ctx, CheckoutRequest{
		Reference:   p.ID.String(),
		Amount:      p.Amount,
		Currency:    p.Currency,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		StudentID:   student.ID,
		Customer: Customer{
			Email: student.Email,
			Name:  student.FullName(),
			Phone: student.PhoneNumber,
		},
		RedirectURL: strings.TrimRight(s.cfg.FrontendURL, "/") + "/payment/callback",
	})
	if err != nil {
		log.Printf("[Payment] %s initiate failed for payment %s: %v", s.gateway.Name(), p.ID, err)
		db.Model(&p).Update("status", courseModels.PaymentFailed)
		return nil, false, err
	}

	p.Reference = &checkout.Reference
	p.CheckoutURL = checkout.CheckoutURL
	if err := db.Model(&p).Select("reference", "checkout_url").Updates(&p).Error; err != nil {
		return nil, false, err
	}
	p.Course = &course
	return &p, false, nil
}

type VerifyOutcome struct {
	Payment           courseModels.Payment `json:"payment"`
	EnrollmentCreated bool                 `json:"enrollment_created"`
	AlreadyVerified   bool                 `json:"already_verified"`
}

// Verify asks the provider about the payment. A successful verification completes
// the payment and enrolls the student exactly once. Unsuccessful ones mark the
// payment failed and return ErrPaymentFailed alongside the outcome.
func (s *Service) Verify(ctx context.Context, studentID uint, paymentID, transactionID string) (*VerifyOutcome, error) {
	p, err := s.Get(ctx, studentID, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status == courseModels.PaymentCompleted {
		return &VerifyOutcome{Payment: *p, AlreadyVerified: true}, nil
	}
	if p.Status != courseModels.PaymentPending {
		return nil, ErrPaymentNotOpen
	}

	reference := p.ID.String()
	if p.Reference != nil && *p.Reference != "" {
		reference = *p.Reference
	}
	v, err := s.gateway.Verify(ctx, reference, transactionID)
	if err != nil {
		return nil, err
	}
	metadata := encodeMetadata(v.Raw)

	if !v.Successful {
		p.Status = courseModels.PaymentFailed
		p.Metadata = metadata
		if err := s.db.WithContext(ctx).Model(p).Select("status", "metadata").Updates(p).Error; err != nil {
			return nil, err
		}
		return &VerifyOutcome{Payment: *p}, ErrPaymentFailed
	}

	outcome := &VerifyOutcome{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked courseModels.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", p.ID).First(&locked).Error; err != nil {
			return err
		}
		if locked.Status == courseModels.PaymentCompleted {
			outcome.AlreadyVerified = true
			outcome.Payment = locked
			return nil
		}

		now := s.now()
		locked.Status = courseModels.PaymentCompleted
		locked.PaidAt = &now
		locked.ProviderTransactionID = v.TransactionID
		locked.Metadata = metadata
		if err := tx.Model(&locked).
			Select("status", "paid_at", "provider_transaction_id", "metadata").
			Updates(&locked).Error; err != nil {
			return err
		}

		created, err := EnrollOnce(tx, studentID, locked.CourseID, now)
		if err != nil {
			return err
		}
		outcome.EnrollmentCreated = created
		outcome.Payment = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome.Payment.Course = p.Course
	if outcome.EnrollmentCreated {
		log.Printf("[Payment] payment %s completed, student %d enrolled in course %d", p.ID, studentID, p.CourseID)
	}
	return outcome, nil
}

// EnrollOnce creates the enrollment if it does not exist yet and bumps the course's
// student count when it did. It must run inside the caller's transaction.
func EnrollOnce(tx *gorm.DB, studentID, courseID uint, now time.Time) (bool, error) {
	var course courseModels.Course
	if err := tx.Select("id", "total_lessons").First(&course, courseID).Error; err != nil {
		return false, err
	}

	enrollment := courseModels.Enrollment{
		StudentID:    studentID,
		CourseID:     courseID,
		Status:       courseModels.EnrollmentStatusEnrolled,
		TotalLessons: course.TotalLessons,
		EnrolledAt:   now,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if err := tx.Model(&courseModels.Course{}).Where("id = ?", courseID).
		UpdateColumn("total_students", gorm.Expr("total_students + ?", 1)).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Get loads one of the student's payments by id or by the provider reference
func (s *Service) Get(ctx context.Context, studentID uint, paymentID string) (*courseModels.Payment, error) {
	if paymentID == "" {
		return nil, ErrPaymentNotFound
	}
	q := s.db.WithContext(ctx).Preload("Course").Where("student_id = ?", studentID)
	if id, err := uuid.Parse(paymentID); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("reference = ?", paymentID)
	}

	var p courseModels.Payment
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// History lists the student's payments, newest first
func (s *Service) History(ctx context.Context, studentID uint) ([]courseModels.Payment, error) {
	var payments []courseModels.Payment
	err := s.db.WithContext(ctx).Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func encodeMetadata(raw map[string]interface{}) datatypes.JSON {
	if raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
