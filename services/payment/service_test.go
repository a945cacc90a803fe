package payment

import (
	"context"
	"errors"
	"testing"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubGateway struct {
	initiateErr error
	successful  bool
	verified    int
}

func (s *stubGateway) Name() string { return "stub" }

func (s *stubGateway) Initiate(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if s.initiateErr != nil {
		return nil, s.initiateErr
	}
	return &Checkout{Reference: req.Reference, CheckoutURL: "https://pay.example.com/" + req.Reference}, nil
}

func (s *stubGateway) Verify(ctx context.Context, reference, transactionID string) (*Verification, error) {
	s.verified++
	status := "failed"
	if s.successful {
		status = "successful"
	}
	return &Verification{Successful: s.successful, TransactionID: transactionID, Status: status, Raw: map[string]interface{}{"status": status}}, nil
}

type paymentFixture struct {
	db      *gorm.DB
	student models.User
	course  courseModels.Course
}

func newPaymentFixture(t *testing.T, price float64) *paymentFixture {
	t.Helper()
	db, err := database.NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	tutor := models.User{Username: "tutor", Email: "tutor@example.com", Password: "x", Role: models.RoleTutor}
	require.NoError(t, db.Create(&tutor).Error)
	student := models.User{Username: "ada", FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	course := courseModels.Course{Title: "Advanced Go", InstructorID: tutor.ID, Price: price, Status: courseModels.CourseStatusPublished, TotalLessons: 4}
	require.NoError(t, db.Create(&course).Error)
	return &paymentFixture{db: db, student: student, course: course}
}

func testConfig() config.PaymentConfig {
	return config.PaymentConfig{Currency: "NGN", FrontendURL: "http://localhost:5173/"}
}

func TestInitiateCreatesPendingPayment(t *testing.T) {
	f := newPaymentFixture(t, 5000)
	svc := NewService(f.db, &stubGateway{}, testConfig())

	p, reused, err := svc.Initiate(context.Background(), f.student, f.course.ID)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, courseModels.PaymentPending, p.Status)
	assert.Equal(t, 5000.0, p.Amount)
	assert.Equal(t, "stub", p.Provider)
	require.NotNil(t, p.Reference)
	assert.Equal(t, p.ID.String(), *p.Reference)
	assert.Equal(t, "https://pay.example.com/"+p.ID.String(), p.CheckoutURL)

	again, reused, err := svc.Initiate(context.Background(), f.student, f.course.ID)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, p.ID, again.ID)

	var count int64
	f.db.Model(&courseModels.Payment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestInitiateRejections(t *testing.T) {
	f := newPaymentFixture(t, 0)
	svc := NewService(f.db, &stubGateway{}, testConfig())

	_, _, err := svc.Initiate(context.Background(), f.student, f.course.ID)
	assert.ErrorIs(t, err, ErrFreeCourse)

	_, _, err = svc.Initiate(context.Background(), f.student, f.course.ID+10)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	paid := newPaymentFixture(t, 100)
	require.NoError(t, paid.db.Create(&courseModels.Enrollment{StudentID: paid.student.ID, CourseID: paid.course.ID}).Error)
	_, _, err = NewService(paid.db, &stubGateway{}, testConfig()).Initiate(context.Background(), paid.student, paid.course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestInitiateGatewayFailureMarksPaymentFailed(t *testing.T) {
	f := newPaymentFixture(t, 100)
	svc := NewService(f.db, &stubGateway{initiateErr: errors.New("boom")}, testConfig())

	_, _, err := svc.Initiate(context.Background(), f.student, f.course.ID)
	require.Error(t, err)

	var p courseModels.Payment
	require.NoError(t, f.db.First(&p).Error)
	assert.Equal(t, courseModels.PaymentFailed, p.Status)
}

func TestVerifyEnrollsExactlyOnce(t *testing.T) {
	f := newPaymentFixture(t, 100)
	gw := &stubGateway{successful: true}
	svc := NewService(f.db, gw, testConfig())
	ctx := context.Background()

	p, _, err := svc.Initiate(ctx, f.student, f.course.ID)
	require.NoError(t, err)

	outcome, err := svc.Verify(ctx, f.student.ID, p.ID.String(), "12345")
	require.NoError(t, err)
	assert.True(t, outcome.EnrollmentCreated)
	assert.Equal(t, courseModels.PaymentCompleted, outcome.Payment.Status)
	assert.NotNil(t, outcome.Payment.PaidAt)
	assert.Equal(t, "12345", outcome.Payment.ProviderTransactionID)
	assert.JSONEq(t, `{"status":"successful"}`, string(outcome.Payment.Metadata))

	again, err := svc.Verify(ctx, f.student.ID, p.ID.String(), "12345")
	require.NoError(t, err)
	assert.True(t, again.AlreadyVerified)
	assert.False(t, again.EnrollmentCreated)
	assert.Equal(t, 1, gw.verified)

	var enrollment courseModels.Enrollment
	require.NoError(t, f.db.Where("student_id = ? AND course_id = ?", f.student.ID, f.course.ID).First(&enrollment).Error)
	assert.Equal(t, 4, enrollment.TotalLessons)

	var course courseModels.Course
	require.NoError(t, f.db.First(&course, f.course.ID).Error)
	assert.Equal(t, 1, course.TotalStudents)
}

func TestVerifyFailedPayment(t *testing.T) {
	f := newPaymentFixture(t, 100)
	svc := NewService(f.db, &stubGateway{successful: false}, testConfig())
	ctx := context.Background()

	p, _, err := svc.Initiate(ctx, f.student, f.course.ID)
	require.NoError(t, err)

	outcome, err := svc.Verify(ctx, f.student.ID, p.ID.String(), "999")
	assert.ErrorIs(t, err, ErrPaymentFailed)
	require.NotNil(t, outcome)
	assert.Equal(t, courseModels.PaymentFailed, outcome.Payment.Status)

	_, err = svc.Verify(ctx, f.student.ID, p.ID.String(), "999")
	assert.ErrorIs(t, err, ErrPaymentNotOpen)

	var enrollments int64
	f.db.Model(&courseModels.Enrollment{}).Count(&enrollments)
	assert.Zero(t, enrollments)
}

func TestVerifyUnknownPayment(t *testing.T) {
	f := newPaymentFixture(t, 100)
	svc := NewService(f.db, NewMock(), testConfig())

	_, err := svc.Verify(context.Background(), f.student.ID, "not-a-uuid", "")
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	_, err = svc.Verify(context.Background(), f.student.ID, uuid.NewString(), "")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestMockProviderFlow(t *testing.T) {
	f := newPaymentFixture(t, 250)
	svc := NewService(f.db, NewMock(), testConfig())
	ctx := context.Background()

	p, _, err := svc.Initiate(ctx, f.student, f.course.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Reference)
	assert.Regexp(t, `^MOCK-[0-9a-f-]{36}$`, *p.Reference)
	assert.Contains(t, p.CheckoutURL, "http://localhost:5173/payment/callback?tx_ref=MOCK-")

	outcome, err := svc.Verify(ctx, f.student.ID, *p.Reference, "")
	require.NoError(t, err)
	assert.True(t, outcome.EnrollmentCreated)
	assert.Equal(t, p.ID, outcome.Payment.ID)

	history, err := svc.History(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Course)
	assert.Equal(t, "Advanced Go", history[0].Course.Title)
}

func TestEnrollOnceIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t, 0)

	for i, want := range []bool{true, false} {
		created, err := EnrollOnce(f.db, f.student.ID, f.course.ID, f.course.CreatedAt)
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, want, created)
	}

	var course courseModels.Course
	require.NoError(t, f.db.First(&course, f.course.ID).Error)
	assert.Equal(t, 1, course.TotalStudents)
}

func TestMidtransSettlement(t *testing.T) {
	assert.True(t, midtransSettled("settlement", ""))
	assert.True(t, midtransSettled("capture", "accept"))
	assert.False(t, midtransSettled("capture", "challenge"))
	assert.False(t, midtransSettled("pending", ""))
	assert.False(t, midtransSettled("expire", ""))
}

func TestNewGateway(t *testing.T) {
	gw, err := NewGateway(config.PaymentConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, gw.Name())

	gw, err = NewGateway(config.PaymentConfig{Provider: "flutterwave", FlutterwaveBaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.Equal(t, ProviderFlutterwave, gw.Name())

	_, err = NewGateway(config.PaymentConfig{Provider: "paypal"})
	assert.Error(t, err)
}
