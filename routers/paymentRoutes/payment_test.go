package paymentRoutes

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"lms/config"
	paymentController "lms/controllers/payment"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  bool                   `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func TestMockCheckoutEnrollsStudent(t *testing.T) {
	config.AppConfig = &config.Config{JWTKey: "test-secret", JWTTTL: time.Hour}
	db, err := database.NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.Database.Db = db

	tutor := models.User{Username: "tutor", Email: "tutor@example.com", Password: "x", Role: models.RoleTutor}
	require.NoError(t, db.Create(&tutor).Error)
	student := models.User{Username: "student", Email: "student@example.com", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	course := courseModels.Course{Title: "Advanced Go", InstructorID: tutor.ID, Price: 250, Status: courseModels.CourseStatusPublished}
	require.NoError(t, db.Create(&course).Error)

	cfg := config.PaymentConfig{Provider: payment.ProviderMock, Currency: "NGN", FrontendURL: "http://localhost:5173"}
	app := fiber.New()
	SetupPaymentRoutes(app, paymentController.New(db, payment.NewService(db, payment.NewMock(), cfg), nil))

	token, err := middleware.GenerateJWT(student.ID, "student", student.Role, student.Email)
	require.NoError(t, err)

	call := func(method, path string, body interface{}) (int, envelope) {
		var payload bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&payload).Encode(body))
		}
		req := httptest.NewRequest(method, path, &payload)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	status, res := call("POST", "/api/payments/initiate", fiber.Map{"course_id": course.ID})
	require.Equal(t, fiber.StatusOK, status, res.Message)
	txRef, _ := res.Data["tx_ref"].(string)
	paymentID, _ := res.Data["payment_id"].(string)
	require.NotEmpty(t, txRef)
	assert.Contains(t, res.Data["payment_url"], "tx_ref="+txRef)

	status, res = call("POST", "/api/payments/verify", fiber.Map{"tx_ref": txRef, "status": "successful"})
	require.Equal(t, fiber.StatusOK, status, res.Message)
	assert.Equal(t, true, res.Data["enrollment_created"])
	assert.Equal(t, "Advanced Go", res.Data["course_title"])

	status, res = call("POST", "/api/payments/verify", fiber.Map{"tx_ref": txRef})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, res.Data["enrollment_created"])

	var enrollments int64
	db.Model(&courseModels.Enrollment{}).Where("student_id = ? AND course_id = ?", student.ID, course.ID).Count(&enrollments)
	assert.EqualValues(t, 1, enrollments)

	status, res = call("GET", "/api/payments/"+paymentID+"/status", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, courseModels.PaymentCompleted, res.Data["status"])

	status, _ = call("POST", "/api/payments/initiate", fiber.Map{"course_id": course.ID})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = call("POST", "/api/payments/verify", fiber.Map{"tx_ref": "MOCK-unknown"})
	assert.Equal(t, fiber.StatusNotFound, status)
}
