package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	"lms/validators"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the catalogue and learning routes
func SetupCourseRoutes(app *fiber.App, cc *controllers.CourseController) {
	api := app.Group("/api")
	student := middleware.RequireRole(models.RoleStudent)
	tutor := middleware.RequireRole(models.RoleTutor, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)

	// Categories
	api.Get("/categories", cc.ListCategories)
	api.Post("/categories", middleware.JWTMiddleware, admin, courseValidator.CreateCategory(), cc.CreateCategory)

	courseGroup := api.Group("/courses")

	// Catalogue
	courseGroup.Get("/", courseValidator.CourseList(), cc.ListCourses)
	courseGroup.Get("/:id", validators.Params("id"), middleware.OptionalJWT, cc.GetCourse)
	courseGroup.Post("/", middleware.JWTMiddleware, tutor, courseValidator.CreateCourse(), cc.CreateCourse)
	courseGroup.Put("/:id", validators.Params("id"), middleware.JWTMiddleware, tutor, courseValidator.UpdateCourse(), cc.UpdateCourse)
	courseGroup.Delete("/:id", validators.Params("id"), middleware.JWTMiddleware, tutor, cc.DeleteCourse)
	courseGroup.Put("/:id/thumbnail", validators.Params("id"), middleware.JWTMiddleware, tutor, cc.UploadThumbnail)

	// Lessons
	courseGroup.Get("/:id/lessons", validators.Params("id"), middleware.OptionalJWT, cc.ListLessons)
	courseGroup.Post("/:id/lessons", validators.Params("id"), middleware.JWTMiddleware, tutor, courseValidator.CreateLesson(), cc.CreateLesson)

	// Enrollment and progress
	courseGroup.Post("/:id/enroll", validators.Params("id"), middleware.JWTMiddleware, student, cc.Enroll)
	courseGroup.Get("/:id/progress", validators.Params("id"), middleware.JWTMiddleware, cc.CourseProgress)

	// Reviews and certificate
	courseGroup.Get("/:id/reviews", validators.Params("id"), cc.ListReviews)
	courseGroup.Post("/:id/reviews", validators.Params("id"), middleware.JWTMiddleware, student, courseValidator.CreateReview(), cc.SaveReview)
	courseGroup.Post("/:id/certificate", validators.Params("id"), middleware.JWTMiddleware, student, cc.GenerateCertificate)

	lessonGroup := api.Group("/lessons", middleware.JWTMiddleware)
	lessonGroup.Get("/:lesson_id", validators.Params("lesson_id"), cc.GetLesson)
	lessonGroup.Put("/:lesson_id", validators.Params("lesson_id"), tutor, courseValidator.UpdateLesson(), cc.UpdateLesson)
	lessonGroup.Delete("/:lesson_id", validators.Params("lesson_id"), tutor, cc.DeleteLesson)
	lessonGroup.Post("/:lesson_id/complete", validators.Params("lesson_id"), student, cc.CompleteLesson)
	lessonGroup.Get("/:lesson_id/quiz", validators.Params("lesson_id"), cc.GetQuiz)
	lessonGroup.Post("/:lesson_id/quiz", validators.Params("lesson_id"), tutor, courseValidator.SaveQuiz(), cc.SaveQuiz)

	quizGroup := api.Group("/quizzes", middleware.JWTMiddleware)
	quizGroup.Post("/:quiz_id/submit", validators.Params("quiz_id"), student, courseValidator.SubmitQuiz(), cc.SubmitQuiz)
	quizGroup.Get("/:quiz_id/attempts", validators.Params("quiz_id"), cc.QuizAttempts)

	// Student area
	studentGroup := api.Group("/student", middleware.JWTMiddleware)
	studentGroup.Get("/enrollments", cc.MyEnrollments)
	studentGroup.Get("/dashboard", cc.StudentDashboard)
	studentGroup.Get("/certificates", cc.ListCertificates)
	studentGroup.Get("/certificates/:certificate_id", cc.GetCertificate)

	// Tutor area
	tutorGroup := api.Group("/tutor", middleware.JWTMiddleware, tutor)
	tutorGroup.Get("/dashboard", cc.TutorDashboard)
	tutorGroup.Get("/courses", cc.TutorCourses)
	tutorGroup.Get("/courses/:id", validators.Params("id"), cc.TutorCourseDetail)
	tutorGroup.Get("/courses/:id/stats", validators.Params("id"), cc.TutorCourseStats)
}
