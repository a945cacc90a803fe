package main

import (
	"log"

	"lms/config"
	authController "lms/controllers/auth"
	blogController "lms/controllers/blog"
	contactController "lms/controllers/contact"
	courseController "lms/controllers/course"
	paymentController "lms/controllers/payment"
	"lms/database"
	"lms/middleware"
	"lms/routers/authRoutes"
	"lms/routers/blogRoutes"
	"lms/routers/contactRoutes"
	"lms/routers/courseRoutes"
	"lms/routers/paymentRoutes"
	"lms/services/learning"
	"lms/services/otp"
	"lms/services/payment"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	cfg := config.AppConfig
	db := database.Database.Db

	mailer := utils.NewMailer(cfg.MailConfig())
	emailService := utils.NewEmailService(mailer, cfg.EmailFromName)

	otpManager := otp.NewManager(db, emailService, otp.ConfigFrom(cfg.OTPConfig()))
	engine := learning.NewEngine(db)

	gateway, err := payment.NewGateway(cfg.PaymentConfig())
	if err != nil {
		log.Fatalf("Failed to configure payment provider: %v", err)
	}
	paymentService := payment.NewService(db, gateway, cfg.PaymentConfig())
	log.Printf("Payment provider: %s", paymentService.Provider())

	app := fiber.New(fiber.Config{
		AppName:   cfg.EmailFromName,
		BodyLimit: 4 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(middleware.GlobalRateLimiter())

	app.Static("/uploads", cfg.UploadDir)

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})

	authRoutes.SetupAuthRoutes(app, authController.New(db, otpManager))
	courseRoutes.SetupCourseRoutes(app, courseController.New(db, engine, emailService))
	paymentRoutes.SetupPaymentRoutes(app, paymentController.New(db, paymentService, emailService))
	blogRoutes.SetupBlogRoutes(app, blogController.New(db))
	contactRoutes.SetupContactRoutes(app, contactController.New(db, emailService))

	if cfg.EnableCronJob {
		utils.InitializeSchedulers(db, cfg)
	}

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
