package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"lms/config"
	"lms/models"
	blogModels "lms/models/blog"
	courseModels "lms/models/course"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, tunes the pool and runs migrations
func ConnectDb() {
	cfg := config.AppConfig

	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.DBDriver, err)
		os.Exit(2)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)   // Maximum open connections
	sqlDB.SetMaxIdleConns(5)    // Maximum idle connections
	sqlDB.SetConnMaxLifetime(0) // No timeout

	log.Println("Running Migrations...")
	if err := Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully.")

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// Open builds a gorm handle for postgres, mysql or sqlite depending on DB_DRIVER
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: newGormLogger(), TranslateError: true}

	switch cfg.DBDriver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)
		return gorm.Open(postgres.Open(dsn), gormCfg)
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return gorm.Open(mysql.Open(dsn), gormCfg)
	case "sqlite":
		return NewSQLite(cfg.DBName + ".db")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// NewSQLite opens a sqlite database; tests pass an in-memory DSN
func NewSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger(), TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; one connection avoids "database is locked"
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates every table the service owns
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.TutorProfile{},
		&models.AdminProfile{},
		&models.OTP{},
		&models.LoginTracking{},
		&models.TokenBlacklist{},
		&models.ContactSubmission{},

		&courseModels.Category{},
		&courseModels.Course{},
		&courseModels.Lesson{},
		&courseModels.Quiz{},
		&courseModels.QuizQuestion{},
		&courseModels.Enrollment{},
		&courseModels.LessonProgress{},
		&courseModels.QuizAttempt{},
		&courseModels.QuizAnswer{},
		&courseModels.CourseReview{},
		&courseModels.Certificate{},
		&courseModels.Payment{},

		&blogModels.Category{},
		&blogModels.Tag{},
		&blogModels.Post{},
		&blogModels.Comment{},
		&blogModels.PostView{},
	)
}

func newGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
