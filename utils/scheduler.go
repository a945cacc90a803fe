package utils

import (
	"log"
	"time"

	"lms/config"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string, args ...interface{}) {
	log.Printf("[Cron %s] "+message, append([]interface{}{time.Now().Format(time.RFC3339)}, args...)...)
}

// RefreshAllLessonCounts rewrites total_lessons for every course and reports how many changed
func RefreshAllLessonCounts(db *gorm.DB) (int, error) {
	var courses []courseModels.Course
	if err := db.Select("id", "title", "total_lessons").Where("is_deleted = ?", false).Find(&courses).Error; err != nil {
		return 0, err
	}

	updated := 0
	for _, c := range courses {
		count, err := courseModels.RefreshLessonCount(db, c.ID)
		if err != nil {
			return updated, err
		}
		if count != c.TotalLessons {
			updated++
			logScheduler("Updated %s: %d -> %d lessons", c.Title, c.TotalLessons, count)
		}
	}
	return updated, nil
}

// PurgeExpiredTokens drops blacklist rows whose tokens can no longer be presented
func PurgeExpiredTokens(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Unscoped().Where("expires_at < ?", now).Delete(&models.TokenBlacklist{})
	return res.RowsAffected, res.Error
}

// ExpireStalePayments cancels pending payments created before cutoff
func ExpireStalePayments(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Model(&courseModels.Payment{}).
		Where("status = ? AND created_at < ?", courseModels.PaymentPending, cutoff).
		Update("status", courseModels.PaymentCancelled)
	return res.RowsAffected, res.Error
}

// InitializeSchedulers registers the maintenance jobs and starts the cron runner
func InitializeSchedulers(db *gorm.DB, cfg *config.Config) *cron.Cron {
	loc, err := time.LoadLocation(cfg.CronLocation)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	c.AddFunc("0 2 * * *", func() {
		n, err := RefreshAllLessonCounts(db)
		if err != nil {
			logScheduler("lesson count refresh failed: %v", err)
			return
		}
		logScheduler("lesson counts refreshed, %d courses changed", n)
	})

	c.AddFunc("@hourly", func() {
		n, err := PurgeExpiredTokens(db, time.Now())
		if err != nil {
			logScheduler("token blacklist purge failed: %v", err)
			return
		}
		logScheduler("purged %d expired blacklist entries", n)
	})

	c.AddFunc("*/30 * * * *", func() {
		n, err := ExpireStalePayments(db, time.Now().Add(-cfg.PendingPaymentTTL))
		if err != nil {
			logScheduler("stale payment expiry failed: %v", err)
			return
		}
		if n > 0 {
			logScheduler("cancelled %d stale pending payments", n)
		}
	})

	c.Start()
	logScheduler("schedulers started (%s)", loc)
	return c
}
