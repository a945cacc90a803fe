package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginTracking keeps one row per successful login
type LoginTracking struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"index"`
	IPAddress string    `json:"ip_address" gorm:"size:45"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}
