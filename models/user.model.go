package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

type User struct {
	gorm.Model
	Username            string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName           string     `gorm:"size:150;default:''" json:"first_name"`
	LastName            string     `gorm:"size:150;default:''" json:"last_name"`
	Email               string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Role                string     `gorm:"size:10;default:'student'" json:"role"` // student, tutor, admin
	PhoneNumber         string     `gorm:"size:15;default:''" json:"phone_number"`
	ProfilePicture      string     `gorm:"default:''" json:"profile_picture"`
	DateOfBirth         *time.Time `json:"date_of_birth"`
	Password            string     `gorm:"not null" json:"-"`
	IsVerified          bool       `gorm:"default:false" json:"is_verified"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	LastLogin           *time.Time `json:"last_login"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	IsBlocked           bool       `gorm:"default:false" json:"-"`
	BlockedUntil        *time.Time `json:"-"`
	IsDeleted           bool       `gorm:"default:false" json:"-"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsTutor() bool   { return u.Role == RoleTutor }
func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
