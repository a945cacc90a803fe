package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactSubmission is a message left through the public contact form
type ContactSubmission struct {
	gorm.Model
	FirstName string     `gorm:"size:100;not null" json:"first_name"`
	LastName  string     `gorm:"size:100;not null" json:"last_name"`
	Email     string     `gorm:"size:254;index;not null" json:"email"`
	Phone     string     `gorm:"size:20" json:"phone"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Status    string     `gorm:"size:10;default:'new';index" json:"status"`
	RepliedAt *time.Time `json:"replied_at"`
	IPAddress string     `gorm:"size:45" json:"ip_address"`
}

func (c ContactSubmission) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func IsValidContactStatus(status string) bool {
	switch status {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived:
		return true
	}
	return false
}
