package course

import "gorm.io/gorm"

// Category groups courses in the catalogue
type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Color       string `json:"color" gorm:"size:7;default:'#3B82F6'"` // hex colour
	Icon        string `json:"icon" gorm:"size:50"`
}
