package blog

import (
	"fmt"
	"strings"
	"time"

	"lms/models"

	"gorm.io/gorm"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"size:120;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	PostCount   int64  `json:"post_count" gorm:"->;-:migration"`
}

func (Category) TableName() string { return "blog_categories" }

type Tag struct {
	gorm.Model
	Name      string `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Slug      string `json:"slug" gorm:"size:60;uniqueIndex;not null"`
	PostCount int64  `json:"post_count" gorm:"->;-:migration"`
}

func (Tag) TableName() string { return "blog_tags" }

type Post struct {
	gorm.Model
	Title           string       `json:"title" gorm:"size:200;not null"`
	Slug            string       `json:"slug" gorm:"size:220;uniqueIndex;not null"`
	AuthorID        uint         `json:"author_id" gorm:"index;not null"`
	Author          *models.User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	CategoryID      *uint        `json:"category_id" gorm:"index"`
	Category        *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Tags            []Tag        `json:"tags" gorm:"many2many:blog_post_tags"`
	Excerpt         string       `json:"excerpt" gorm:"size:300"`
	Content         string       `json:"content,omitempty" gorm:"type:text"`
	FeaturedImage   string       `json:"featured_image"`
	MetaDescription string       `json:"meta_description" gorm:"size:160"`
	Status          string       `json:"status" gorm:"size:10;default:'draft';index"`
	PublishedAt     *time.Time   `json:"published_at"`
	Views           int          `json:"views" gorm:"default:0"`
	Likes           int          `json:"likes" gorm:"default:0"`
	ReadTime        string       `json:"read_time" gorm:"-"`
	Comments        []Comment    `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

func (Post) TableName() string { return "blog_posts" }

// AfterFind fills the derived presentation fields
func (p *Post) AfterFind(tx *gorm.DB) error {
	p.ReadTime = ReadTime(p.Content)
	if p.Excerpt == "" {
		p.Excerpt = Excerpt(p.Content)
	}
	return nil
}

type Comment struct {
	gorm.Model
	PostID     uint   `json:"post_id" gorm:"index;not null"`
	Name       string `json:"name" gorm:"size:100;not null"`
	Email      string `json:"email" gorm:"size:254;not null"`
	Content    string `json:"content" gorm:"type:text;not null"`
	IsApproved bool   `json:"is_approved" gorm:"default:false"`
}

func (Comment) TableName() string { return "blog_comments" }

// PostView records one view per (post, ip)
type PostView struct {
	gorm.Model
	PostID    uint   `json:"post_id" gorm:"not null;uniqueIndex:idx_post_view_ip"`
	IPAddress string `json:"ip_address" gorm:"size:45;not null;uniqueIndex:idx_post_view_ip"`
	UserAgent string `json:"user_agent"`
}

func (PostView) TableName() string { return "blog_post_views" }

// ReadTime assumes 200 words per minute, never less than one minute
func ReadTime(content string) string {
	minutes := len(strings.Fields(content)) / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= 200 {
		return content
	}
	return string(runes[:200]) + "..."
}
