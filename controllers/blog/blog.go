package blogController

import (
	"fmt"
	"strings"

	"lms/middleware"
	blogModels "lms/models/blog"
	"lms/utils"
	blogValidator "lms/validators/blog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlogController struct {
	db *gorm.DB
}

func New(db *gorm.DB) *BlogController {
	return &BlogController{db: db}
}

func authorPreload(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "first_name", "last_name", "profile_picture")
}

// filterPosts applies the category/tag slug and search filters shared by the public and admin lists
func (bc *BlogController) filterPosts(query *gorm.DB, q *blogValidator.PostListQuery) *gorm.DB {
	if q.Category != "" {
		query = query.Where("category_id IN (?)",
			bc.db.Model(&blogModels.Category{}).Select("id").Where("slug = ?", q.Category))
	}
	if q.Tag != "" {
		query = query.Where("id IN (?)",
			bc.db.Table("blog_post_tags").Select("post_id").Where("tag_id IN (?)",
				bc.db.Model(&blogModels.Tag{}).Select("id").Where("slug = ?", q.Tag)))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(excerpt) LIKE ?", like, like, like)
	}
	return query
}

// ListPosts returns published posts, newest first, without their bodies
func (bc *BlogController) ListPosts(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPostList").(*blogValidator.PostListQuery)
	paging := utils.ResolvePaging(c, 12, 50)

	query := bc.db.Model(&blogModels.Post{}).Where("status = ?", blogModels.PostStatusPublished)
	query = bc.filterPosts(query, reqData).Session(&gorm.Session{})

	var total int64
	var posts []blogModels.Post
	query.Count(&total)
	if err := query.Preload("Author", authorPreload).Preload("Category").Preload("Tags").
		Order("published_at DESC, id DESC").Offset(paging.Offset).Limit(paging.Limit).
		Find(&posts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch posts!", nil)
	}
	for i := range posts {
		posts[i].Content = ""
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Posts fetched successfully.", fiber.Map{
		"posts":      posts,
		"pagination": paging.Meta(total),
	})
}

// GetPost shows a published post by slug and counts one view per client IP
func (bc *BlogController) GetPost(c *fiber.Ctx) error {
	var post blogModels.Post
	err := bc.db.Preload("Author", authorPreload).Preload("Category").Preload("Tags").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_approved = ?", true).Order("created_at DESC")
		}).
		Where("slug = ? AND status = ?", c.Params("slug"), blogModels.PostStatusPublished).
		First(&post).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Post not found!", nil)
	}

	if bc.recordView(post.ID, utils.ClientIP(c), c.Get(fiber.HeaderUserAgent)) {
		post.Views++
	}

	var related []blogModels.Post
	if post.CategoryID != nil {
		bc.db.Select("id", "title", "slug", "excerpt", "featured_image", "published_at").
			Where("category_id = ? AND status = ? AND id <> ?", *post.CategoryID, blogModels.PostStatusPublished, post.ID).
			Order("published_at DESC").Limit(3).Find(&related)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Post fetched successfully.", fiber.Map{
		"post":    post,
		"related": related,
	})
}

// recordView reports whether this ip is a new viewer of the post
func (bc *BlogController) recordView(postID uint, ip, userAgent string) bool {
	view := blogModels.PostView{PostID: postID, IPAddress: ip, UserAgent: userAgent}
	res := bc.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "ip_address"}},
		DoNothing: true,
	}).Create(&view)
	if res.Error != nil || res.RowsAffected == 0 {
		return false
	}
	bc.db.Model(&blogModels.Post{}).Where("id = ?", postID).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	return true
}

func (bc *BlogController) ListCategories(c *fiber.Ctx) error {
	var categories []blogModels.Category
	err := bc.db.Model(&blogModels.Category{}).
		Select("blog_categories.*, (SELECT COUNT(*) FROM blog_posts WHERE blog_posts.category_id = blog_categories.id AND blog_posts.status = ? AND blog_posts.deleted_at IS NULL) AS post_count",
			blogModels.PostStatusPublished).
		Order("name ASC").Find(&categories).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch categories!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully.", categories)
}

func (bc *BlogController) ListTags(c *fiber.Ctx) error {
	var tags []blogModels.Tag
	err := bc.db.Model(&blogModels.Tag{}).
		Select("blog_tags.*, (SELECT COUNT(*) FROM blog_post_tags JOIN blog_posts ON blog_posts.id = blog_post_tags.post_id WHERE blog_post_tags.tag_id = blog_tags.id AND blog_posts.status = ? AND blog_posts.deleted_at IS NULL) AS post_count",
			blogModels.PostStatusPublished).
		Order("name ASC").Find(&tags).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch tags!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tags fetched successfully.", tags)
}

func (bc *BlogController) Stats(c *fiber.Ctx) error {
	var posts, categories, tags, comments, views int64
	published := bc.db.Model(&blogModels.Post{}).Where("status = ?", blogModels.PostStatusPublished).Session(&gorm.Session{})
	published.Count(&posts)
	published.Select("COALESCE(SUM(views), 0)").Scan(&views)
	bc.db.Model(&blogModels.Category{}).Count(&categories)
	bc.db.Model(&blogModels.Tag{}).Count(&tags)
	bc.db.Model(&blogModels.Comment{}).Where("is_approved = ?", true).Count(&comments)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blog stats fetched successfully.", fiber.Map{
		"total_posts":      posts,
		"total_views":      views,
		"total_categories": categories,
		"total_tags":       tags,
		"total_comments":   comments,
	})
}

// AddComment queues a reader comment for moderation
func (bc *BlogController) AddComment(c *fiber.Ctx) error {
	reqData := c.Locals("validatedComment").(*blogValidator.CommentRequest)

	var post blogModels.Post
	if err := bc.db.Select("id").
		Where("slug = ? AND status = ?", c.Params("slug"), blogModels.PostStatusPublished).
		First(&post).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Post not found!", nil)
	}

	comment := blogModels.Comment{
		PostID:  post.ID,
		Name:    reqData.Name,
		Email:   reqData.Email,
		Content: reqData.Content,
	}
	if err := bc.db.Create(&comment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add comment!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Comment submitted and awaiting moderation.", comment)
}

// uniqueSlug appends -2, -3, ... until no row of model (deleted ones included) uses the slug
func uniqueSlug(db *gorm.DB, model interface{}, name string, excludeID uint) string {
	base := utils.Slugify(name)
	if base == "" {
		base = "untitled"
	}
	slug := base
	for i := 2; ; i++ {
		var n int64
		q := db.Unscoped().Model(model).Where("slug = ?", slug)
		if excludeID > 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&n).Error; err != nil || n == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
