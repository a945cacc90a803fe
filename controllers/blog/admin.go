package blogController

import (
	"errors"
	"log"
	"strconv"
	"time"

	"lms/middleware"
	blogModels "lms/models/blog"
	"lms/utils"
	blogValidator "lms/validators/blog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errUnknownTag = errors.New("unknown tag")
var errUnknownCategory = errors.New("unknown category")

func (bc *BlogController) resolveTags(tx *gorm.DB, ids []uint) ([]blogModels.Tag, error) {
	if len(ids) == 0 {
		return []blogModels.Tag{}, nil
	}
	var tags []blogModels.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	if len(tags) != len(seen) {
		return nil, errUnknownTag
	}
	return tags, nil
}

func checkCategory(tx *gorm.DB, id *uint) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&blogModels.Category{}).Where("id = ?", *id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errUnknownCategory
	}
	return nil
}

func postSaveError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errUnknownTag):
		return middleware.ValidationErrorResponse(c, map[string]string{"tag_ids": "Contains an unknown tag!"})
	case errors.Is(err, errUnknownCategory):
		return middleware.ValidationErrorResponse(c, map[string]string{"category_id": "Category not found!"})
	}
	log.Printf("[Blog] failed to save post: %v", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save post!", nil)
}

// AdminListPosts includes drafts and supports the same filters as the public list plus status
func (bc *BlogController) AdminListPosts(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPostList").(*blogValidator.PostListQuery)
	paging := utils.ResolvePaging(c, 20, 100)

	query := bc.db.Model(&blogModels.Post{})
	if reqData.Status != "" {
		query = query.Where("status = ?", reqData.Status)
	}
	query = bc.filterPosts(query, reqData).Session(&gorm.Session{})

	var total int64
	var posts []blogModels.Post
	query.Count(&total)
	if err := query.Preload("Author", authorPreload).Preload("Category").Preload("Tags").
		Order("created_at DESC").Offset(paging.Offset).Limit(paging.Limit).
		Find(&posts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch posts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Posts fetched successfully.", fiber.Map{
		"posts":      posts,
		"pagination": paging.Meta(total),
	})
}

func (bc *BlogController) AdminGetPost(c *fiber.Ctx) error {
	var post blogModels.Post
	if err := bc.db.Preload("Author", authorPreload).Preload("Category").Preload("Tags").
		First(&post, utils.ParamUint(c, "id")).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Post not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Post fetched successfully.", post)
}

func (bc *BlogController) CreatePost(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPost").(*blogValidator.PostRequest)

	post := blogModels.Post{
		Title:           reqData.Title,
		AuthorID:        utils.UserID(c),
		CategoryID:      reqData.CategoryID,
		Excerpt:         reqData.Excerpt,
		Content:         reqData.Content,
		FeaturedImage:   reqData.FeaturedImage,
		MetaDescription: reqData.MetaDescription,
		Status:          reqData.Status,
	}
	if post.Status == "" {
		post.Status = blogModels.PostStatusDraft
	}
	if post.Status == blogModels.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	err := bc.db.Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, post.CategoryID); err != nil {
			return err
		}
		tags, err := bc.resolveTags(tx, reqData.TagIDs)
		if err != nil {
			return err
		}
		post.Slug = uniqueSlug(tx, &blogModels.Post{}, post.Title, 0)
		post.Tags = tags
		return tx.Create(&post).Error
	})
	if err != nil {
		return postSaveError(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Post created successfully.", post)
}

// UpdatePost keeps the slug stable so published links keep working
func (bc *BlogController) UpdatePost(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPost").(*blogValidator.UpdatePostRequest)

	var post blogModels.Post
	if err := bc.db.First(&post, utils.ParamUint(c, "id")).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Post not found!", nil)
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Content != nil {
		updates["content"] = *reqData.Content
	}
	if reqData.Excerpt != nil {
		updates["excerpt"] = *reqData.Excerpt
	}
	if reqData.CategoryID != nil {
		updates["category_id"] = *reqData.CategoryID
	}
	if reqData.FeaturedImage != nil {
		updates["featured_image"] = *reqData.FeaturedImage
	}
	if reqData.MetaDescription != nil {
		updates["meta_description"] = *reqData.MetaDescription
	}
	if reqData.Status != nil {
		updates["status"] = *reqData.Status
		if *reqData.Status == blogModels.PostStatusPublished && post.PublishedAt == nil {
			updates["published_at"] = time.Now()
		}
	}

	err := bc.db.Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, reqData.CategoryID); err != nil {
			return err
		}
		if err := tx.Model(&post).UpdateColumns(updates).Error; err != nil {
			return err
		}
		if reqData.TagIDs == nil {
			return nil
		}
		tags, err := bc.resolveTags(tx, *reqData.TagIDs)
		if err != nil {
			return err
		}
		return tx.Model(&post).Association("Tags").Replace(tags)
	})
	if err != nil {
		return postSaveError(c, err)
	}

	bc.db.Preload("Category").Preload("Tags").First(&post, post.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Post updated successfully.", post)
}

func (bc *BlogController) DeletePost(c *fiber.Ctx) error {
	res := bc.db.Delete(&blogModels.Post{}, utils.ParamUint(c, "id"))
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete post!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Post not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Post deleted successfully.", nil)
}

func (bc *BlogController) CreateCategory(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCategory").(*blogValidator.CategoryRequest)

	category := blogModels.Category{
		Name:        reqData.Name,
		Slug:        uniqueSlug(bc.db, &blogModels.Category{}, reqData.Name, 0),
		Description: reqData.Description,
	}
	if err := bc.db.Create(&category).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Category already exists!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create category!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully.", category)
}

func (bc *BlogController) CreateTag(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTag").(*blogValidator.TagRequest)

	tag := blogModels.Tag{
		Name: reqData.Name,
		Slug: uniqueSlug(bc.db, &blogModels.Tag{}, reqData.Name, 0),
	}
	if err := bc.db.Create(&tag).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Tag already exists!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create tag!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Tag created successfully.", tag)
}

// ListComments filters by ?approved=true|false and ?post_id=
func (bc *BlogController) ListComments(c *fiber.Ctx) error {
	paging := utils.ResolvePaging(c, 20, 100)

	query := bc.db.Model(&blogModels.Comment{})
	if approved, err := strconv.ParseBool(c.Query("approved")); err == nil {
		query = query.Where("is_approved = ?", approved)
	}
	if postID, err := strconv.ParseUint(c.Query("post_id"), 10, 64); err == nil {
		query = query.Where("post_id = ?", postID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	var comments []blogModels.Comment
	query.Count(&total)
	if err := query.Order("created_at DESC").Offset(paging.Offset).Limit(paging.Limit).
		Find(&comments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch comments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comments fetched successfully.", fiber.Map{
		"comments":   comments,
		"pagination": paging.Meta(total),
	})
}

// ToggleComment flips the approval flag
func (bc *BlogController) ToggleComment(c *fiber.Ctx) error {
	var comment blogModels.Comment
	if err := bc.db.First(&comment, utils.ParamUint(c, "id")).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Comment not found!", nil)
	}

	comment.IsApproved = !comment.IsApproved
	if err := bc.db.Model(&comment).UpdateColumn("is_approved", comment.IsApproved).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update comment!", nil)
	}

	message := "Comment unapproved."
	if comment.IsApproved {
		message = "Comment approved."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, comment)
}

func (bc *BlogController) DeleteComment(c *fiber.Ctx) error {
	res := bc.db.Delete(&blogModels.Comment{}, utils.ParamUint(c, "id"))
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete comment!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Comment not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment deleted successfully.", nil)
}

func (bc *BlogController) AdminStats(c *fiber.Ctx) error {
	var published, drafts, views, pending, approved, viewers int64
	bc.db.Model(&blogModels.Post{}).Where("status = ?", blogModels.PostStatusPublished).Count(&published)
	bc.db.Model(&blogModels.Post{}).Where("status = ?", blogModels.PostStatusDraft).Count(&drafts)
	bc.db.Model(&blogModels.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&views)
	bc.db.Model(&blogModels.Comment{}).Where("is_approved = ?", false).Count(&pending)
	bc.db.Model(&blogModels.Comment{}).Where("is_approved = ?", true).Count(&approved)
	bc.db.Model(&blogModels.PostView{}).Distinct("ip_address").Count(&viewers)

	var popular []blogModels.Post
	bc.db.Select("id", "title", "slug", "views", "published_at").
		Where("status = ?", blogModels.PostStatusPublished).
		Order("views DESC").Limit(5).Find(&popular)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blog stats fetched successfully.", fiber.Map{
		"published_posts":   published,
		"draft_posts":       drafts,
		"total_views":       views,
		"unique_viewers":    viewers,
		"pending_comments":  pending,
		"approved_comments": approved,
		"popular_posts":     popular,
	})
}
