package blogRoutes

import (
	blogController "lms/controllers/blog"
	"lms/middleware"
	"lms/models"
	"lms/validators"
	blogValidator "lms/validators/blog"

	"github.com/gofiber/fiber/v2"
)

func SetupBlogRoutes(app *fiber.App, bc *blogController.BlogController) {
	blog := app.Group("/api/blog")

	blog.Get("/posts", blogValidator.PostList(), bc.ListPosts)
	blog.Get("/posts/:slug", bc.GetPost)
	blog.Post("/posts/:slug/comments", middleware.ContactRateLimiter(), blogValidator.CreateComment(), bc.AddComment)
	blog.Get("/categories", bc.ListCategories)
	blog.Get("/tags", bc.ListTags)
	blog.Get("/stats", bc.Stats)

	admin := blog.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/posts", blogValidator.PostList(), bc.AdminListPosts)
	admin.Post("/posts", blogValidator.CreatePost(), bc.CreatePost)
	admin.Get("/posts/:id", validators.Params("id"), bc.AdminGetPost)
	admin.Put("/posts/:id", validators.Params("id"), blogValidator.UpdatePost(), bc.UpdatePost)
	admin.Delete("/posts/:id", validators.Params("id"), bc.DeletePost)
	admin.Post("/categories", blogValidator.CreateCategory(), bc.CreateCategory)
	admin.Post("/tags", blogValidator.CreateTag(), bc.CreateTag)
	admin.Get("/comments", bc.ListComments)
	admin.Patch("/comments/:id/approve", validators.Params("id"), bc.ToggleComment)
	admin.Delete("/comments/:id", validators.Params("id"), bc.DeleteComment)
	admin.Get("/stats", bc.AdminStats)
}
