package blogRoutes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"lms/config"
	blogController "lms/controllers/blog"
	"lms/database"
	"lms/middleware"
	"lms/models"
	blogModels "lms/models/blog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type blogEnv struct {
	t     *testing.T
	app   *fiber.App
	admin string
}

func (e *blogEnv) call(method, path, token, ip string, body, out interface{}) int {
	e.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var res envelope
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&res))
	if out != nil {
		require.NoError(e.t, json.Unmarshal(res.Data, out), res.Message)
	}
	return resp.StatusCode
}

func newBlogEnv(t *testing.T) *blogEnv {
	config.AppConfig = &config.Config{JWTKey: "test-secret", JWTTTL: time.Hour}
	db, err := database.NewSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.Database.Db = db

	admin := models.User{Username: "editor", Email: "editor@example.com", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)
	token, err := middleware.GenerateJWT(admin.ID, "editor", admin.Role, admin.Email)
	require.NoError(t, err)

	app := fiber.New()
	SetupBlogRoutes(app, blogController.New(db))
	return &blogEnv{t: t, app: app, admin: token}
}

func TestPublishReadAndModerate(t *testing.T) {
	e := newBlogEnv(t)

	var category blogModels.Category
	var tag blogModels.Tag
	require.Equal(t, fiber.StatusCreated, e.call("POST", "/api/blog/admin/categories", e.admin, "", fiber.Map{"name": "Study Tips"}, &category))
	require.Equal(t, fiber.StatusCreated, e.call("POST", "/api/blog/admin/tags", e.admin, "", fiber.Map{"name": "Go"}, &tag))
	assert.Equal(t, "study-tips", category.Slug)

	var post blogModels.Post
	require.Equal(t, fiber.StatusCreated, e.call("POST", "/api/blog/admin/posts", e.admin, "", fiber.Map{
		"title":       "Learning Go Fast",
		"content":     "Practice every day and read good code.",
		"category_id": category.ID,
		"tag_ids":     []uint{tag.ID},
		"status":      "published",
	}, &post))
	assert.Equal(t, "learning-go-fast", post.Slug)
	require.NotNil(t, post.PublishedAt)

	var draft blogModels.Post
	require.Equal(t, fiber.StatusCreated, e.call("POST", "/api/blog/admin/posts", e.admin, "", fiber.Map{
		"title":   "Learning Go Fast",
		"content": "A second draft with the same title.",
	}, &draft))
	assert.Equal(t, "learning-go-fast-2", draft.Slug)

	var list struct {
		Posts []blogModels.Post `json:"posts"`
	}
	require.Equal(t, fiber.StatusOK, e.call("GET", "/api/blog/posts?tag=go", "", "", nil, &list))
	require.Len(t, list.Posts, 1)
	assert.Empty(t, list.Posts[0].Content)
	assert.Equal(t, "1 min read", list.Posts[0].ReadTime)

	path := "/api/blog/posts/" + post.Slug
	var detail struct {
		Post blogModels.Post `json:"post"`
	}
	require.Equal(t, fiber.StatusOK, e.call("GET", path, "", "10.0.0.1", nil, &detail))
	assert.Equal(t, 1, detail.Post.Views)
	require.Equal(t, fiber.StatusOK, e.call("GET", path, "", "10.0.0.1", nil, &detail))
	assert.Equal(t, 1, detail.Post.Views)
	require.Equal(t, fiber.StatusOK, e.call("GET", path, "", "10.0.0.2", nil, &detail))
	assert.Equal(t, 2, detail.Post.Views)

	assert.Equal(t, fiber.StatusNotFound, e.call("GET", "/api/blog/posts/"+draft.Slug, "", "", nil, nil))

	var comment blogModels.Comment
	require.Equal(t, fiber.StatusCreated, e.call("POST", path+"/comments", "", "", fiber.Map{
		"name": "Reader", "email": "reader@example.com", "content": "Great post!",
	}, &comment))
	assert.False(t, comment.IsApproved)

	e.call("GET", path, "", "10.0.0.1", nil, &detail)
	assert.Empty(t, detail.Post.Comments)

	require.Equal(t, fiber.StatusOK, e.call("PATCH", fmt.Sprintf("/api/blog/admin/comments/%d/approve", comment.ID), e.admin, "", nil, &comment))
	assert.True(t, comment.IsApproved)

	e.call("GET", path, "", "10.0.0.1", nil, &detail)
	assert.Len(t, detail.Post.Comments, 1)

	var categories []blogModels.Category
	require.Equal(t, fiber.StatusOK, e.call("GET", "/api/blog/categories", "", "", nil, &categories))
	require.Len(t, categories, 1)
	assert.EqualValues(t, 1, categories[0].PostCount)

	var stats map[string]interface{}
	require.Equal(t, fiber.StatusOK, e.call("GET", "/api/blog/admin/stats", e.admin, "", nil, &stats))
	assert.EqualValues(t, 1, stats["published_posts"])
	assert.EqualValues(t, 1, stats["draft_posts"])
	assert.EqualValues(t, 2, stats["unique_viewers"])

	assert.Equal(t, fiber.StatusUnauthorized, e.call("POST", "/api/blog/admin/tags", "", "", fiber.Map{"name": "x"}, nil))
}

func TestReadTimeAndExcerpt(t *testing.T) {
	long := ""
	for i := 0; i < 450; i++ {
		long += "word "
	}
	assert.Equal(t, "2 min read", blogModels.ReadTime(long))
	assert.Equal(t, "1 min read", blogModels.ReadTime(""))
	assert.Len(t, []rune(blogModels.Excerpt(long)), 203)
	assert.Equal(t, "short", blogModels.Excerpt("short"))
}
