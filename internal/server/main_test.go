package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tribune/internal/config"
	"tribune/internal/database"
	"tribune/internal/featureflags"
	"tribune/internal/models"
	"tribune/internal/repository"
	"tribune/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestServer builds a Server against an in-memory SQLite database with
// no Redis. Prometheus middleware is intentionally absent so parallel tests
// don't fight over collector registration.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		JWTSecret: "unit-test-secret-0123456789abcdef",
		Env:       "test",
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	postRepo := repository.NewPostRepository(db)
	eventRepo := repository.NewEventRepository(db)

	s := &Server{
		config:       cfg,
		db:           db,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		topicRepo:    topicRepo,
		postRepo:     postRepo,
		eventRepo:    eventRepo,
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),
	}
	s.identity = service.NewIdentityService(userRepo)
	s.postService = service.NewPostService(postRepo, topicRepo, nil)
	s.topicService = service.NewTopicService(topicRepo, postRepo, eventRepo, categoryRepo, nil)

	return s, db
}

// testApp returns a fiber app that pre-authenticates every request as uid.
// Uid 0 leaves requests unauthenticated.
func testApp(uid uint) *fiber.App {
	app := fiber.New()
	if uid != 0 {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", uid)
			return c.Next()
		})
	}
	return app
}

func postJSONPut(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func createTestUser(t *testing.T, db *gorm.DB, username string, admin bool) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		IsAdmin:  admin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return category
}

func createTestTopic(t *testing.T, db *gorm.DB, cid, uid uint, kind string) *models.Topic {
	t.Helper()
	topic := &models.Topic{
		CategoryID: cid,
		UserID:     uid,
		Title:      "test topic",
		Kind:       kind,
	}
	if err := db.Create(topic).Error; err != nil {
		t.Fatalf("create topic: %v", err)
	}
	return topic
}

func createTestPost(t *testing.T, db *gorm.DB, topic *models.Topic, uid uint, content string, modOnly bool) *models.Post {
	t.Helper()
	post := &models.Post{
		TopicID:    topic.ID,
		CategoryID: topic.CategoryID,
		UserID:     uid,
		Content:    content,
		ModOnly:    models.Flag(modOnly),
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}
