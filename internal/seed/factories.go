// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"tribune/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Signature: gofakeit.Phrase(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTopic constructs and persists a topic with its first post. Roughly
// half the generated topics are questions so solved-state flows have data
// to chew on.
func (f *Factory) CreateTopic(user *models.User, categoryID uint, overrides ...func(*models.Topic)) (*models.Topic, error) {
	kind := models.TopicKindNote
	if f.rng.Intn(2) == 0 {
		kind = models.TopicKindQuestion
	}

	topic := &models.Topic{
		CategoryID: categoryID,
		UserID:     user.ID,
		Title:      gofakeit.Question(),
		Kind:       kind,
		CreatedAt:  f.backdated(),
	}

	for _, override := range overrides {
		override(topic)
	}

	if err := f.db.Create(topic).Error; err != nil {
		return nil, err
	}

	if _, err := f.CreatePost(user, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// CreatePost constructs and persists a reply in the given topic. A small
// share of posts carries the anonymous flag; mod-only posts are only
// produced through WithModOnly so the seeder controls who authors them.
func (f *Factory) CreatePost(user *models.User, topic *models.Topic, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		TopicID:    topic.ID,
		CategoryID: topic.CategoryID,
		UserID:     user.ID,
		Content:    gofakeit.Paragraph(1, 3, 12, "\n"),
		Anonymous:  models.Flag(f.rng.Intn(10) == 0),
		CreatedAt:  f.backdated(),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// WithModOnly marks a generated post as mod-only.
func WithModOnly() func(*models.Post) {
	return func(p *models.Post) {
		p.ModOnly = true
	}
}

// backdated spreads created_at over the configured window so listings have
// a realistic sort order.
func (f *Factory) backdated() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}
