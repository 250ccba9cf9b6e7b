package seed

import (
	"fmt"
	"log"
	"time"

	"tribune/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumTopics   int
	ShouldClean bool
	// SkipBcrypt stores a plaintext password instead of hashing. Dev only.
	SkipBcrypt bool
	// MaxDays is the created_at backdating window.
	MaxDays int
}

// Seed populates the database with test data: the built-in categories, a
// population of users with a couple of admins and per-category moderators,
// and topics with replies covering the anonymous, mod-only and solved
// flows.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d topics...", opts.NumUsers, opts.NumTopics)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	categories, err := Categories(db)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	log.Printf("%d categories available", len(categories))

	factory := NewFactory(db, opts)

	users, admins, err := createUsers(db, factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created (%d admins)", len(users), len(admins))

	mods, err := assignModerators(db, users, categories)
	if err != nil {
		return fmt.Errorf("failed to assign moderators: %w", err)
	}
	log.Printf("%d moderator assignments created", mods)

	topics, err := createTopics(db, factory, users, admins, categories, opts.NumTopics)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	log.Printf("%d topics created", len(topics))

	solved, err := solveSomeQuestions(db, topics)
	if err != nil {
		return fmt.Errorf("failed to mark solved questions: %w", err)
	}
	log.Printf("%d questions marked solved", solved)

	log.Println("Database seeding completed successfully")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	for _, table := range []string{"topic_events", "posts", "topics", "category_moderators", "categories", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

// createUsers builds the population. The first user is always the "admin"
// account with a known password so local logins work out of the box.
func createUsers(db *gorm.DB, factory *Factory, count int) ([]*models.User, []*models.User, error) {
	if count < 3 {
		count = 3
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	admin := &models.User{
		Username: "admin",
		Email:    "admin@tribune.local",
		Password: string(hashed),
		IsAdmin:  true,
	}
	if err := db.Where("username = ?", "admin").FirstOrCreate(admin).Error; err != nil {
		return nil, nil, err
	}

	globalMod, err := factory.CreateUser(func(u *models.User) {
		u.IsGlobalMod = true
	})
	if err != nil {
		return nil, nil, err
	}

	users := []*models.User{admin, globalMod}
	for i := len(users); i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return nil, nil, err
		}
		users = append(users, user)
	}

	return users, []*models.User{admin, globalMod}, nil
}

// assignModerators gives each category one moderator drawn from the
// regular population.
func assignModerators(db *gorm.DB, users []*models.User, categories []*models.Category) (int, error) {
	assigned := 0
	for i, category := range categories {
		// skip the admin and global mod at the head of the slice
		user := users[2+(i%(len(users)-2))]
		mod := &models.CategoryModerator{CategoryID: category.ID, UserID: user.ID}
		if err := db.Where("category_id = ? AND user_id = ?", category.ID, user.ID).
			FirstOrCreate(mod).Error; err != nil {
			return assigned, err
		}
		assigned++
	}
	return assigned, nil
}

func createTopics(db *gorm.DB, factory *Factory, users, admins []*models.User, categories []*models.Category, count int) ([]*models.Topic, error) {
	if count <= 0 {
		count = 20
	}

	topics := make([]*models.Topic, 0, count)
	for i := 0; i < count; i++ {
		author := users[factory.rng.Intn(len(users))]
		category := categories[factory.rng.Intn(len(categories))]

		topic, err := factory.CreateTopic(author, category.ID)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)

		replies := factory.rng.Intn(5)
		for r := 0; r < replies; r++ {
			replier := users[factory.rng.Intn(len(users))]
			if _, err := factory.CreatePost(replier, topic); err != nil {
				return nil, err
			}
		}

		// every few topics get a mod-only follow-up from a privileged account
		if i%4 == 0 {
			staff := admins[factory.rng.Intn(len(admins))]
			if _, err := factory.CreatePost(staff, topic, WithModOnly()); err != nil {
				return nil, err
			}
		}
	}
	return topics, nil
}

// solveSomeQuestions marks roughly a third of the seeded questions solved,
// appending the matching event so the audit trail looks lived-in.
func solveSomeQuestions(db *gorm.DB, topics []*models.Topic) (int, error) {
	solved := 0
	for i, topic := range topics {
		if topic.Kind != models.TopicKindQuestion || i%3 != 0 {
			continue
		}
		if err := db.Model(&models.Topic{}).Where("id = ?", topic.ID).
			Update("solved", models.TopicSolved).Error; err != nil {
			return solved, err
		}
		event := &models.TopicEvent{
			TopicID:   topic.ID,
			Type:      models.EventSolve,
			UserID:    topic.UserID,
			Timestamp: topic.CreatedAt.Add(48 * time.Hour),
		}
		if err := db.Create(event).Error; err != nil {
			return solved, err
		}
		solved++
	}
	return solved, nil
}
