package repository

import (
	"context"
	"testing"

	"tribune/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestTopic(t *testing.T, db *gorm.DB, categoryID, userID uint) *models.Topic {
	topic := &models.Topic{CategoryID: categoryID, UserID: userID, Title: "test topic"}
	require.NoError(t, db.Create(topic).Error)
	return topic
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author")
	category := createTestCategory(t, db, "general")
	topic := createTestTopic(t, db, category.ID, user.ID)

	post := &models.Post{
		TopicID:    topic.ID,
		CategoryID: category.ID,
		UserID:     user.ID,
		Content:    "hello world",
		Anonymous:  true,
		ModOnly:    true,
	}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	// The repository returns stored state untouched: the true author id
	// and raw content, mod-only or not.
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "hello world", got.Content)
	assert.True(t, got.Anonymous.Bool())
	assert.True(t, got.ModOnly.Bool())
	require.NotNil(t, got.User)
	assert.Equal(t, "author", got.User.Username)
}

func TestPostRepository_GetByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author")
	category := createTestCategory(t, db, "general")
	topic := createTestTopic(t, db, category.ID, user.ID)

	var ids []uint
	for i := 0; i < 3; i++ {
		post := &models.Post{TopicID: topic.ID, CategoryID: category.ID, UserID: user.ID, Content: "p"}
		require.NoError(t, repo.Create(ctx, post))
		ids = append(ids, post.ID)
	}

	byID, err := repo.GetByIDs(ctx, append(ids, 9999))
	require.NoError(t, err)
	assert.Len(t, byID, 3)
	for _, id := range ids {
		assert.Contains(t, byID, id)
	}
	assert.NotContains(t, byID, uint(9999))

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostRepository_GetByTopicID_Ordering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author")
	category := createTestCategory(t, db, "general")
	topic := createTestTopic(t, db, category.ID, user.ID)
	other := createTestTopic(t, db, category.ID, user.ID)

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.Post{
			TopicID: topic.ID, CategoryID: category.ID, UserID: user.ID, Content: content,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Post{
		TopicID: other.ID, CategoryID: category.ID, UserID: user.ID, Content: "elsewhere",
	}))

	posts, err := repo.GetByTopicID(ctx, topic.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "first", posts[0].Content)
	assert.Equal(t, "second", posts[1].Content)
	assert.Equal(t, "third", posts[2].Content)
}

func TestUserRepository_GetModeratedCategoryIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mod := createTestUser(t, db, "mod")
	catA := createTestCategory(t, db, "a")
	catB := createTestCategory(t, db, "b")
	createTestCategory(t, db, "c")

	require.NoError(t, repo.AddModerator(ctx, catA.ID, mod.ID))
	require.NoError(t, repo.AddModerator(ctx, catB.ID, mod.ID))

	ids, err := repo.GetModeratedCategoryIDs(ctx, mod.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{catA.ID, catB.ID}, ids)

	t.Run("guest moderates nothing", func(t *testing.T) {
		ids, err := repo.GetModeratedCategoryIDs(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("revoked assignment disappears", func(t *testing.T) {
		require.NoError(t, repo.RemoveModerator(ctx, catA.ID, mod.ID))
		ids, err := repo.GetModeratedCategoryIDs(ctx, mod.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{catB.ID}, ids)
	})
}

func TestEventRepository_AppendAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "solver")
	category := createTestCategory(t, db, "general")
	topic := createTestTopic(t, db, category.ID, user.ID)

	require.NoError(t, repo.Append(ctx, &models.TopicEvent{TopicID: topic.ID, Type: models.EventSolve, UserID: user.ID}))
	require.NoError(t, repo.Append(ctx, &models.TopicEvent{TopicID: topic.ID, Type: models.EventUnsolve, UserID: user.ID}))

	events, err := repo.ListByTopic(ctx, topic.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventSolve, events[0].Type)
	assert.Equal(t, models.EventUnsolve, events[1].Type)
}
