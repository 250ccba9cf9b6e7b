package service

import (
	"context"
	"encoding/json"
	"testing"

	"tribune/internal/models"
	"tribune/internal/notifications"
	"tribune/internal/privileges"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTopicService(topicRepo *topicRepoStub, postRepo *postRepoStub, eventRepo *eventRepoStub) *TopicService {
	return NewTopicService(topicRepo, postRepo, eventRepo, noopCategoryRepo(), notifications.NewNotifier(nil))
}

func questionTopic() *models.Topic {
	return &models.Topic{ID: 7, CategoryID: 3, UserID: 2, Title: "q", Kind: models.TopicKindQuestion}
}

func TestTopicService_CreateTopic(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		svc := newTopicService(noopTopicRepo(), noopPostRepo(), noopEventRepo())
		_, err := svc.CreateTopic(context.Background(), privileges.Guest(), CreateTopicInput{CategoryID: 3, Title: "t", Content: "c"})
		require.Error(t, err)
	})

	t.Run("validates title and content", func(t *testing.T) {
		t.Parallel()
		svc := newTopicService(noopTopicRepo(), noopPostRepo(), noopEventRepo())
		_, err := svc.CreateTopic(context.Background(), regularViewer(5), CreateTopicInput{CategoryID: 3, Content: "c"})
		require.Error(t, err)
		_, err = svc.CreateTopic(context.Background(), regularViewer(5), CreateTopicInput{CategoryID: 3, Title: "t"})
		require.Error(t, err)
		_, err = svc.CreateTopic(context.Background(), regularViewer(5), CreateTopicInput{CategoryID: 3, Title: "t", Content: "c", Kind: "poll"})
		require.Error(t, err)
	})

	t.Run("modOnly first post needs a privileged role", func(t *testing.T) {
		t.Parallel()
		svc := newTopicService(noopTopicRepo(), noopPostRepo(), noopEventRepo())
		_, err := svc.CreateTopic(context.Background(), regularViewer(5), CreateTopicInput{
			CategoryID: 3, Title: "t", Content: "c", ModOnly: true,
		})
		require.Error(t, err)
		assert.True(t, models.IsForumError(err, models.TokenNoPrivileges))
	})

	t.Run("creates topic and first post with flags", func(t *testing.T) {
		t.Parallel()
		svc := newTopicService(noopTopicRepo(), noopPostRepo(), noopEventRepo())
		result, err := svc.CreateTopic(context.Background(), regularViewer(5), CreateTopicInput{
			CategoryID: 3,
			Title:      "my question",
			Content:    "first post body",
			Kind:       models.TopicKindQuestion,
			Anonymous:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(5), result.Topic.UserID)
		assert.Equal(t, models.TopicKindQuestion, result.Topic.Kind)
		assert.Equal(t, models.TopicUnsolved, result.Topic.Solved)
		assert.Equal(t, uint(5), result.Post.UserID)
		assert.True(t, result.Post.Anonymous.Bool())
		assert.Equal(t, result.Topic.ID, result.Post.TopicID)
	})

	t.Run("kind defaults to note", func(t *testing.T) {
		t.Parallel()
		svc := newTopicService(noopTopicRepo(), noopPostRepo(), noopEventRepo())
		result, err := svc.CreateTopic(context.Background(), regularViewer(5), CreateTopicInput{
			CategoryID: 3, Title: "t", Content: "c",
		})
		require.NoError(t, err)
		assert.Equal(t, models.TopicKindNote, result.Topic.Kind)
	})
}

func TestTopicService_SetSolved(t *testing.T) {
	t.Parallel()

	newSvc := func(topic *models.Topic) (*TopicService, *[]models.TopicEvent) {
		topicRepo := noopTopicRepo()
		topicRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Topic, error) {
			if topic == nil {
				return nil, gorm.ErrRecordNotFound
			}
			return topic, nil
		}
		topicRepo.setSolvedFn = func(_ context.Context, _ uint, from, to int) (bool, error) {
			if topic.Solved != from {
				return false, nil
			}
			topic.Solved = to
			return true, nil
		}
		var appended []models.TopicEvent
		eventRepo := noopEventRepo()
		eventRepo.appendFn = func(_ context.Context, event *models.TopicEvent) error {
			appended = append(appended, *event)
			return nil
		}
		return newTopicService(topicRepo, noopPostRepo(), eventRepo), &appended
	}

	t.Run("missing topic yields no-topic", func(t *testing.T) {
		t.Parallel()
		svc, _ := newSvc(nil)
		_, err := svc.SetSolved(context.Background(), regularViewer(2), 99, models.TopicSolved)
		require.Error(t, err)
		assert.True(t, models.IsForumError(err, models.TokenNoTopic))
	})

	t.Run("non-question topics cannot be solved", func(t *testing.T) {
		t.Parallel()
		note := &models.Topic{ID: 7, CategoryID: 3, UserID: 2, Kind: models.TopicKindNote}
		svc, events := newSvc(note)
		_, err := svc.SetSolved(context.Background(), regularViewer(2), 7, models.TopicSolved)
		require.Error(t, err)
		assert.True(t, models.IsForumError(err, models.TokenTopicNotQuestion))
		assert.Empty(t, *events)
	})

	t.Run("unrelated user is denied", func(t *testing.T) {
		t.Parallel()
		svc, events := newSvc(questionTopic())
		_, err := svc.SetSolved(context.Background(), regularViewer(5), 7, models.TopicSolved)
		require.Error(t, err)
		assert.True(t, models.IsForumError(err, models.TokenNoPrivileges))
		assert.Empty(t, *events)
	})

	t.Run("owner solves and an event is emitted", func(t *testing.T) {
		t.Parallel()
		svc, events := newSvc(questionTopic())
		result, err := svc.SetSolved(context.Background(), regularViewer(2), 7, models.TopicSolved)
		require.NoError(t, err)
		assert.Equal(t, models.TopicSolved, result.Solved)
		assert.True(t, result.IsSolved)
		require.Len(t, *events, 1)
		assert.Equal(t, models.EventSolve, (*events)[0].Type)
		assert.Equal(t, uint(2), (*events)[0].UserID)
		require.Len(t, result.Events, 1)
	})

	t.Run("admin solves someone else's question", func(t *testing.T) {
		t.Parallel()
		svc, events := newSvc(questionTopic())
		_, err := svc.SetSolved(context.Background(), adminViewer(9), 7, models.TopicSolved)
		require.NoError(t, err)
		require.Len(t, *events, 1)
		assert.Equal(t, uint(9), (*events)[0].UserID)
	})

	t.Run("category moderator solves within their category", func(t *testing.T) {
		t.Parallel()
		svc, events := newSvc(questionTopic())
		mod := privileges.RoleFacts{UID: 11, ModeratedCategories: map[uint]struct{}{3: {}}}
		_, err := svc.SetSolved(context.Background(), mod, 7, models.TopicSolved)
		require.NoError(t, err)
		assert.Len(t, *events, 1)
	})

	t.Run("solving an already solved topic emits nothing", func(t *testing.T) {
		t.Parallel()
		topic := questionTopic()
		topic.Solved = models.TopicSolved
		svc, events := newSvc(topic)
		result, err := svc.SetSolved(context.Background(), regularViewer(2), 7, models.TopicSolved)
		require.NoError(t, err)
		assert.Equal(t, models.TopicSolved, result.Solved)
		assert.Empty(t, result.Events)
		assert.Empty(t, *events)
	})

	t.Run("unsolving an unsolved topic emits nothing", func(t *testing.T) {
		t.Parallel()
		svc, events := newSvc(questionTopic())
		result, err := svc.SetSolved(context.Background(), regularViewer(2), 7, models.TopicUnsolved)
		require.NoError(t, err)
		assert.Equal(t, models.TopicUnsolved, result.Solved)
		assert.False(t, result.IsSolved)
		assert.Empty(t, *events)
	})

	t.Run("unsolve emits an unsolve event", func(t *testing.T) {
		t.Parallel()
		topic := questionTopic()
		topic.Solved = models.TopicSolved
		svc, events := newSvc(topic)
		result, err := svc.SetSolved(context.Background(), regularViewer(2), 7, models.TopicUnsolved)
		require.NoError(t, err)
		assert.False(t, result.IsSolved)
		require.Len(t, *events, 1)
		assert.Equal(t, models.EventUnsolve, (*events)[0].Type)
	})

	t.Run("losing the commit-time re-check emits nothing", func(t *testing.T) {
		t.Parallel()
		topicRepo := noopTopicRepo()
		topic := questionTopic()
		topicRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Topic, error) { return topic, nil }
		// Another call flipped the row between our read and our update.
		topicRepo.setSolvedFn = func(_ context.Context, _ uint, _, _ int) (bool, error) { return false, nil }
		var appended []models.TopicEvent
		eventRepo := noopEventRepo()
		eventRepo.appendFn = func(_ context.Context, event *models.TopicEvent) error {
			appended = append(appended, *event)
			return nil
		}
		svc := newTopicService(topicRepo, noopPostRepo(), eventRepo)

		result, err := svc.SetSolved(context.Background(), regularViewer(2), 7, models.TopicSolved)
		require.NoError(t, err)
		assert.Equal(t, models.TopicSolved, result.Solved)
		assert.Empty(t, result.Events)
		assert.Empty(t, appended)
	})
}

func TestTopicService_SetSolvedMany(t *testing.T) {
	t.Parallel()

	t.Run("non-array tids fails invalid-tid before any mutation", func(t *testing.T) {
		t.Parallel()
		topicRepo := noopTopicRepo()
		touched := false
		topicRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Topic, error) {
			touched = true
			return questionTopic(), nil
		}
		svc := newTopicService(topicRepo, noopPostRepo(), noopEventRepo())

		for _, raw := range []string{`"1,2"`, `7`, `{"tid":7}`, `null`, ``} {
			_, err := svc.SetSolvedMany(context.Background(), regularViewer(2), json.RawMessage(raw), models.TopicSolved)
			require.Error(t, err, "payload %q", raw)
			assert.True(t, models.IsForumError(err, models.TokenInvalidTid), "payload %q", raw)
		}
		assert.False(t, touched)
	})

	t.Run("applies sequentially and reports per-topic results", func(t *testing.T) {
		t.Parallel()
		topics := map[uint]*models.Topic{
			1: {ID: 1, CategoryID: 3, UserID: 2, Kind: models.TopicKindQuestion},
			2: {ID: 2, CategoryID: 3, UserID: 2, Kind: models.TopicKindQuestion, Solved: models.TopicSolved},
		}
		topicRepo := noopTopicRepo()
		topicRepo.getByIDFn = func(_ context.Context, id uint) (*models.Topic, error) {
			if topic, ok := topics[id]; ok {
				return topic, nil
			}
			return nil, gorm.ErrRecordNotFound
		}
		topicRepo.setSolvedFn = func(_ context.Context, id uint, from, to int) (bool, error) {
			if topics[id].Solved != from {
				return false, nil
			}
			topics[id].Solved = to
			return true, nil
		}
		svc := newTopicService(topicRepo, noopPostRepo(), noopEventRepo())

		results, err := svc.SetSolvedMany(context.Background(), regularViewer(2), json.RawMessage(`[1, 2]`), models.TopicSolved)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Len(t, results[0].Events, 1)
		assert.Empty(t, results[1].Events, "already solved topic is a no-op")
	})

	t.Run("first failure aborts and carries the failing tid", func(t *testing.T) {
		t.Parallel()
		topicRepo := noopTopicRepo()
		topicRepo.getByIDFn = func(_ context.Context, id uint) (*models.Topic, error) {
			if id == 1 {
				return &models.Topic{ID: 1, CategoryID: 3, UserID: 2, Kind: models.TopicKindQuestion}, nil
			}
			return nil, gorm.ErrRecordNotFound
		}
		svc := newTopicService(topicRepo, noopPostRepo(), noopEventRepo())

		_, err := svc.SetSolvedMany(context.Background(), regularViewer(2), json.RawMessage(`[1, 99, 1]`), models.TopicSolved)
		require.Error(t, err)
		assert.True(t, models.IsForumError(err, models.TokenNoTopic))
		assert.Contains(t, err.Error(), "tid 99")
	})
}

func TestTopicService_GetTopicView(t *testing.T) {
	t.Parallel()

	posts := []*models.Post{
		{ID: 1, TopicID: 7, CategoryID: 3, UserID: 2, Content: "question body", User: &models.User{ID: 2, Signature: "sig"}},
		{ID: 2, TopicID: 7, CategoryID: 3, UserID: 9, Content: "mod note", ModOnly: true, User: &models.User{ID: 9, Signature: "modsig"}},
		{ID: 3, TopicID: 7, CategoryID: 3, UserID: 5, Content: "reply", Anonymous: true, User: &models.User{ID: 5}},
	}
	newSvc := func() *TopicService {
		topicRepo := noopTopicRepo()
		topicRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Topic, error) { return questionTopic(), nil }
		postRepo := noopPostRepo()
		postRepo.getByTopicIDFn = func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) {
			copies := make([]*models.Post, len(posts))
			for i, p := range posts {
				c := *p
				u := *p.User
				c.User = &u
				copies[i] = &c
			}
			return copies, nil
		}
		return newTopicService(topicRepo, postRepo, noopEventRepo())
	}

	t.Run("missing topic yields no-topic", func(t *testing.T) {
		t.Parallel()
		svc := newTopicService(noopTopicRepo(), noopPostRepo(), noopEventRepo())
		_, err := svc.GetTopicView(context.Background(), regularViewer(5), 99, 50, 0)
		require.Error(t, err)
		assert.True(t, models.IsForumError(err, models.TokenNoTopic))
	})

	t.Run("regular viewer never receives the mod-only post", func(t *testing.T) {
		t.Parallel()
		view, err := newSvc().GetTopicView(context.Background(), regularViewer(5), 7, 50, 0)
		require.NoError(t, err)
		require.Len(t, view.Posts, 2)
		assert.Equal(t, uint(1), view.Posts[0].ID)
		assert.Equal(t, uint(3), view.Posts[1].ID)

		// selfPost is per viewer: the anonymous reply is theirs.
		assert.False(t, view.Posts[0].SelfPost)
		assert.True(t, view.Posts[1].SelfPost)
		assert.True(t, view.Posts[1].Anonymous.Bool())
		// True author uid still travels; masking is the display layer's job.
		assert.Equal(t, uint(5), view.Posts[1].UserID)
	})

	t.Run("privileged viewer sees everything intact", func(t *testing.T) {
		t.Parallel()
		view, err := newSvc().GetTopicView(context.Background(), adminViewer(9), 7, 50, 0)
		require.NoError(t, err)
		require.Len(t, view.Posts, 3)
		assert.Equal(t, "mod note", view.Posts[1].Content)
		assert.Equal(t, "modsig", view.Posts[1].User.Signature)
		assert.True(t, view.Posts[1].IsAdminOrMod)
	})

	t.Run("topic privileges block reflects the viewer", func(t *testing.T) {
		t.Parallel()
		owner, err := newSvc().GetTopicView(context.Background(), regularViewer(2), 7, 50, 0)
		require.NoError(t, err)
		assert.True(t, owner.Privileges.CanSolve)
		assert.True(t, owner.Privileges.IsOwner)
		assert.False(t, owner.Privileges.IsAdminOrMod)

		stranger, err := newSvc().GetTopicView(context.Background(), regularViewer(5), 7, 50, 0)
		require.NoError(t, err)
		assert.False(t, stranger.Privileges.CanSolve)
	})
}
