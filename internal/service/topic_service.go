package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tribune/internal/middleware"
	"tribune/internal/models"
	"tribune/internal/notifications"
	"tribune/internal/observability"
	"tribune/internal/privileges"
	"tribune/internal/repository"

	"gorm.io/gorm"
)

// TopicService implements topic creation, viewing and the solved-state gate.
type TopicService struct {
	topicRepo    repository.TopicRepository
	postRepo     repository.PostRepository
	eventRepo    repository.EventRepository
	categoryRepo repository.CategoryRepository
	notifier     *notifications.Notifier
}

type CreateTopicInput struct {
	CategoryID uint        `json:"cid"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Kind       string      `json:"kind"`
	Anonymous  models.Flag `json:"anonymous"`
	ModOnly    models.Flag `json:"modOnly"`
}

// TopicPrivileges is the topic-level privileges block attached to views.
type TopicPrivileges struct {
	Read         bool `json:"read"`
	CanSolve     bool `json:"canSolve"`
	IsOwner      bool `json:"isOwner"`
	IsAdminOrMod bool `json:"isAdminOrMod"`
}

// TopicView is a topic shaped for one viewer: visible posts only, each
// carrying its per-viewer display facts.
type TopicView struct {
	*models.Topic
	Posts      []models.PostView    `json:"posts"`
	Events     []*models.TopicEvent `json:"events"`
	Privileges TopicPrivileges      `json:"privileges"`
}

// CreateTopicResult is the creation response: the topic plus its first post.
type CreateTopicResult struct {
	Topic *models.Topic `json:"topic"`
	Post  *models.Post  `json:"post"`
}

const maxTopicTitleLen = 300

func NewTopicService(
	topicRepo repository.TopicRepository,
	postRepo repository.PostRepository,
	eventRepo repository.EventRepository,
	categoryRepo repository.CategoryRepository,
	notifier *notifications.Notifier,
) *TopicService {
	return &TopicService{
		topicRepo:    topicRepo,
		postRepo:     postRepo,
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		notifier:     notifier,
	}
}

// CreateTopic creates a topic together with its first post. The anonymous
// flag travels to the first post; the topic owner is always the true uid.
func (s *TopicService) CreateTopic(ctx context.Context, facts privileges.RoleFacts, in CreateTopicInput) (*CreateTopicResult, error) {
	if facts.UID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTopicTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}

	kind := in.Kind
	if kind == "" {
		kind = models.TopicKindNote
	}
	switch kind {
	case models.TopicKindQuestion, models.TopicKindNote:
		// valid
	default:
		return nil, models.NewValidationError("Invalid kind")
	}

	if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", in.CategoryID)
		}
		return nil, err
	}

	if in.ModOnly.Bool() && !privileges.CanSetModOnly(in.CategoryID, facts) {
		return nil, models.NewForumError(models.TokenNoPrivileges)
	}

	topic := &models.Topic{
		CategoryID: in.CategoryID,
		UserID:     facts.UID,
		Title:      in.Title,
		Kind:       kind,
	}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, err
	}

	post := &models.Post{
		TopicID:    topic.ID,
		CategoryID: topic.CategoryID,
		UserID:     facts.UID,
		Content:    in.Content,
		Anonymous:  in.Anonymous,
		ModOnly:    in.ModOnly,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := s.notifier.PublishNewPost(ctx, topic.ID, post.ID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish post event", "error", err)
	}

	return &CreateTopicResult{Topic: topic, Post: post}, nil
}

// GetTopicView assembles the topic for one viewer. Posts the viewer may not
// see are absent from the result entirely; any mod-only post that remains
// is shown intact because only privileged viewers keep them.
func (s *TopicService) GetTopicView(ctx context.Context, facts privileges.RoleFacts, tid uint, limit, offset int) (*TopicView, error) {
	topic, err := s.topicRepo.GetByID(ctx, tid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewForumError(models.TokenNoTopic)
		}
		return nil, err
	}

	posts, err := s.postRepo.GetByTopicID(ctx, tid, limit, offset)
	if err != nil {
		return nil, err
	}

	visible := privileges.Filter(posts, facts)
	if denied := len(posts) - len(visible); denied > 0 {
		observability.VisibilityDenials.WithLabelValues("topic-view").Add(float64(denied))
	}

	views := make([]models.PostView, 0, len(visible))
	for _, p := range visible {
		view := models.PostView{
			Post:         *p,
			SelfPost:     facts.IsSelf(p.UserID),
			IsAdminOrMod: facts.IsAdminOrMod(p.CategoryID),
		}
		privileges.ApplyRedaction(&view.Post, privileges.Get(p, facts))
		views = append(views, view)
	}

	events, err := s.eventRepo.ListByTopic(ctx, tid)
	if err != nil {
		return nil, err
	}

	return &TopicView{
		Topic:  topic,
		Posts:  views,
		Events: events,
		Privileges: TopicPrivileges{
			Read:         true,
			CanSolve:     topic.IsQuestion() && privileges.CanSolve(topic, facts),
			IsOwner:      topic.IsOwner(facts.UID),
			IsAdminOrMod: facts.IsAdminOrMod(topic.CategoryID),
		},
	}, nil
}

// ListTopics returns the sorted listing. Solved topics are excluded by the
// repository whatever the sort.
func (s *TopicService) ListTopics(ctx context.Context, categoryID uint, limit, offset int, sort string) ([]*models.Topic, error) {
	return s.topicRepo.GetSorted(ctx, categoryID, limit, offset, sort)
}

// SetSolved flips one topic's solved state for the given actor. Both
// directions run the same gauntlet: the topic must exist, be a question,
// and the actor must be its owner or privileged. An idempotent no-op
// succeeds without an event.
func (s *TopicService) SetSolved(ctx context.Context, facts privileges.RoleFacts, tid uint, target int) (*models.SolveResult, error) {
	if facts.UID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	topic, err := s.topicRepo.GetByID(ctx, tid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewForumError(models.TokenNoTopic)
		}
		return nil, err
	}

	if !topic.IsQuestion() {
		return nil, models.NewForumError(models.TokenTopicNotQuestion)
	}
	if !privileges.CanSolve(topic, facts) {
		return nil, models.NewForumError(models.TokenNoPrivileges)
	}

	transition := models.TransitionSolved(topic.Solved, target)
	result := &models.SolveResult{
		Solved:   transition.State,
		IsSolved: transition.State == models.TopicSolved,
	}
	if !transition.Changed {
		return result, nil
	}

	// Re-check at commit time: the conditional update loses against a
	// concurrent call that already applied the same transition, and losing
	// means no event from this call.
	applied, err := s.topicRepo.SetSolved(ctx, tid, topic.Solved, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		return result, nil
	}

	eventType := models.EventSolve
	direction := "solve"
	if target == models.TopicUnsolved {
		eventType = models.EventUnsolve
		direction = "unsolve"
	}
	event := models.TopicEvent{
		TopicID: tid,
		Type:    eventType,
		UserID:  facts.UID,
	}
	if err := s.eventRepo.Append(ctx, &event); err != nil {
		return nil, err
	}
	observability.SolvedTransitions.WithLabelValues(direction).Inc()

	if err := s.notifier.PublishTopicEvent(ctx, event); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish topic event", "error", err)
	}

	result.Events = append(result.Events, event)
	return result, nil
}

// ParseTids decodes a batch tids payload. Anything but a JSON array of
// numeric ids is rejected up front, before any topic is touched.
func ParseTids(raw json.RawMessage) ([]uint, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, models.NewForumError(models.TokenInvalidTid)
	}
	var tids []uint
	if err := json.Unmarshal(trimmed, &tids); err != nil {
		return nil, models.NewForumError(models.TokenInvalidTid)
	}
	return tids, nil
}

// SetSolvedMany applies the transition to each tid in order. The first
// failure aborts the batch; earlier transitions stay applied and the
// failing tid is surfaced in the error.
func (s *TopicService) SetSolvedMany(ctx context.Context, facts privileges.RoleFacts, raw json.RawMessage, target int) ([]*models.SolveResult, error) {
	tids, err := ParseTids(raw)
	if err != nil {
		return nil, err
	}

	results := make([]*models.SolveResult, 0, len(tids))
	for _, tid := range tids {
		result, err := s.SetSolved(ctx, facts, tid, target)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) {
				return nil, models.NewForumErrorWithCause(appErr.Code, fmt.Errorf("tid %d", tid))
			}
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
