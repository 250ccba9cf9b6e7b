package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"tribune/internal/middleware"
	"tribune/internal/models"
	"tribune/internal/notifications"
	"tribune/internal/observability"
	"tribune/internal/privileges"
	"tribune/internal/repository"

	"gorm.io/gorm"
)

// PostService implements the post read and write operations. Every method
// takes the viewer's RoleFacts; the service never resolves roles itself.
type PostService struct {
	postRepo  repository.PostRepository
	topicRepo repository.TopicRepository
	notifier  *notifications.Notifier
}

type CreateReplyInput struct {
	TopicID   uint        `json:"tid"`
	Content   string      `json:"content"`
	Anonymous models.Flag `json:"anonymous"`
	ModOnly   models.Flag `json:"modOnly"`
}

type EditPostInput struct {
	PostID  uint
	Content string `json:"content"`
	// ModOnly nil means the request did not touch the flag. Asking for the
	// value already stored is not a flag change.
	ModOnly *models.Flag `json:"modOnly"`
}

// PostSummary is the abbreviated post shape for inline previews. The flags
// travel with it so clients can render the mod-only and anonymous badges
// without fetching the full post.
type PostSummary struct {
	PID       uint         `json:"pid"`
	TID       uint         `json:"tid"`
	UID       uint         `json:"uid"`
	Content   string       `json:"content"`
	Anonymous models.Flag  `json:"anonymous"`
	ModOnly   models.Flag  `json:"modOnly"`
	User      *models.User `json:"user,omitempty"`
}

const maxPostContentLen = 50000

func NewPostService(postRepo repository.PostRepository, topicRepo repository.TopicRepository, notifier *notifications.Notifier) *PostService {
	return &PostService{postRepo: postRepo, topicRepo: topicRepo, notifier: notifier}
}

// CreateReply appends a post to an existing topic. The anonymous flag is
// stored as given; the true author uid is stored regardless. Setting
// modOnly requires a privileged role for the topic's category.
func (s *PostService) CreateReply(ctx context.Context, facts privileges.RoleFacts, in CreateReplyInput) (*models.Post, error) {
	if facts.UID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	topic, err := s.topicRepo.GetByID(ctx, in.TopicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewForumError(models.TokenNoTopic)
		}
		return nil, err
	}

	if in.ModOnly.Bool() && !privileges.CanSetModOnly(topic.CategoryID, facts) {
		return nil, models.NewForumError(models.TokenNoPrivileges)
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

	if err := s.notifier.PublishNewPost(ctx, post.TopicID, post.ID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish post event", "error", err)
	}

	return post, nil
}

// load fetches a post treating absence and denial identically: a nil post
// with a nil error. Callers of the read paths cannot distinguish a post
// they may not see from one that does not exist.
func (s *PostService) load(ctx context.Context, facts privileges.RoleFacts, pid uint, surface string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !privileges.CanView(post, facts) {
		observability.VisibilityDenials.WithLabelValues(surface).Inc()
		return nil, nil
	}
	return post, nil
}

// GetPost returns the viewer-shaped post, or nil when the post is absent
// or the viewer may not see it.
func (s *PostService) GetPost(ctx context.Context, facts privileges.RoleFacts, pid uint) (*models.PostView, error) {
	post, err := s.load(ctx, facts, pid, "get")
	if err != nil || post == nil {
		return nil, err
	}
	view := &models.PostView{
		Post:         *post,
		SelfPost:     facts.IsSelf(post.UserID),
		IsAdminOrMod: facts.IsAdminOrMod(post.CategoryID),
	}
	return view, nil
}

// GetSummary returns the abbreviated post, or nil on absence/denial.
func (s *PostService) GetSummary(ctx context.Context, facts privileges.RoleFacts, pid uint) (*PostSummary, error) {
	post, err := s.load(ctx, facts, pid, "summary")
	if err != nil || post == nil {
		return nil, err
	}
	content := post.Content
	const snippetLen = 255
	if len(content) > snippetLen {
		// Back off to a rune boundary so the snippet stays valid UTF-8.
		cut := snippetLen
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return &PostSummary{
		PID:       post.ID,
		TID:       post.TopicID,
		UID:       post.UserID,
		Content:   content,
		Anonymous: post.Anonymous,
		ModOnly:   post.ModOnly,
		User:      post.User,
	}, nil
}

// GetRaw returns the unrendered stored content for editing, or nil on
// absence/denial.
func (s *PostService) GetRaw(ctx context.Context, facts privileges.RoleFacts, pid uint) (*string, error) {
	post, err := s.load(ctx, facts, pid, "raw")
	if err != nil || post == nil {
		return nil, err
	}
	return &post.Content, nil
}

// Edit updates a post's content and optionally its mod-only flag. A flag
// change without the required privilege rejects the whole edit; stored
// state is untouched.
func (s *PostService) Edit(ctx context.Context, facts privileges.RoleFacts, in EditPostInput) (*models.Post, error) {
	if facts.UID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewForumError(models.TokenNoPost)
		}
		return nil, err
	}

	isPrivileged := facts.IsAdminOrMod(post.CategoryID)
	if !post.IsOwner(facts.UID) && !isPrivileged {
		return nil, models.NewForumError(models.TokenNoPrivileges)
	}

	// The privilege gate fires on actual flag changes only; resubmitting
	// the stored value is a plain content edit.
	if in.ModOnly != nil && *in.ModOnly != post.ModOnly {
		if !privileges.CanSetModOnly(post.CategoryID, facts) {
			return nil, models.NewForumError(models.TokenNoPrivileges)
		}
		post.ModOnly = *in.ModOnly
	}

	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// FilterPids reduces pids to the viewable subsequence, preserving order.
// Unknown pids are dropped silently.
func (s *PostService) FilterPids(ctx context.Context, facts privileges.RoleFacts, pids []uint) ([]uint, error) {
	byID, err := s.postRepo.GetByIDs(ctx, pids)
	if err != nil {
		return nil, err
	}
	kept := privileges.FilterPids(pids, byID, facts)
	if denied := len(pids) - len(kept); denied > 0 {
		observability.VisibilityDenials.WithLabelValues("filter").Add(float64(denied))
	}
	return kept, nil
}

// Privileges computes the positional privilege flags for pids. A pid that
// resolves to nothing yields all-deny flags at its position.
func (s *PostService) Privileges(ctx context.Context, facts privileges.RoleFacts, pids []uint) ([]privileges.PostPrivileges, error) {
	byID, err := s.postRepo.GetByIDs(ctx, pids)
	if err != nil {
		return nil, err
	}
	out := make([]privileges.PostPrivileges, len(pids))
	for i, pid := range pids {
		if post, ok := byID[pid]; ok {
			out[i] = privileges.Get(post, facts)
		}
	}
	return out, nil
}
