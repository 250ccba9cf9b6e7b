package service

import (
	"context"

	"tribune/internal/models"

	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	getByIDsFn     func(context.Context, []uint) (map[uint]*models.Post, error)
	getByTopicIDFn func(context.Context, uint, int, int) ([]*models.Post, error)
	updateFn       func(context.Context, *models.Post) error
	deleteFn       func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Post, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *postRepoStub) GetByTopicID(ctx context.Context, topicID uint, limit, offset int) ([]*models.Post, error) {
	return s.getByTopicIDFn(ctx, topicID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, post *models.Post) error {
			post.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getByIDsFn: func(_ context.Context, _ []uint) (map[uint]*models.Post, error) {
			return map[uint]*models.Post{}, nil
		},
		getByTopicIDFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// topicRepoStub is a stub for repository.TopicRepository.
type topicRepoStub struct {
	createFn    func(context.Context, *models.Topic) error
	getByIDFn   func(context.Context, uint) (*models.Topic, error)
	getSortedFn func(context.Context, uint, int, int, string) ([]*models.Topic, error)
	setSolvedFn func(context.Context, uint, int, int) (bool, error)
	updateFn    func(context.Context, *models.Topic) error
	deleteFn    func(context.Context, uint) error
}

func (s *topicRepoStub) Create(ctx context.Context, topic *models.Topic) error {
	return s.createFn(ctx, topic)
}
func (s *topicRepoStub) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	return s.getByIDFn(ctx, id)
}
func (s *topicRepoStub) GetSorted(ctx context.Context, categoryID uint, limit, offset int, sort string) ([]*models.Topic, error) {
	return s.getSortedFn(ctx, categoryID, limit, offset, sort)
}
func (s *topicRepoStub) SetSolved(ctx context.Context, id uint, from, to int) (bool, error) {
	return s.setSolvedFn(ctx, id, from, to)
}
func (s *topicRepoStub) Update(ctx context.Context, topic *models.Topic) error {
	return s.updateFn(ctx, topic)
}
func (s *topicRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopTopicRepo() *topicRepoStub {
	return &topicRepoStub{
		createFn: func(_ context.Context, topic *models.Topic) error {
			topic.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, _ uint) (*models.Topic, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getSortedFn: func(_ context.Context, _ uint, _, _ int, _ string) ([]*models.Topic, error) {
			return nil, nil
		},
		setSolvedFn: func(_ context.Context, _ uint, _, _ int) (bool, error) { return true, nil },
		updateFn:    func(_ context.Context, _ *models.Topic) error { return nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
	}
}

// eventRepoStub is a stub for repository.EventRepository.
type eventRepoStub struct {
	appendFn      func(context.Context, *models.TopicEvent) error
	listByTopicFn func(context.Context, uint) ([]*models.TopicEvent, error)
}

func (s *eventRepoStub) Append(ctx context.Context, event *models.TopicEvent) error {
	return s.appendFn(ctx, event)
}
func (s *eventRepoStub) ListByTopic(ctx context.Context, topicID uint) ([]*models.TopicEvent, error) {
	return s.listByTopicFn(ctx, topicID)
}

func noopEventRepo() *eventRepoStub {
	return &eventRepoStub{
		appendFn:      func(_ context.Context, _ *models.TopicEvent) error { return nil },
		listByTopicFn: func(_ context.Context, _ uint) ([]*models.TopicEvent, error) { return nil, nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn         func(context.Context, *models.Category) error
	getByIDFn        func(context.Context, uint) (*models.Category, error)
	listFn           func(context.Context, int, int) ([]*models.Category, error)
	updateFn         func(context.Context, *models.Category) error
	deleteFn         func(context.Context, uint) error
	listModeratorsFn func(context.Context, uint) ([]*models.User, error)
}

func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *categoryRepoStub) Update(ctx context.Context, category *models.Category) error {
	return s.updateFn(ctx, category)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *categoryRepoStub) ListModerators(ctx context.Context, categoryID uint) ([]*models.User, error) {
	return s.listModeratorsFn(ctx, categoryID)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn: func(_ context.Context, category *models.Category) error {
			category.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "general"}, nil
		},
		listFn:           func(_ context.Context, _, _ int) ([]*models.Category, error) { return nil, nil },
		updateFn:         func(_ context.Context, _ *models.Category) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		listModeratorsFn: func(_ context.Context, _ uint) ([]*models.User, error) { return nil, nil },
	}
}
