package server

import (
	"encoding/json"

	"tribune/internal/models"
	"tribune/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	categories, err := s.categoryRepo.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"categories": categories,
		"limit":      p.Limit,
		"offset":     p.Offset,
	})
}

// GetCategoryTopics handles GET /api/categories/:cid/topics?sort=
// Solved topics never appear in the listing, whatever the sort.
func (s *Server) GetCategoryTopics(c *fiber.Ctx) error {
	cid, err := s.parseID(c, "cid")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)
	sort := c.Query("sort", "recent")

	topics, err := s.topicService.ListTopics(c.Context(), cid, p.Limit, p.Offset, sort)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"topics": topics,
		"sort":   sort,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetTopics handles GET /api/topics, the cross-category sorted listing.
func (s *Server) GetTopics(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	sort := c.Query("sort", "recent")

	topics, err := s.topicService.ListTopics(c.Context(), 0, p.Limit, p.Offset, sort)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"topics": topics,
		"sort":   sort,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// CreateTopic handles POST /api/topics
func (s *Server) CreateTopic(c *fiber.Ctx) error {
	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var req service.CreateTopicInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.topicService.CreateTopic(c.Context(), facts, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetTopic handles GET /api/topics/:tid, the topic view for the current
// viewer. Posts the viewer may not see are absent.
func (s *Server) GetTopic(c *fiber.Ctx) error {
	tid, err := s.parseID(c, "tid")
	if err != nil {
		return nil
	}

	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	p := parsePagination(c, 20)
	view, err := s.topicService.GetTopicView(c.Context(), facts, tid, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(view)
}

// CreateReply handles POST /api/topics/:tid
func (s *Server) CreateReply(c *fiber.Ctx) error {
	tid, err := s.parseID(c, "tid")
	if err != nil {
		return nil
	}

	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var req service.CreateReplyInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.TopicID = tid

	post, err := s.postService.CreateReply(c.Context(), facts, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// solveRequest carries the raw tids payload. The payload stays raw JSON so
// the service can reject non-array shapes before touching any topic.
type solveRequest struct {
	Tids json.RawMessage `json:"tids"`
}

// SolveTopics handles PUT /api/topics/solve
func (s *Server) SolveTopics(c *fiber.Ctx) error {
	return s.setSolvedBatch(c, models.TopicSolved)
}

// UnsolveTopics handles PUT /api/topics/unsolve
func (s *Server) UnsolveTopics(c *fiber.Ctx) error {
	return s.setSolvedBatch(c, models.TopicUnsolved)
}

func (s *Server) setSolvedBatch(c *fiber.Ctx, target int) error {
	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var req solveRequest
	if err := c.BodyParser(&req); err != nil {
		return respondServiceError(c, models.NewForumError(models.TokenInvalidTid))
	}

	results, err := s.topicService.SetSolvedMany(c.Context(), facts, req.Tids, target)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"results": results,
	})
}

// GetConfig handles GET /api/config, returning composer defaults and the viewer's
// feature flag snapshot for client bootstrap.
func (s *Server) GetConfig(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	return c.JSON(fiber.Map{
		"composer": fiber.Map{
			"maxTitleLength":   300,
			"maxContentLength": 50000,
			"kinds":            []string{models.TopicKindQuestion, models.TopicKindNote},
		},
		"features": s.featureFlags.Snapshot(userID),
		"loggedIn": userID != 0,
	})
}

// GetFeatureFlags handles GET /api/admin/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Raw(),
	})
}

// CreateCategory handles POST /api/admin/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(c.Context(), category); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

// AddModerator handles POST /api/admin/categories/:cid/moderators/:userId
func (s *Server) AddModerator(c *fiber.Ctx) error {
	cid, err := s.parseID(c, "cid")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.userRepo.AddModerator(c.Context(), cid, userID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"message": "Moderator added",
	})
}

// RemoveModerator handles DELETE /api/admin/categories/:cid/moderators/:userId
func (s *Server) RemoveModerator(c *fiber.Ctx) error {
	cid, err := s.parseID(c, "cid")
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.userRepo.RemoveModerator(c.Context(), cid, userID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"message": "Moderator removed",
	})
}
