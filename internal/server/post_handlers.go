package server

import (
	"tribune/internal/models"
	"tribune/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Post read handlers return a JSON null body for posts the viewer may not
// see, exactly as for posts that do not exist. The two cases are
// indistinguishable on the wire so denial never confirms existence.

// GetPost handles GET /api/posts/:pid
func (s *Server) GetPost(c *fiber.Ctx) error {
	pid, err := s.parseID(c, "pid")
	if err != nil {
		return nil
	}

	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	view, err := s.postService.GetPost(c.Context(), facts, pid)
	if err != nil {
		return respondServiceError(c, err)
	}
	if view == nil {
		return c.JSON(nil)
	}
	return c.JSON(view)
}

// GetPostSummary handles GET /api/posts/:pid/summary
func (s *Server) GetPostSummary(c *fiber.Ctx) error {
	pid, err := s.parseID(c, "pid")
	if err != nil {
		return nil
	}

	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	summary, err := s.postService.GetSummary(c.Context(), facts, pid)
	if err != nil {
		return respondServiceError(c, err)
	}
	if summary == nil {
		return c.JSON(nil)
	}
	return c.JSON(summary)
}

// GetPostRaw handles GET /api/posts/:pid/raw
func (s *Server) GetPostRaw(c *fiber.Ctx) error {
	pid, err := s.parseID(c, "pid")
	if err != nil {
		return nil
	}

	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	content, err := s.postService.GetRaw(c.Context(), facts, pid)
	if err != nil {
		return respondServiceError(c, err)
	}
	if content == nil {
		return c.JSON(fiber.Map{"content": nil})
	}
	return c.JSON(fiber.Map{"content": *content})
}

// GetPostPrivileges handles GET /api/posts/privileges?pids=1,2,3
// The response array is positional: flags[i] answers for pids[i], with
// all-deny flags where the pid resolves to nothing.
func (s *Server) GetPostPrivileges(c *fiber.Ctx) error {
	pids, err := parsePids(c.Query("pids"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	flags, err := s.postService.Privileges(c.Context(), facts, pids)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"privileges": flags,
	})
}

// UpdatePost handles PUT /api/posts/:pid
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	pid, err := s.parseID(c, "pid")
	if err != nil {
		return nil
	}

	facts, err := s.viewerFacts(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var req service.EditPostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.PostID = pid

	post, err := s.postService.Edit(c.Context(), facts, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}
