// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"errors"
	"strconv"
	"strings"

	"tribune/internal/models"
	"tribune/internal/privileges"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "tid" -> "tid", "userId" -> "user ID".
func humanizeParam(param string) string {
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

// viewerFacts resolves the role facts for the current request's viewer. An
// absent userID local means a guest. The facts are resolved exactly once per
// request and passed down to every policy decision, so one request never
// observes two different role snapshots.
func (s *Server) viewerFacts(c *fiber.Ctx) (privileges.RoleFacts, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return privileges.Guest(), nil
	}
	return s.identity.Resolve(c.Context(), userID)
}

// parsePids splits the comma-separated pids query parameter. Unparseable
// entries invalidate the whole request.
func parsePids(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	pids := make([]uint, 0, len(parts))
	for _, part := range parts {
		pid, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, errors.New("invalid pid: " + part)
		}
		pids = append(pids, uint(pid))
	}
	return pids, nil
}

// respondServiceError maps service-layer errors onto HTTP statuses, keeping
// the stable bracket tokens intact in the message field.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
