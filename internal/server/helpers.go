package server

import (
	"errors"
	"log/slog"
	"strconv"

	"conduit/internal/middleware"
	"conduit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters. Limit 0 means no limit.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination reads limit and offset. Both default to 0; anything that is
// not a non-negative integer gets a 400 and errResponseWritten.
func parsePagination(c *fiber.Ctx) (Pagination, error) {
	var page Pagination
	for _, q := range []struct {
		name string
		dst  *int
	}{
		{"limit", &page.Limit},
		{"offset", &page.Offset},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid "+q.name+": must be a non-negative integer"))
			return Pagination{}, errResponseWritten
		}
		*q.dst = n
	}
	return page, nil
}

// statusForCode maps an AppError code to its HTTP status.
func statusForCode(code string) int {
	switch code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeConflict:
		return fiber.StatusUnprocessableEntity
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status its code maps to. Errors that are
// not AppErrors are logged and reported as internal errors.
func respondError(c *fiber.Ctx, err error) error {
	status := statusForCode(models.ErrorCode(err))
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// parseBody decodes the request body into dst. On failure it writes a 400
// and returns errResponseWritten.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

func currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userID").(uint)
	return userID
}
