package server

import "github.com/gofiber/fiber/v2"

// GetTags handles GET /api/tags and GET /api/tags/list
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {object} TagsEnvelope
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.tagService.ListTags(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newTagsEnvelope(tags))
}
