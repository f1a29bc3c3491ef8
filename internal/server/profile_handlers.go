package server

import "github.com/gofiber/fiber/v2"

// GetProfile handles GET /api/profiles/:username
// @Summary Get profile
// @Description Following is true when the caller follows the user
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} ProfileEnvelope
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.UserContext(), s.viewer(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newProfileEnvelope(profile))
}

// FollowUser handles POST /api/profiles/:username/follow
// @Summary Follow user
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} ProfileEnvelope
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{username}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	profile, err := s.profileService.Follow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newProfileEnvelope(profile))
}

// UnfollowUser handles DELETE /api/profiles/:username/follow
// @Summary Unfollow user
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} ProfileEnvelope
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{username}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	profile, err := s.profileService.Unfollow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newProfileEnvelope(profile))
}
