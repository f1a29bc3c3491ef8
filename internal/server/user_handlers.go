package server

import (
	"conduit/internal/models"
	"conduit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type userFields struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
}

// userRequest accepts the fields either flat or wrapped in "user".
type userRequest struct {
	userFields
	User *userFields `json:"user"`
}

func (r *userRequest) fields() userFields {
	if r.User != nil {
		return *r.User
	}
	return r.userFields
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// respondWithUser issues a token for user and writes the user envelope.
func (s *Server) respondWithUser(c *fiber.Ctx, status int, user *models.User) error {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(status).JSON(newUserEnvelope(user, token))
}

// Register handles POST /api/users
// @Summary Register
// @Description Create an account and return it with a session token
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Registration"
// @Success 201 {object} UserEnvelope
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req userRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	in := req.fields()

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: deref(in.Username),
		Email:    deref(in.Email),
		Password: deref(in.Password),
	})
	if err != nil {
		return respondError(c, err)
	}

	return s.respondWithUser(c, fiber.StatusCreated, user)
}

// Login handles POST /api/users/login
// @Summary Login
// @Description Authenticate with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} UserEnvelope
// @Failure 401 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req userRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	in := req.fields()

	user, err := s.userService.Login(c.UserContext(), deref(in.Email), deref(in.Password))
	if err != nil {
		return respondError(c, err)
	}

	return s.respondWithUser(c, fiber.StatusOK, user)
}

// GetCurrentUser handles GET /api/user
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} UserEnvelope
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user [get]
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.userService.CurrentUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return s.respondWithUser(c, fiber.StatusOK, user)
}

// UpdateCurrentUser handles PUT /api/user
// @Summary Update current user
// @Description Only the fields present in the body change
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string,bio=string,image=string} true "Changes"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user [put]
func (s *Server) UpdateCurrentUser(c *fiber.Ctx) error {
	var req userRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	in := req.fields()

	user, err := s.userService.UpdateUser(c.UserContext(), service.UpdateUserInput{
		UserID:   currentUserID(c),
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Bio:      in.Bio,
		Image:    in.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return s.respondWithUser(c, fiber.StatusOK, user)
}
