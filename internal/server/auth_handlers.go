package server

import (
	"github.com/gofiber/fiber/v2"

	"gatherly/internal/middleware"
	"gatherly/internal/models"
)

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// RegisterForm returns the data a registration page needs.
func (s *Server) RegisterForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":    "register",
		"flashes": s.popFlashes(c),
	})
}

// Register creates a new account and logs it in.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.UserContext(), req.Username, req.Password, req.Email)
	if err != nil {
		if models.HasCode(err, models.CodeDuplicateUser) {
			return s.flashRedirect(c, "Username already exists", "/register")
		}
		if models.HasCode(err, models.CodeValidation) {
			return s.flashRedirect(c, err.Error(), "/register")
		}
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if _, err := s.sessions.Start(c, user.Username); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "session start failed",
			"error", err.Error(), "username", user.Username)
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return s.flashRedirect(c, "Registration complete!", "/events")
}

// LoginForm returns the data a login page needs.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":    "login",
		"flashes": s.popFlashes(c),
	})
}

// Login authenticates a user and starts a session.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if models.HasCode(err, models.CodeInvalidCredentials) {
			return s.flashRedirect(c, err.Error(), "/login")
		}
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	if _, err := s.sessions.Start(c, user.Username); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "session start failed",
			"error", err.Error(), "username", user.Username)
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return s.flashRedirect(c, "Welcome, "+user.Username, "/profile/"+user.Username)
}

// Logout ends the current session. Safe to call when not logged in.
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Destroy(c); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "session destroy failed",
			"error", err.Error())
	}
	return s.flashRedirect(c, "You have been logged out", "/login")
}
