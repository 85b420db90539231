package server

import (
	"github.com/gofiber/fiber/v2"

	"gatherly/internal/models"
)

// Profile returns a user's own events and favourites. Only the owner of
// the profile can view it.
func (s *Server) Profile(c *fiber.Ctx) error {
	sess, ok := s.requireLogin(c)
	if !ok {
		return nil
	}
	username := c.Params("username")
	if sess.User != username {
		return s.flashRedirect(c, "Please log in to continue", "/login")
	}

	ownEvents, err := s.eventService.ListByCreator(c.UserContext(), username)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	favourites, err := s.favouriteService.List(c.UserContext(), username)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{
		"username":   username,
		"events":     ownEvents,
		"favourites": favourites,
		"flashes":    s.popFlashes(c),
	})
}
