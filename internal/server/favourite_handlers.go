package server

import (
	"github.com/gofiber/fiber/v2"

	"gatherly/internal/models"
)

// AddFavourite saves an event to the logged-in user's favourites.
func (s *Server) AddFavourite(c *fiber.Ctx) error {
	sess, ok := s.requireLogin(c)
	if !ok {
		return nil
	}
	back := "/profile/" + sess.User

	id, err := parseEventID(c)
	if err != nil {
		return s.flashRedirect(c, "Event not found", back)
	}

	if err := s.favouriteService.Add(c.UserContext(), sess.User, id); err != nil {
		switch {
		case models.HasCode(err, models.CodeAlreadyFavourited):
			return s.flashRedirect(c, err.Error(), back)
		case models.HasCode(err, models.CodeNotFound):
			return s.flashRedirect(c, "Event not found", back)
		default:
			return models.RespondWithError(c, models.StatusForError(err), err)
		}
	}
	return s.flashRedirect(c, "Favourite saved", back)
}

// RemoveFavourite drops an event from the logged-in user's favourites.
// Removing an absent entry is a silent no-op.
func (s *Server) RemoveFavourite(c *fiber.Ctx) error {
	sess, ok := s.requireLogin(c)
	if !ok {
		return nil
	}
	back := "/profile/" + sess.User

	id, err := parseEventID(c)
	if err != nil {
		return s.flashRedirect(c, "Event not found", back)
	}

	if err := s.favouriteService.Remove(c.UserContext(), sess.User, id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return s.flashRedirect(c, "Favourite removed", back)
}
