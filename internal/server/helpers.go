// Package server wires the Fiber app: middleware, routes, and the HTTP
// handlers for auth, the event catalog, favourites, and profiles.
package server

import (
	"gatherly/internal/middleware"
	"gatherly/internal/models"
	"gatherly/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pageQuery holds parsed page/per_page query parameters.
type pageQuery struct {
	Page    int
	PerPage int
}

func parsePageQuery(c *fiber.Ctx) pageQuery {
	return pageQuery{
		Page:    c.QueryInt("page", 1),
		PerPage: c.QueryInt("per_page", 0), // 0 = service default
	}
}

// sess returns the session loaded by SessionLoader. Nil means anonymous.
func (s *Server) sess(c *fiber.Ctx) *session.Session {
	if v, ok := c.Locals("session").(*session.Session); ok {
		return v
	}
	return nil
}

// flashRedirect queues a flash message and redirects to a safe route. This
// is how every browser-flow error and confirmation is surfaced.
func (s *Server) flashRedirect(c *fiber.Ctx, message, location string) error {
	if err := s.sessions.Flash(c, message); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to queue flash message",
			"error", err.Error())
	}
	return c.Redirect(location, fiber.StatusSeeOther)
}

// requireLogin returns the authenticated session, or redirects to the login
// page and returns false.
func (s *Server) requireLogin(c *fiber.Ctx) (*session.Session, bool) {
	sess := s.sess(c)
	if !sess.Authenticated() {
		_ = s.flashRedirect(c, "Please log in to continue", "/login")
		return nil, false
	}
	return sess, true
}

// parseEventID parses the :id route parameter as an ObjectID.
func parseEventID(c *fiber.Ctx) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, models.NewNotFoundError("Event", c.Params("id"))
	}
	return id, nil
}

// popFlashes drains the pending flash messages, logging rather than failing
// on a session store error: a listing should not 500 over lost flashes.
func (s *Server) popFlashes(c *fiber.Ctx) []string {
	flashes, err := s.sessions.PopFlashes(c)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to pop flash messages",
			"error", err.Error())
		return []string{}
	}
	return flashes
}
