package server

import (
	"github.com/gofiber/fiber/v2"

	"gatherly/internal/models"
)

// ListEvents returns a page of the event catalog, newest first.
func (s *Server) ListEvents(c *fiber.Ctx) error {
	page := parsePageQuery(c)
	events, pagination, err := s.eventService.List(c.UserContext(), page.Page, page.PerPage)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"events":     events,
		"pagination": pagination,
		"flashes":    s.popFlashes(c),
	})
}

// SearchEvents runs a full-text search over the catalog.
func (s *Server) SearchEvents(c *fiber.Ctx) error {
	query := c.FormValue("query")
	page := parsePageQuery(c)
	events, pagination, err := s.eventService.Search(c.UserContext(), query, page.Page, page.PerPage)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"events":     events,
		"pagination": pagination,
		"query":      query,
		"flashes":    s.popFlashes(c),
	})
}

// ViewEvent returns a single event by ID.
func (s *Server) ViewEvent(c *fiber.Ctx) error {
	id, err := parseEventID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Event", c.Params("id")))
	}
	event, err := s.eventService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"event":   event,
		"flashes": s.popFlashes(c),
	})
}

// AddEventForm returns the data the create-event page needs, including
// the type vocabulary for its selection list.
func (s *Server) AddEventForm(c *fiber.Ctx) error {
	if _, ok := s.requireLogin(c); !ok {
		return nil
	}
	types, err := s.eventService.ListTypes(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"event_types": types,
		"flashes":     s.popFlashes(c),
	})
}

// AddEvent creates an event owned by the logged-in user.
func (s *Server) AddEvent(c *fiber.Ctx) error {
	sess, ok := s.requireLogin(c)
	if !ok {
		return nil
	}

	var input models.EventInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.eventService.Create(c.UserContext(), input, sess.User); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return s.flashRedirect(c, "Event added", "/events")
}

// EditEventForm returns the current event alongside the type vocabulary.
func (s *Server) EditEventForm(c *fiber.Ctx) error {
	if _, ok := s.requireLogin(c); !ok {
		return nil
	}
	id, err := parseEventID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Event", c.Params("id")))
	}
	event, err := s.eventService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	types, err := s.eventService.ListTypes(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return c.JSON(fiber.Map{
		"event":       event,
		"event_types": types,
		"flashes":     s.popFlashes(c),
	})
}

// formPatch builds a partial update from a form body. A field is included
// only when the form actually posted it, so omitted fields stay untouched.
func formPatch(c *fiber.Ctx) models.EventPatch {
	args := c.Request().PostArgs()
	var patch models.EventPatch
	take := func(name string) *string {
		if !args.Has(name) {
			return nil
		}
		v := string(args.Peek(name))
		return &v
	}
	patch.EventName = take("event_name")
	patch.EventType = take("event_type")
	patch.Location = take("location")
	patch.Description = take("description")
	patch.Date = take("date")
	patch.ImageURL = take("image_url")
	return patch
}

// EditEvent applies a partial update to an event.
func (s *Server) EditEvent(c *fiber.Ctx) error {
	if _, ok := s.requireLogin(c); !ok {
		return nil
	}
	id, err := parseEventID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Event", c.Params("id")))
	}

	var patch models.EventPatch
	if c.Is("json") {
		if err := c.BodyParser(&patch); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	} else {
		patch = formPatch(c)
	}

	if _, err := s.eventService.Update(c.UserContext(), id, patch); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.flashRedirect(c, err.Error(), "/edit_event/"+c.Params("id"))
		}
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return s.flashRedirect(c, "Event updated", "/events")
}

// DeleteEvent removes an event and strips it from all favourites lists.
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	if _, ok := s.requireLogin(c); !ok {
		return nil
	}
	id, err := parseEventID(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Event", c.Params("id")))
	}
	if err := s.eventService.Delete(c.UserContext(), id); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}
	return s.flashRedirect(c, "Event deleted", "/events")
}
