package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"gatherly/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func jsonBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestListEvents(t *testing.T) {
	s, app, mocks := newTestServer(t)
	app.Get("/events", s.ListEvents)

	mocks.events.On("List", mock.Anything, 8, 0).
		Return([]models.Event{{EventName: "Jazz Night"}, {EventName: "Book Club"}}, int64(2), nil).Once()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/events", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := jsonBody(t, resp)
	events := body["events"].([]any)
	assert.Len(t, events, 2)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, float64(1), pagination["page_count"])
}

func TestListEvents_Paging(t *testing.T) {
	s, app, mocks := newTestServer(t)
	app.Get("/events", s.ListEvents)

	mocks.events.On("List", mock.Anything, 5, 10).
		Return([]models.Event{}, int64(12), nil).Once()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/events?page=3&per_page=5", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	pagination := jsonBody(t, resp)["pagination"].(map[string]any)
	assert.Equal(t, float64(3), pagination["page"])
	assert.Equal(t, float64(3), pagination["page_count"])
	mocks.events.AssertExpectations(t)
}

func TestSearchEvents(t *testing.T) {
	s, app, mocks := newTestServer(t)
	app.Post("/search", s.SearchEvents)

	t.Run("Passes the query through", func(t *testing.T) {
		mocks.events.On("Search", mock.Anything, "jazz", 8, 0).
			Return([]models.Event{{EventName: "Jazz Night"}}, int64(1), nil).Once()

		resp, err := app.Test(formReq("/search", url.Values{"query": {"jazz"}}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := jsonBody(t, resp)
		assert.Equal(t, "jazz", body["query"])
		assert.Len(t, body["events"].([]any), 1)
	})

	t.Run("Empty query returns an empty page", func(t *testing.T) {
		resp, err := app.Test(formReq("/search", url.Values{"query": {"   "}}), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Empty(t, jsonBody(t, resp)["events"])
	})
}

func TestViewEvent(t *testing.T) {
	s, app, mocks := newTestServer(t)
	app.Get("/view_event/:id", s.ViewEvent)

	t.Run("Found", func(t *testing.T) {
		id := primitive.NewObjectID()
		mocks.events.On("GetByID", mock.Anything, id).
			Return(&models.Event{ID: id, EventName: "Jazz Night"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/view_event/"+id.Hex(), nil), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		event := jsonBody(t, resp)["event"].(map[string]any)
		assert.Equal(t, "Jazz Night", event["event_name"])
	})

	t.Run("Unknown ID is 404", func(t *testing.T) {
		id := primitive.NewObjectID()
		mocks.events.On("GetByID", mock.Anything, id).
			Return(nil, models.NewNotFoundError("Event", id.Hex())).Once()

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/view_event/"+id.Hex(), nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, models.CodeNotFound, jsonBody(t, resp)["code"])
	})

	t.Run("Malformed ID is 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/view_event/not-hex", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestAddEvent(t *testing.T) {
	s, app, mocks := newTestServer(t)
	app.Post("/add_event", s.AddEvent)

	t.Run("Anonymous is redirected to login", func(t *testing.T) {
		resp, err := app.Test(formReq("/add_event", url.Values{"event_name": {"Party"}}), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("Logged in creates the event with the session owner", func(t *testing.T) {
		mocks.events.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Event) bool {
			return e.EventName == "Garden Party" && e.CreatedBy == "alice" && !e.CreatedOn.IsZero()
		})).Return(nil).Once()

		req := formReq("/add_event", url.Values{
			"event_name": {"Garden Party"},
			"event_type": {"Festival"},
			"location":   {"The Park"},
		})
		req.AddCookie(loginAs(t, s, "alice"))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/events", resp.Header.Get(fiber.HeaderLocation))
		mocks.events.AssertExpectations(t)
	})
}

func TestEditEvent(t *testing.T) {
	s, app, mocks := newTestServer(t)
	app.Post("/edit_event/:id", s.EditEvent)

	t.Run("Form patch carries only posted fields", func(t *testing.T) {
		id := primitive.NewObjectID()
		mocks.events.On("Patch", mock.Anything, id, mock.MatchedBy(func(p models.EventPatch) bool {
			doc := p.SetDocument()
			return len(doc) == 1 && doc[0].Key == "event_name" && doc[0].Value == "Renamed"
		})).Return(nil).Once()
		mocks.events.On("GetByID", mock.Anything, id).
			Return(&models.Event{ID: id, EventName: "Renamed"}, nil).Once()

		req := formReq("/edit_event/"+id.Hex(), url.Values{"event_name": {"Renamed"}})
		req.AddCookie(loginAs(t, s, "alice"))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/events", resp.Header.Get(fiber.HeaderLocation))
		mocks.events.AssertExpectations(t)
	})

	t.Run("JSON patch is accepted", func(t *testing.T) {
		id := primitive.NewObjectID()
		mocks.events.On("Patch", mock.Anything, id, mock.MatchedBy(func(p models.EventPatch) bool {
			return p.Location != nil && *p.Location == "Town Hall" && p.EventName == nil
		})).Return(nil).Once()
		mocks.events.On("GetByID", mock.Anything, id).
			Return(&models.Event{ID: id}, nil).Once()

		req := httptest.NewRequest(fiber.MethodPost, "/edit_event/"+id.Hex(),
			strings.NewReader(`{"location":"Town Hall"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.AddCookie(loginAs(t, s, "alice"))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		mocks.events.AssertExpectations(t)
	})

	t.Run("Empty patch redirects back to the edit form", func(t *testing.T) {
		id := primitive.NewObjectID()

		req := formReq("/edit_event/"+id.Hex(), url.Values{})
		req.AddCookie(loginAs(t, s, "alice"))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/edit_event/"+id.Hex(), resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("Unknown event is 404", func(t *testing.T) {
		id := primitive.NewObjectID()
		mocks.events.On("Patch", mock.Anything, id, mock.Anything).
			Return(models.NewNotFoundError("Event", id.Hex())).Once()

		req := formReq("/edit_event/"+id.Hex(), url.Values{"event_name": {"x"}})
		req.AddCookie(loginAs(t, s, "alice"))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteEvent(t *testing.T) {
	s, app, mocks := newTestServer(t)
	app.Get("/delete_event/:id", s.DeleteEvent)

	t.Run("Anonymous is redirected to login", func(t *testing.T) {
		id := primitive.NewObjectID()
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/delete_event/"+id.Hex(), nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("Deletes and cleans up favourites", func(t *testing.T) {
		id := primitive.NewObjectID()
		mocks.events.On("Delete", mock.Anything, id).Return(nil).Once()
		mocks.users.On("PullFavouriteFromAll", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(fiber.MethodGet, "/delete_event/"+id.Hex(), nil)
		req.AddCookie(loginAs(t, s, "alice"))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/events", resp.Header.Get(fiber.HeaderLocation))
		mocks.events.AssertExpectations(t)
		mocks.users.AssertExpectations(t)
	})
}

func TestAddEventForm(t *testing.T) {
	s, app, mocks := newTestServer(t)
	app.Get("/add_event", s.AddEventForm)

	mocks.types.On("List", mock.Anything).
		Return([]models.EventType{{EventType: "Concert"}, {EventType: "Festival"}}, nil).Once()

	req := httptest.NewRequest(fiber.MethodGet, "/add_event", nil)
	req.AddCookie(loginAs(t, s, "alice"))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, jsonBody(t, resp)["event_types"].([]any), 2)
}
