package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/feeds"
	"github.com/observatory-hq/observatory/internal/models"
)

type eventForm struct {
	Title       string `form:"title"`
	StartAt     string `form:"start_at"`
	EndAt       string `form:"end_at"`
	Description string `form:"description"`
	Location    string `form:"location"`
	Color       string `form:"color"`
}

func (handler *Handler) Calendar(c *fiber.Ctx) error {
	events, err := handler.repos.Events.ListOrdered()
	if err != nil {
		return handler.internalError(c, "list events", err)
	}

	response := fiber.Map{"events": events}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

func (handler *Handler) CalendarJSON(c *fiber.Ctx) error {
	events, err := handler.repos.Events.ListOrdered()
	if err != nil {
		return handler.internalError(c, "list events", err)
	}
	return c.JSON(events)
}

// CalendarICS serves the whole calendar as an iCalendar document, for
// subscription from external calendar apps.
func (handler *Handler) CalendarICS(c *fiber.Ctx) error {
	events, err := handler.repos.Events.ListOrdered()
	if err != nil {
		return handler.internalError(c, "list events", err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	return c.Send(feeds.RenderCalendarICS(events, handler.feedHost()))
}

func (handler *Handler) ShowNewEvent(c *fiber.Ctx) error {
	response := fiber.Map{"page": "new-event"}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

// CreateEvent records a public event and mints its attendance code.
func (handler *Handler) CreateEvent(c *fiber.Ctx) error {
	actor, _ := currentUser(c)

	var form eventForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, "/calendar/new", FormErrorOther)
	}

	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		return redirectWithError(c, "/calendar/new", FormErrorOther)
	}
	if isReservedName(form.Title) {
		return redirectWithError(c, "/calendar/new", FormErrorNameReserved)
	}

	startAt, endAt, ok := parseEventTimes(form.StartAt, form.EndAt)
	if !ok {
		return redirectWithError(c, "/calendar/new", FormErrorInvalidDate)
	}

	var event models.Event
	if err := handler.mintAndInsert(func(code string) error {
		event = models.Event{
			StartAt:  startAt,
			EndAt:    endAt,
			Title:    form.Title,
			HostedBy: actor.ID,
			Code:     code,
		}
		applyEventOptionals(&event, form)
		return handler.repos.Events.Create(&event)
	}); err != nil {
		return handler.internalError(c, "create event", err)
	}

	handler.audit.Record(actor.ID, "generated code %s for event %d (%q)", event.Code, event.ID, event.Title)
	return redirect(c, "/calendar")
}

func (handler *Handler) ShowEvent(c *fiber.Ctx) error {
	event, statusErr := handler.loadEventParam(c)
	if statusErr != nil {
		return statusErr
	}
	return c.JSON(fiber.Map{"event": event})
}

// UpdateEvent edits an event in place. The attendance code never
// rotates, so codes shared before the edit stay valid.
func (handler *Handler) UpdateEvent(c *fiber.Ctx) error {
	event, statusErr := handler.loadEventParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsAdmin() && actor.ID != event.HostedBy {
		return fiber.ErrForbidden
	}

	eventPath := fmt.Sprintf("/calendar/%d", event.ID)
	var form eventForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, eventPath, FormErrorOther)
	}

	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		return redirectWithError(c, eventPath, FormErrorOther)
	}
	if isReservedName(form.Title) {
		return redirectWithError(c, eventPath, FormErrorNameReserved)
	}
	startAt, endAt, ok := parseEventTimes(form.StartAt, form.EndAt)
	if !ok {
		return redirectWithError(c, eventPath, FormErrorInvalidDate)
	}

	event.Title = form.Title
	event.StartAt = startAt
	event.EndAt = endAt
	event.Description = nil
	event.Location = nil
	event.Color = nil
	applyEventOptionals(&event, form)

	if err := handler.repos.Events.Save(&event); err != nil {
		return handler.internalError(c, "update event", err)
	}

	handler.audit.Record(actor.ID, "updated event %d", event.ID)
	return redirect(c, "/calendar")
}

func (handler *Handler) DeleteEvent(c *fiber.Ctx) error {
	event, statusErr := handler.loadEventParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if err := handler.repos.Events.Delete(event.ID); err != nil {
		return handler.internalError(c, "delete event", err)
	}

	handler.audit.Record(actor.ID, "deleted event %d (%q)", event.ID, event.Title)
	return redirect(c, "/calendar")
}

func (handler *Handler) loadEventParam(c *fiber.Ctx) (models.Event, error) {
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return models.Event{}, fiber.ErrNotFound
	}

	event, lookupErr := handler.repos.Events.FindByID(uint(eventID))
	if lookupErr != nil {
		if db.IsNotFound(lookupErr) {
			return models.Event{}, fiber.ErrNotFound
		}
		return models.Event{}, handler.internalError(c, "load event", lookupErr)
	}
	return event, nil
}

// parseEventTimes validates the event interval. An event must not end
// before it starts.
func parseEventTimes(rawStart, rawEnd string) (time.Time, time.Time, bool) {
	startAt, err := time.ParseInLocation(datetimeLocalLayout, rawStart, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	endAt, err := time.ParseInLocation(datetimeLocalLayout, rawEnd, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if endAt.Before(startAt) {
		return time.Time{}, time.Time{}, false
	}
	return startAt, endAt, true
}

func applyEventOptionals(event *models.Event, form eventForm) {
	if description := strings.TrimSpace(form.Description); description != "" {
		event.Description = &description
	}
	if location := strings.TrimSpace(form.Location); location != "" {
		event.Location = &location
	}
	if color := strings.TrimSpace(form.Color); color != "" {
		event.Color = &color
	}
}

// feedHost extracts the bare host from the configured base URL, for use
// in feed identifiers.
func (handler *Handler) feedHost() string {
	parsed, err := url.Parse(handler.options.BaseURL)
	if err != nil || parsed.Host == "" {
		return "localhost"
	}
	return parsed.Host
}
