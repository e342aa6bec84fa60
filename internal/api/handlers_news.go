package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/feeds"
	"github.com/observatory-hq/observatory/internal/models"
)

type newsForm struct {
	Title        string `form:"title"`
	HappenedAt   string `form:"happened_at"`
	Description  string `form:"description"`
	Color        string `form:"color"`
	Announcement string `form:"announcement"`
}

func (handler *Handler) ListNews(c *fiber.Ctx) error {
	stories, err := handler.repos.News.ListOrdered()
	if err != nil {
		return handler.internalError(c, "list news", err)
	}
	return c.JSON(fiber.Map{"stories": stories})
}

func (handler *Handler) NewsJSON(c *fiber.Ctx) error {
	stories, err := handler.repos.News.ListOrdered()
	if err != nil {
		return handler.internalError(c, "list news", err)
	}
	return c.JSON(stories)
}

// NewsRSS serves the public news feed. Story bodies are markdown and
// render to HTML in the item descriptions.
func (handler *Handler) NewsRSS(c *fiber.Ctx) error {
	stories, err := handler.repos.News.ListOrdered()
	if err != nil {
		return handler.internalError(c, "list news", err)
	}

	rendered, err := feeds.RenderNewsRSS(stories, handler.options.BaseURL)
	if err != nil {
		return handler.internalError(c, "render news feed", err)
	}

	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.Send(rendered)
}

func (handler *Handler) ShowNewStory(c *fiber.Ctx) error {
	response := fiber.Map{"page": "new-story"}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

func (handler *Handler) CreateStory(c *fiber.Ctx) error {
	actor, _ := currentUser(c)

	var form newsForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, "/news/new", FormErrorOther)
	}

	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		return redirectWithError(c, "/news/new", FormErrorOther)
	}
	if isReservedName(form.Title) {
		return redirectWithError(c, "/news/new", FormErrorNameReserved)
	}
	if taken, err := handler.repos.News.ExistsTitle(form.Title); err != nil {
		return handler.internalError(c, "check story title", err)
	} else if taken {
		return redirectWithError(c, "/news/new", FormErrorNameTaken)
	}

	happenedAt, err := time.ParseInLocation(datetimeLocalLayout, form.HappenedAt, time.Local)
	if err != nil {
		return redirectWithError(c, "/news/new", FormErrorInvalidDate)
	}

	story := models.NewsStory{
		HappenedAt:   happenedAt,
		Title:        form.Title,
		Description:  form.Description,
		Announcement: formBool(form.Announcement),
	}
	if color := strings.TrimSpace(form.Color); color != "" {
		story.Color = &color
	}
	if err := handler.repos.News.Create(&story); err != nil {
		return handler.internalError(c, "create story", err)
	}

	handler.audit.Record(actor.ID, "published story %d (%q)", story.ID, story.Title)
	return redirect(c, "/news")
}

func (handler *Handler) ShowStory(c *fiber.Ctx) error {
	story, statusErr := handler.loadStoryParam(c)
	if statusErr != nil {
		return statusErr
	}
	return c.JSON(fiber.Map{"story": story})
}

func (handler *Handler) UpdateStory(c *fiber.Ctx) error {
	story, statusErr := handler.loadStoryParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	storyPath := fmt.Sprintf("/news/%d", story.ID)

	var form newsForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, storyPath, FormErrorOther)
	}

	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		return redirectWithError(c, storyPath, FormErrorOther)
	}
	if isReservedName(form.Title) {
		return redirectWithError(c, storyPath, FormErrorNameReserved)
	}
	happenedAt, err := time.ParseInLocation(datetimeLocalLayout, form.HappenedAt, time.Local)
	if err != nil {
		return redirectWithError(c, storyPath, FormErrorInvalidDate)
	}

	story.Title = form.Title
	story.HappenedAt = happenedAt
	story.Description = form.Description
	story.Announcement = formBool(form.Announcement)
	story.Color = nil
	if color := strings.TrimSpace(form.Color); color != "" {
		story.Color = &color
	}

	if err := handler.repos.News.Save(&story); err != nil {
		return handler.internalError(c, "update story", err)
	}

	handler.audit.Record(actor.ID, "updated story %d", story.ID)
	return redirect(c, storyPath)
}

func (handler *Handler) DeleteStory(c *fiber.Ctx) error {
	story, statusErr := handler.loadStoryParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if err := handler.repos.News.Delete(story.ID); err != nil {
		return handler.internalError(c, "delete story", err)
	}

	handler.audit.Record(actor.ID, "deleted story %d (%q)", story.ID, story.Title)
	return redirect(c, "/news")
}

func (handler *Handler) loadStoryParam(c *fiber.Ctx) (models.NewsStory, error) {
	storyID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return models.NewsStory{}, fiber.ErrNotFound
	}

	story, lookupErr := handler.repos.News.FindByID(uint(storyID))
	if lookupErr != nil {
		if db.IsNotFound(lookupErr) {
			return models.NewsStory{}, fiber.ErrNotFound
		}
		return models.NewsStory{}, handler.internalError(c, "load story", lookupErr)
	}
	return story, nil
}
