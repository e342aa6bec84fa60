package api

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
)

const currentUserContextKey = "observatory.currentUser"

// LoadUser resolves the identity cookie into the current user and stows
// it on the request context. Requests without a valid cookie pass
// through anonymously; stale cookies are cleared on the way.
func (handler *Handler) LoadUser(c *fiber.Ctx) error {
	userID, ok := handler.openIdentityCookie(c)
	if !ok {
		return c.Next()
	}

	user, err := handler.repos.Users.FindByID(userID)
	if err != nil {
		if db.IsNotFound(err) {
			handler.clearIdentityCookie(c)
			return c.Next()
		}
		return handler.internalError(c, "load current user", err)
	}

	c.Locals(currentUserContextKey, &user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(currentUserContextKey).(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// MemberRequired bounces anonymous visitors to the login page with the
// original path preserved so they land back where they started.
func (handler *Handler) MemberRequired(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return redirectToLogin(c)
	}
	return c.Next()
}

func (handler *Handler) MentorRequired(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return redirectToLogin(c)
	}
	if !user.IsMentor() {
		return fiber.ErrForbidden
	}
	return c.Next()
}

func (handler *Handler) AdminRequired(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return redirectToLogin(c)
	}
	if !user.IsAdmin() {
		return fiber.ErrForbidden
	}
	return c.Next()
}

func redirectToLogin(c *fiber.Ctx) error {
	return redirect(c, "/login?to="+url.QueryEscape(c.Path()))
}
