package api

import (
	"github.com/gofiber/fiber/v2"
)

// Dashboard shows the current user their own standing: attendance
// progress, counted commits, and the groups and projects they belong to.
func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	summary, err := handler.grades.Summarize(*user)
	if err != nil {
		return handler.internalError(c, "summarize grades", err)
	}

	groups, err := handler.repos.Groups.GroupsForUser(user.ID)
	if err != nil {
		return handler.internalError(c, "load dashboard groups", err)
	}
	projects, err := handler.repos.Projects.ProjectsForUser(user.ID)
	if err != nil {
		return handler.internalError(c, "load dashboard projects", err)
	}

	return c.JSON(fiber.Map{
		"user":     user,
		"summary":  summary,
		"groups":   groups,
		"projects": projects,
	})
}
