package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name": "observatory",
		"news": "/news",
	})
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// RegisterRoutes wires every route onto the app. Literal segments are
// registered before their sibling :id routes so "new", "json", and
// friends never fall through to the parameter handlers; the reserved
// name list guards the same collision on the data side.
func (handler *Handler) RegisterRoutes(app *fiber.App) {
	app.Use(handler.LoadUser)

	app.Get("/", handler.Index)
	app.Get("/healthz", handler.Health)

	app.Get("/signup", handler.ShowSignup)
	app.Post("/signup", handler.Signup)
	app.Get("/login", handler.ShowLogin)
	app.Post("/login", handler.Login)
	app.Get("/logout", handler.Logout)

	app.Get("/dashboard", handler.MemberRequired, handler.Dashboard)

	app.Get("/attend", handler.MemberRequired, handler.ShowAttend)
	app.Post("/attend", handler.MemberRequired, handler.Attend)

	app.Get("/users", handler.ListUsers)
	app.Get("/users/json", handler.UsersJSON)
	app.Get("/users/:id", handler.ShowUser)
	app.Get("/users/:id/edit", handler.MemberRequired, handler.ShowEditUser)
	app.Put("/users/:id", handler.MemberRequired, handler.UpdateUser)
	app.Delete("/users/:id", handler.AdminRequired, handler.DeleteUser)

	app.Get("/groups", handler.MentorRequired, handler.ListGroups)
	app.Get("/groups/json", handler.MentorRequired, handler.GroupsJSON)
	app.Get("/groups/new", handler.AdminRequired, handler.ShowNewGroup)
	app.Post("/groups/new", handler.AdminRequired, handler.CreateGroup)
	app.Get("/groups/:id", handler.MemberRequired, handler.ShowGroup)
	app.Delete("/groups/:id", handler.AdminRequired, handler.DeleteGroup)
	app.Post("/groups/:id/members", handler.MemberRequired, handler.AddGroupMember)
	app.Delete("/groups/:id/members/:uid", handler.MemberRequired, handler.RemoveGroupMember)
	app.Post("/groups/:id/meetings/new", handler.MemberRequired, handler.CreateMeeting)
	app.Get("/groups/:id/meetings/:mid", handler.MemberRequired, handler.ShowMeeting)
	app.Delete("/groups/:id/meetings/:mid", handler.MemberRequired, handler.DeleteMeeting)

	app.Get("/projects", handler.MemberRequired, handler.ListProjects)
	app.Get("/projects/json", handler.MemberRequired, handler.ProjectsJSON)
	app.Get("/projects/new", handler.MemberRequired, handler.ShowNewProject)
	app.Post("/projects/new", handler.MemberRequired, handler.CreateProject)
	app.Get("/projects/:id", handler.MemberRequired, handler.ShowProject)
	app.Get("/projects/:id/commits", handler.MemberRequired, handler.ProjectCommits)
	app.Put("/projects/:id", handler.MemberRequired, handler.UpdateProject)
	app.Post("/projects/:id/join", handler.MemberRequired, handler.JoinProject)
	app.Delete("/projects/:id", handler.AdminRequired, handler.DeleteProject)

	app.Get("/calendar", handler.MemberRequired, handler.Calendar)
	app.Get("/calendar/json", handler.MemberRequired, handler.CalendarJSON)
	app.Get("/calendar/ical", handler.CalendarICS)
	app.Get("/calendar/new", handler.AdminRequired, handler.ShowNewEvent)
	app.Post("/calendar/new", handler.AdminRequired, handler.CreateEvent)
	app.Get("/calendar/:id", handler.MemberRequired, handler.ShowEvent)
	app.Put("/calendar/:id", handler.MemberRequired, handler.UpdateEvent)
	app.Delete("/calendar/:id", handler.AdminRequired, handler.DeleteEvent)

	app.Get("/news", handler.ListNews)
	app.Get("/news/json", handler.NewsJSON)
	app.Get("/news/xml", handler.NewsRSS)
	app.Get("/news/new", handler.AdminRequired, handler.ShowNewStory)
	app.Post("/news/new", handler.AdminRequired, handler.CreateStory)
	app.Get("/news/:id", handler.ShowStory)
	app.Put("/news/:id", handler.AdminRequired, handler.UpdateStory)
	app.Delete("/news/:id", handler.AdminRequired, handler.DeleteStory)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
