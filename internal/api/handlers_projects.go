package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
)

type projectForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Homepage    string `form:"homepage"`
	Repos       string `form:"repos"`
	Active      string `form:"active"`
	Extrn       string `form:"extrn"`
}

// splitRepoLines turns the textarea submission into a repo list, one URL
// per line.
func splitRepoLines(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	repos := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			repos = append(repos, trimmed)
		}
	}
	return repos
}

func (handler *Handler) ListProjects(c *fiber.Ctx) error {
	projects, err := handler.repos.Projects.Search(c.Query("s"))
	if err != nil {
		return handler.internalError(c, "search projects", err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

func (handler *Handler) ProjectsJSON(c *fiber.Ctx) error {
	projects, err := handler.repos.Projects.Search(c.Query("s"))
	if err != nil {
		return handler.internalError(c, "search projects", err)
	}
	return c.JSON(projects)
}

func (handler *Handler) ShowNewProject(c *fiber.Ctx) error {
	response := fiber.Map{"page": "new-project"}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

// CreateProject registers a project owned by the current user, who joins
// it in the same stroke.
func (handler *Handler) CreateProject(c *fiber.Ctx) error {
	actor, _ := currentUser(c)

	var form projectForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, "/projects/new", FormErrorOther)
	}

	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		return redirectWithError(c, "/projects/new", FormErrorOther)
	}
	if isReservedName(form.Name) {
		return redirectWithError(c, "/projects/new", FormErrorNameReserved)
	}
	if taken, err := handler.repos.Projects.ExistsName(form.Name); err != nil {
		return handler.internalError(c, "check project name", err)
	} else if taken {
		return redirectWithError(c, "/projects/new", FormErrorNameTaken)
	}

	project := models.Project{
		Name:        form.Name,
		Description: form.Description,
		OwnerID:     actor.ID,
		Active:      true,
		Extrn:       formBool(form.Extrn),
	}
	if homepage := strings.TrimSpace(form.Homepage); homepage != "" {
		project.Homepage = &homepage
	}
	if err := project.SetRepoList(splitRepoLines(form.Repos)); err != nil {
		return redirectWithError(c, "/projects/new", FormErrorOther)
	}

	if err := handler.repos.Projects.Create(&project); err != nil {
		if db.IsUniqueViolation(err) {
			return redirectWithError(c, "/projects/new", FormErrorNameTaken)
		}
		return handler.internalError(c, "create project", err)
	}
	if err := handler.repos.Projects.AddMember(project.ID, actor.ID); err != nil {
		return handler.internalError(c, "enroll project owner", err)
	}

	handler.audit.Record(actor.ID, "created project %d (%q)", project.ID, project.Name)
	return redirect(c, fmt.Sprintf("/projects/%d", project.ID))
}

func (handler *Handler) ShowProject(c *fiber.Ctx) error {
	project, statusErr := handler.loadProjectParam(c)
	if statusErr != nil {
		return statusErr
	}

	members, err := handler.repos.Projects.Members(project.ID)
	if err != nil {
		return handler.internalError(c, "load project members", err)
	}

	response := fiber.Map{
		"project": project,
		"repos":   project.RepoList(),
		"members": members,
	}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

// ProjectCommits tallies commits per author across the project's
// repositories, as far as the forge will answer.
func (handler *Handler) ProjectCommits(c *fiber.Ctx) error {
	project, statusErr := handler.loadProjectParam(c)
	if statusErr != nil {
		return statusErr
	}

	commitsByAuthor := make(map[string]int)
	probed := 0
	for _, repoURL := range project.RepoList() {
		commits, ok := handler.commits.CommitsFor(repoURL)
		if !ok {
			continue
		}
		probed++
		for _, commit := range commits {
			if commit.AuthorLogin != "" {
				commitsByAuthor[commit.AuthorLogin]++
			}
		}
	}

	return c.JSON(fiber.Map{
		"project":       project.Name,
		"repos_probed":  probed,
		"commit_counts": commitsByAuthor,
	})
}

func (handler *Handler) UpdateProject(c *fiber.Ctx) error {
	project, statusErr := handler.loadProjectParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsAdmin() && actor.ID != project.OwnerID {
		return fiber.ErrForbidden
	}

	editPath := fmt.Sprintf("/projects/%d", project.ID)
	var form projectForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, editPath, FormErrorOther)
	}

	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		return redirectWithError(c, editPath, FormErrorOther)
	}
	if isReservedName(form.Name) {
		return redirectWithError(c, editPath, FormErrorNameReserved)
	}
	if existing, err := handler.repos.Projects.FindByName(form.Name); err == nil && existing.ID != project.ID {
		return redirectWithError(c, editPath, FormErrorNameTaken)
	} else if err != nil && !db.IsNotFound(err) {
		return handler.internalError(c, "check project name", err)
	}

	project.Name = form.Name
	project.Description = form.Description
	project.Active = formBool(form.Active)
	project.Extrn = formBool(form.Extrn)
	project.Homepage = nil
	if homepage := strings.TrimSpace(form.Homepage); homepage != "" {
		project.Homepage = &homepage
	}
	if err := project.SetRepoList(splitRepoLines(form.Repos)); err != nil {
		return redirectWithError(c, editPath, FormErrorOther)
	}

	if err := handler.repos.Projects.Save(&project); err != nil {
		if db.IsUniqueViolation(err) {
			return redirectWithError(c, editPath, FormErrorNameTaken)
		}
		return handler.internalError(c, "update project", err)
	}

	handler.audit.Record(actor.ID, "updated project %d", project.ID)
	return redirect(c, editPath)
}

// JoinProject adds the current user to an active project. Inactive
// projects no longer accept members.
func (handler *Handler) JoinProject(c *fiber.Ctx) error {
	project, statusErr := handler.loadProjectParam(c)
	if statusErr != nil {
		return statusErr
	}
	if !project.Active {
		return fiber.NewError(fiber.StatusConflict, "project is not active")
	}

	actor, _ := currentUser(c)
	if err := handler.repos.Projects.AddMember(project.ID, actor.ID); err != nil && !db.IsUniqueViolation(err) {
		return handler.internalError(c, "join project", err)
	}

	handler.audit.Record(actor.ID, "joined project %d (%q)", project.ID, project.Name)
	return redirect(c, fmt.Sprintf("/projects/%d", project.ID))
}

func (handler *Handler) DeleteProject(c *fiber.Ctx) error {
	project, statusErr := handler.loadProjectParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if err := handler.repos.Projects.Delete(project.ID); err != nil {
		return handler.internalError(c, "delete project", err)
	}

	handler.audit.Record(actor.ID, "deleted project %d (%q)", project.ID, project.Name)
	return redirect(c, "/projects")
}

func (handler *Handler) loadProjectParam(c *fiber.Ctx) (models.Project, error) {
	projectID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return models.Project{}, fiber.ErrNotFound
	}

	project, lookupErr := handler.repos.Projects.FindByID(uint(projectID))
	if lookupErr != nil {
		if db.IsNotFound(lookupErr) {
			return models.Project{}, fiber.ErrNotFound
		}
		return models.Project{}, handler.internalError(c, "load project", lookupErr)
	}
	return project, nil
}
