package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
	"github.com/observatory-hq/observatory/internal/security"
)

type editUserForm struct {
	RealName string `form:"real_name"`
	Handle   string `form:"handle"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Bio      string `form:"bio"`
	Mmost    string `form:"mmost"`
	Tier     string `form:"tier"`
	Active   string `form:"active"`
	Former   string `form:"former"`
	Extrn    string `form:"extrn"`
}

// formBool reads an HTML checkbox value. Browsers send "on" for checked
// boxes and omit the field entirely otherwise.
func formBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1":
		return true
	default:
		return false
	}
}

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := handler.repos.Users.Search(c.Query("s"), c.Query("a") != "")
	if err != nil {
		return handler.internalError(c, "search users", err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (handler *Handler) UsersJSON(c *fiber.Ctx) error {
	users, err := handler.repos.Users.Search(c.Query("s"), c.Query("a") != "")
	if err != nil {
		return handler.internalError(c, "search users", err)
	}
	return c.JSON(users)
}

// ShowUser renders a profile. The path parameter is normally a numeric
// id; a handle is accepted too and redirects to the canonical id URL.
func (handler *Handler) ShowUser(c *fiber.Ctx) error {
	rawID := c.Params("id")
	userID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		user, err := handler.repos.Users.FindByHandle(rawID)
		if err != nil {
			if db.IsNotFound(err) {
				return fiber.ErrNotFound
			}
			return handler.internalError(c, "look up user handle", err)
		}
		return redirect(c, fmt.Sprintf("/users/%d", user.ID))
	}

	user, err := handler.repos.Users.FindByID(uint(userID))
	if err != nil {
		if db.IsNotFound(err) {
			return fiber.ErrNotFound
		}
		return handler.internalError(c, "load user", err)
	}

	summary, err := handler.grades.Summarize(user)
	if err != nil {
		return handler.internalError(c, "summarize grades", err)
	}
	groups, err := handler.repos.Groups.GroupsForUser(user.ID)
	if err != nil {
		return handler.internalError(c, "load user groups", err)
	}
	projects, err := handler.repos.Projects.ProjectsForUser(user.ID)
	if err != nil {
		return handler.internalError(c, "load user projects", err)
	}

	return c.JSON(fiber.Map{
		"user":     user,
		"summary":  summary,
		"groups":   groups,
		"projects": projects,
	})
}

func (handler *Handler) ShowEditUser(c *fiber.Ctx) error {
	target, statusErr := handler.loadUserParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsAdmin() && actor.ID != target.ID {
		return fiber.ErrForbidden
	}

	response := fiber.Map{"page": "edit-user", "user": target}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

// UpdateUser applies a profile edit. Admins can edit anyone; everyone
// else only themselves. Tier changes are admin-only, can never exceed
// the acting admin's own tier, and never touch the built-in admin.
func (handler *Handler) UpdateUser(c *fiber.Ctx) error {
	target, statusErr := handler.loadUserParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if !actor.IsAdmin() && actor.ID != target.ID {
		return fiber.ErrForbidden
	}

	var form editUserForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, fmt.Sprintf("/users/%d/edit", target.ID), FormErrorOther)
	}

	form.RealName = strings.TrimSpace(form.RealName)
	form.Handle = strings.TrimSpace(form.Handle)
	form.Email = strings.TrimSpace(form.Email)
	form.Mmost = strings.TrimSpace(form.Mmost)
	editPath := fmt.Sprintf("/users/%d/edit", target.ID)

	if form.RealName == "" || form.Handle == "" || form.Email == "" {
		return redirectWithError(c, editPath, FormErrorOther)
	}
	if isReservedName(form.Handle) {
		return redirectWithError(c, editPath, FormErrorNameReserved)
	}
	if taken, err := handler.repos.Users.ExistsEmailOtherThan(form.Email, target.ID); err != nil {
		return handler.internalError(c, "check edited email", err)
	} else if taken {
		return redirectWithError(c, editPath, FormErrorEmailExists)
	}
	if taken, err := handler.repos.Users.ExistsHandleOtherThan(form.Handle, target.ID); err != nil {
		return handler.internalError(c, "check edited handle", err)
	} else if taken {
		return redirectWithError(c, editPath, FormErrorHandleExists)
	}
	if taken, err := handler.repos.Users.ExistsMmostOtherThan(form.Mmost, target.ID); err != nil {
		return handler.internalError(c, "check edited mmost handle", err)
	} else if taken {
		return redirectWithError(c, editPath, FormErrorMmostExists)
	}

	tier := target.Tier
	active := target.Active
	former := target.Former
	extrn := target.Extrn
	if actor.IsAdmin() {
		if requested, err := strconv.Atoi(form.Tier); err == nil &&
			target.ID != models.AdminUserID && requested <= actor.Tier {
			tier = requested
		}
		active = formBool(form.Active)
		former = formBool(form.Former)
		extrn = formBool(form.Extrn)
	}

	updates := map[string]any{
		"real_name": form.RealName,
		"handle":    form.Handle,
		"email":     form.Email,
		"bio":       form.Bio,
		"mmost":     form.Mmost,
		"tier":      tier,
		"active":    active,
		"former":    former,
		"extrn":     extrn,
	}
	if form.Password != "" {
		salt, err := security.NewSalt()
		if err != nil {
			return handler.internalError(c, "generate edit salt", err)
		}
		updates["salt"] = models.BinaryText(salt)
		updates["password_hash"] = models.BinaryText(security.DerivePassword(form.Password, salt))
	}

	if err := handler.repos.Users.UpdateByID(target.ID, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return redirectWithError(c, editPath, FormErrorEmailExists)
		}
		return handler.internalError(c, "update user", err)
	}

	handler.audit.Record(actor.ID, "updated user %d", target.ID)
	return redirect(c, fmt.Sprintf("/users/%d", target.ID))
}

func (handler *Handler) DeleteUser(c *fiber.Ctx) error {
	target, statusErr := handler.loadUserParam(c)
	if statusErr != nil {
		return statusErr
	}

	actor, _ := currentUser(c)
	if err := handler.repos.Users.Delete(target.ID); err != nil {
		return handler.internalError(c, "delete user", err)
	}

	handler.audit.Record(actor.ID, "deleted user %d (%q)", target.ID, target.Handle)
	return redirect(c, "/users")
}

func (handler *Handler) loadUserParam(c *fiber.Ctx) (models.User, error) {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return models.User{}, fiber.ErrNotFound
	}

	user, lookupErr := handler.repos.Users.FindByID(uint(userID))
	if lookupErr != nil {
		if db.IsNotFound(lookupErr) {
			return models.User{}, fiber.ErrNotFound
		}
		return models.User{}, handler.internalError(c, "load user", lookupErr)
	}
	return user, nil
}
