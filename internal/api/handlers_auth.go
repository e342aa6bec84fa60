package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
	"github.com/observatory-hq/observatory/internal/security"
)

type signupForm struct {
	RealName       string `form:"real_name"`
	Handle         string `form:"handle"`
	Email          string `form:"email"`
	Password       string `form:"password"`
	PasswordRepeat string `form:"password_repeat"`
	Mmost          string `form:"mmost"`
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (handler *Handler) ShowSignup(c *fiber.Ctx) error {
	response := fiber.Map{"page": "signup"}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

// Signup registers a new member account. Every rejection redirects back
// to the form with the reason in the e parameter.
func (handler *Handler) Signup(c *fiber.Ctx) error {
	var form signupForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, "/signup", FormErrorOther)
	}

	form.RealName = strings.TrimSpace(form.RealName)
	form.Handle = strings.TrimSpace(form.Handle)
	form.Email = strings.TrimSpace(form.Email)
	form.Mmost = strings.TrimSpace(form.Mmost)

	if form.RealName == "" || form.Handle == "" || form.Email == "" || form.Password == "" {
		return redirectWithError(c, "/signup", FormErrorOther)
	}
	if form.Password != form.PasswordRepeat {
		return redirectWithError(c, "/signup", FormErrorPasswordMismatch)
	}
	if isReservedName(form.Handle) {
		return redirectWithError(c, "/signup", FormErrorNameReserved)
	}

	if taken, err := handler.repos.Users.ExistsEmail(form.Email); err != nil {
		return handler.internalError(c, "check signup email", err)
	} else if taken {
		return redirectWithError(c, "/signup", FormErrorEmailExists)
	}
	if taken, err := handler.repos.Users.ExistsHandle(form.Handle); err != nil {
		return handler.internalError(c, "check signup handle", err)
	} else if taken {
		return redirectWithError(c, "/signup", FormErrorHandleExists)
	}
	if form.Mmost != "" {
		if taken, err := handler.repos.Users.ExistsMmostOtherThan(form.Mmost, models.AdminUserID); err != nil {
			return handler.internalError(c, "check signup mmost handle", err)
		} else if taken {
			return redirectWithError(c, "/signup", FormErrorMmostExists)
		}
	}

	salt, err := security.NewSalt()
	if err != nil {
		return handler.internalError(c, "generate signup salt", err)
	}

	user := models.User{
		RealName:     form.RealName,
		Handle:       form.Handle,
		Email:        form.Email,
		PasswordHash: security.DerivePassword(form.Password, salt),
		Salt:         salt,
		Active:       true,
		JoinedOn:     time.Now().UTC(),
		Tier:         models.TierMember,
		Mmost:        form.Mmost,
	}
	if err := handler.repos.Users.Create(&user); err != nil {
		// A concurrent signup can still hit a unique index between
		// the checks above and the insert.
		if db.IsUniqueViolation(err) {
			return redirectWithError(c, "/signup", signupCollisionError(handler.repos.Users, form))
		}
		return handler.internalError(c, "create user", err)
	}

	if err := handler.setIdentityCookie(c, user.ID); err != nil {
		return handler.internalError(c, "seal identity cookie", err)
	}
	handler.audit.Record(user.ID, "signed up as %q", user.Handle)
	return redirect(c, fmt.Sprintf("/users/%d", user.ID))
}

// signupCollisionError names the field a race-lost insert collided on
// by re-running the existence checks against the winning row.
func signupCollisionError(users *db.UserRepository, form signupForm) FormError {
	if taken, err := users.ExistsEmail(form.Email); err == nil && taken {
		return FormErrorEmailExists
	}
	if taken, err := users.ExistsHandle(form.Handle); err == nil && taken {
		return FormErrorHandleExists
	}
	return FormErrorOther
}

func (handler *Handler) ShowLogin(c *fiber.Ctx) error {
	response := fiber.Map{"page": "login"}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	if to := c.Query("to"); to != "" {
		response["to"] = to
	}
	return c.JSON(response)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, "/login", FormErrorOther)
	}

	user, err := handler.repos.Users.FindByEmail(strings.TrimSpace(form.Email))
	if err != nil {
		if db.IsNotFound(err) {
			return redirectWithError(c, "/login", FormErrorEmail)
		}
		return handler.internalError(c, "look up login email", err)
	}
	if !security.VerifyPassword(form.Password, user.Salt, user.PasswordHash) {
		return redirectWithError(c, "/login", FormErrorPassword)
	}

	if err := handler.setIdentityCookie(c, user.ID); err != nil {
		return handler.internalError(c, "seal identity cookie", err)
	}

	target := c.Query("to")
	if target == "" || !strings.HasPrefix(target, "/") {
		target = "/"
	}
	return redirect(c, target)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearIdentityCookie(c)
	return redirect(c, "/")
}
