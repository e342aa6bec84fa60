package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/attend"
)

type attendForm struct {
	Code string `form:"code"`
}

func (handler *Handler) ShowAttend(c *fiber.Ctx) error {
	response := fiber.Map{"page": "attend"}
	if formError, ok := ParseFormError(c.Query("e")); ok {
		response["error"] = formError.String()
	}
	return c.JSON(response)
}

// Attend redeems an attendance code for the current user. Unknown codes
// and codes the user cannot redeem report through the same two errors,
// so the form never confirms that a guessed code exists.
func (handler *Handler) Attend(c *fiber.Ctx) error {
	user, _ := currentUser(c)

	var form attendForm
	if err := c.BodyParser(&form); err != nil {
		return redirectWithError(c, "/attend", FormErrorInvalidCode)
	}

	occasion, err := handler.ledger.Redeem(user.ID, form.Code)
	if err != nil {
		switch {
		case errors.Is(err, attend.ErrInvalidCode):
			return redirectWithError(c, "/attend", FormErrorInvalidCode)
		case errors.Is(err, attend.ErrUsedCode):
			return redirectWithError(c, "/attend", FormErrorUsedCode)
		default:
			return handler.internalError(c, "redeem attendance code", err)
		}
	}

	handler.audit.Record(user.ID, "attended %q", occasion.Name())
	return redirect(c, "/dashboard")
}
