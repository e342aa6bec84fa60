package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	identityCookieName    = "user_id"
	identityCookiePurpose = "identity"
	identityCookieMaxAge  = 30 * 24 * time.Hour
)

func (handler *Handler) setIdentityCookie(c *fiber.Ctx, userID uint) error {
	sealed, err := handler.codec.seal(identityCookiePurpose, []byte(strconv.FormatUint(uint64(userID), 10)))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     identityCookieName,
		Value:    sealed,
		Path:     "/",
		Expires:  time.Now().Add(identityCookieMaxAge),
		HTTPOnly: true,
		Secure:   handler.options.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (handler *Handler) clearIdentityCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     identityCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   handler.options.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// openIdentityCookie returns the user id sealed into the request's
// identity cookie, if any.
func (handler *Handler) openIdentityCookie(c *fiber.Ctx) (uint, bool) {
	rawValue := c.Cookies(identityCookieName)
	if rawValue == "" {
		return 0, false
	}

	plaintext, err := handler.codec.open(identityCookiePurpose, rawValue)
	if err != nil {
		return 0, false
	}

	userID, err := strconv.ParseUint(string(plaintext), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}
