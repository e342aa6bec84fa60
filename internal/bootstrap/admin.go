// Package bootstrap runs one-shot startup tasks between schema
// migration and request acceptance.
package bootstrap

import (
	"fmt"
	"io"

	"github.com/observatory-hq/observatory/internal/attend"
	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
	"github.com/observatory-hq/observatory/internal/security"
)

// EnsureAdmin guarantees the built-in admin identity can log in. When
// its password hash is empty a random password is minted from the
// attendance-code alphabet, printed to warnings, and stored hashed.
// This is the only path that creates credentials without a form.
func EnsureAdmin(users *db.UserRepository, warnings io.Writer) error {
	admin, err := users.FindByID(models.AdminUserID)
	if err != nil {
		return fmt.Errorf("load admin user: %w", err)
	}

	if !admin.PasswordHash.Empty() {
		return nil
	}

	password, err := security.RandomString(6, attend.CodeAlphabet)
	if err != nil {
		return fmt.Errorf("mint admin password: %w", err)
	}

	fmt.Fprintf(warnings, "\tADMIN PASSWORD: %s\n\tCHANGE THIS AS SOON AS POSSIBLE\n", password)

	salt, err := security.NewSalt()
	if err != nil {
		return fmt.Errorf("generate admin salt: %w", err)
	}
	hash := security.DerivePassword(password, salt)

	if err := users.UpdateCredentials(models.AdminUserID, hash, salt); err != nil {
		return fmt.Errorf("store admin credentials: %w", err)
	}
	return nil
}
