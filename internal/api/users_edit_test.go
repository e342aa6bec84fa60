package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
)

func editFormFor(user models.User) url.Values {
	return url.Values{
		"real_name": {user.RealName},
		"handle":    {user.Handle},
		"email":     {user.Email},
		"bio":       {user.Bio},
		"mmost":     {user.Mmost},
		"tier":      {itoa(uint(user.Tier))},
		"active":    {"on"},
	}
}

func TestSelfEditCannotRaiseTier(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)
	cookie := loginAndExtractIdentityCookie(t, app, user.Email)

	form := editFormFor(user)
	form.Set("tier", "2")
	response := sendForm(t, app, http.MethodPut, "/users/"+itoa(user.ID), cookie, form)
	defer response.Body.Close()
	assertRedirect(t, response, "/users/"+itoa(user.ID))

	reloaded, err := repos.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Tier != 0 {
		t.Fatalf("expected tier to stay 0 after self-edit, got %d", reloaded.Tier)
	}
}

func TestAdminCanPromoteUpToOwnTier(t *testing.T) {
	app, repos := newTestApp(t)
	admin := createTestUser(t, repos, "boss", 2)
	user := createTestUser(t, repos, "ada", 0)
	cookie := loginAndExtractIdentityCookie(t, app, admin.Email)

	promote := editFormFor(user)
	promote.Set("tier", "1")
	response := sendForm(t, app, http.MethodPut, "/users/"+itoa(user.ID), cookie, promote)
	response.Body.Close()

	reloaded, err := repos.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Tier != 1 {
		t.Fatalf("expected tier 1 after promotion, got %d", reloaded.Tier)
	}

	// A tier above the actor's own is ignored.
	overreach := editFormFor(user)
	overreach.Set("tier", "5")
	overreachResponse := sendForm(t, app, http.MethodPut, "/users/"+itoa(user.ID), cookie, overreach)
	overreachResponse.Body.Close()

	reloaded, err = repos.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.Tier != 1 {
		t.Fatalf("expected overreaching promotion to keep tier 1, got %d", reloaded.Tier)
	}
}

func TestBuiltInAdminTierIsImmutable(t *testing.T) {
	app, repos := newTestApp(t)
	admin := createTestUser(t, repos, "boss", 2)
	cookie := loginAndExtractIdentityCookie(t, app, admin.Email)

	builtIn, err := repos.Users.FindByID(models.AdminUserID)
	if err != nil {
		t.Fatalf("load built-in admin: %v", err)
	}

	form := editFormFor(builtIn)
	form.Set("tier", "0")
	response := sendForm(t, app, http.MethodPut, "/users/0", cookie, form)
	response.Body.Close()

	reloaded, err := repos.Users.FindByID(models.AdminUserID)
	if err != nil {
		t.Fatalf("reload built-in admin: %v", err)
	}
	if reloaded.Tier != models.TierAdmin {
		t.Fatalf("expected built-in admin to stay at tier %d, got %d", models.TierAdmin, reloaded.Tier)
	}
}

func TestEditingSomeoneElseRequiresAdmin(t *testing.T) {
	app, repos := newTestApp(t)
	mentor := createTestUser(t, repos, "mentor", 1)
	user := createTestUser(t, repos, "ada", 0)
	cookie := loginAndExtractIdentityCookie(t, app, mentor.Email)

	response := sendForm(t, app, http.MethodPut, "/users/"+itoa(user.ID), cookie, editFormFor(user))
	defer response.Body.Close()
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for mentor editing another user, got %d", response.StatusCode)
	}
}

func TestAdminDeleteCascadesUserData(t *testing.T) {
	app, repos := newTestApp(t)
	admin := createTestUser(t, repos, "boss", 2)
	user := createTestUser(t, repos, "ada", 0)
	createTestEvent(t, repos, "abc123", admin.ID)

	userCookie := loginAndExtractIdentityCookie(t, app, user.Email)
	redeem := postForm(t, app, "/attend", userCookie, url.Values{"code": {"abc123"}})
	redeem.Body.Close()

	adminCookie := loginAndExtractIdentityCookie(t, app, admin.Email)
	response := doRequest(t, app, http.MethodDelete, "/users/"+itoa(user.ID), adminCookie)
	defer response.Body.Close()
	assertRedirect(t, response, "/users")

	if _, err := repos.Users.FindByID(user.ID); !db.IsNotFound(err) {
		t.Fatalf("expected deleted user to be gone, got err=%v", err)
	}
	count, err := repos.Attendances.CountForUser(user.ID)
	if err != nil {
		t.Fatalf("count attendances: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected attendances to be removed with the user, got %d", count)
	}
}
