package api

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func newSignupForm(email string, handle string) url.Values {
	return url.Values{
		"real_name":       {"Ada Lovelace"},
		"handle":          {handle},
		"email":           {email},
		"password":        {"StrongPass1"},
		"password_repeat": {"StrongPass1"},
	}
}

func TestSignupCreatesUserAndSetsIdentityCookie(t *testing.T) {
	app, repos := newTestApp(t)

	response := postForm(t, app, "/signup", "", newSignupForm("ada@example.com", "ada"))
	defer response.Body.Close()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", response.StatusCode)
	}
	location := response.Header.Get("Location")
	if !strings.HasPrefix(location, "/users/") {
		t.Fatalf("expected redirect to the new profile, got %q", location)
	}

	cookie := ""
	for _, responseCookie := range response.Cookies() {
		if responseCookie.Name == identityCookieName && responseCookie.Value != "" {
			cookie = responseCookie.Name + "=" + responseCookie.Value
		}
	}
	if cookie == "" {
		t.Fatal("expected identity cookie in signup response")
	}

	user, err := repos.Users.FindByHandle("ada")
	if err != nil {
		t.Fatalf("load created user: %v", err)
	}
	if user.Tier != 0 {
		t.Fatalf("expected new users at tier 0, got %d", user.Tier)
	}
	if user.PasswordHash.Empty() {
		t.Fatal("expected derived password hash on the new user")
	}

	dashboard := doRequest(t, app, http.MethodGet, "/dashboard", cookie)
	defer dashboard.Body.Close()
	if dashboard.StatusCode != http.StatusOK {
		t.Fatalf("expected dashboard 200 with fresh cookie, got %d", dashboard.StatusCode)
	}
}

func TestSignupRejectsDuplicates(t *testing.T) {
	app, _ := newTestApp(t)

	first := postForm(t, app, "/signup", "", newSignupForm("ada@example.com", "ada"))
	first.Body.Close()

	sameEmail := postForm(t, app, "/signup", "", newSignupForm("ADA@example.com", "other"))
	defer sameEmail.Body.Close()
	assertRedirect(t, sameEmail, "/signup?e=email-exists")

	sameHandle := postForm(t, app, "/signup", "", newSignupForm("fresh@example.com", "Ada"))
	defer sameHandle.Body.Close()
	assertRedirect(t, sameHandle, "/signup?e=git-exists")
}

func TestSignupRejectsPasswordMismatch(t *testing.T) {
	app, _ := newTestApp(t)

	form := newSignupForm("ada@example.com", "ada")
	form.Set("password_repeat", "Different1")
	response := postForm(t, app, "/signup", "", form)
	defer response.Body.Close()
	assertRedirect(t, response, "/signup?e=mismatch")
}

func TestSignupRejectsReservedHandle(t *testing.T) {
	app, _ := newTestApp(t)

	response := postForm(t, app, "/signup", "", newSignupForm("ada@example.com", "json"))
	defer response.Body.Close()
	assertRedirect(t, response, "/signup?e=name-reserved")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)

	unknown := postForm(t, app, "/login", "", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"StrongPass1"},
	})
	defer unknown.Body.Close()
	assertRedirect(t, unknown, "/login?e=email")

	wrongPassword := postForm(t, app, "/login", "", url.Values{
		"email":    {user.Email},
		"password": {"WrongPass1"},
	})
	defer wrongPassword.Body.Close()
	assertRedirect(t, wrongPassword, "/login?e=password")
}

func TestLoginReturnsToRequestedPath(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)

	anonymous := doRequest(t, app, http.MethodGet, "/dashboard", "")
	defer anonymous.Body.Close()
	assertRedirect(t, anonymous, "/login?to=%2Fdashboard")

	login := postForm(t, app, "/login?to=/dashboard", "", url.Values{
		"email":    {user.Email},
		"password": {"StrongPass1"},
	})
	defer login.Body.Close()
	assertRedirect(t, login, "/dashboard")
}

func TestLogoutClearsIdentityCookie(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)
	cookie := loginAndExtractIdentityCookie(t, app, user.Email)

	logout := doRequest(t, app, http.MethodGet, "/logout", cookie)
	defer logout.Body.Close()
	assertRedirect(t, logout, "/")

	cleared := false
	for _, responseCookie := range logout.Cookies() {
		if responseCookie.Name == identityCookieName && responseCookie.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected logout to clear the identity cookie")
	}
}

func TestRaceLostSignupNamesTheCollidingField(t *testing.T) {
	handler := newTestHandler(t, stubCommitSource{})
	winner := createTestUser(t, handler.repos, "ada", 0)

	byEmail := signupForm{Handle: "grace", Email: winner.Email}
	if got := signupCollisionError(handler.repos.Users, byEmail); got != FormErrorEmailExists {
		t.Fatalf("expected email-exists for a taken email, got %s", got)
	}

	byHandle := signupForm{Handle: winner.Handle, Email: "grace@example.com"}
	if got := signupCollisionError(handler.repos.Users, byHandle); got != FormErrorHandleExists {
		t.Fatalf("expected git-exists for a taken handle, got %s", got)
	}

	neither := signupForm{Handle: "grace", Email: "grace@example.com"}
	if got := signupCollisionError(handler.repos.Users, neither); got != FormErrorOther {
		t.Fatalf("expected the catch-all error when no field is taken, got %s", got)
	}
}
