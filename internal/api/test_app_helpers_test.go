package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
	"github.com/observatory-hq/observatory/internal/probe"
	"github.com/observatory-hq/observatory/internal/security"
)

// stubCommitSource serves canned commit lists keyed by repo URL, so no
// test ever talks to a real forge.
type stubCommitSource struct {
	commits map[string][]probe.Commit
}

func (source stubCommitSource) CommitsFor(repoURL string) ([]probe.Commit, bool) {
	commits, ok := source.commits[repoURL]
	return commits, ok
}

func newTestApp(t *testing.T) (*fiber.App, *db.Repositories) {
	t.Helper()
	return newTestAppWithCommits(t, stubCommitSource{})
}

func newTestAppWithCommits(t *testing.T, commits probe.CommitSource) (*fiber.App, *db.Repositories) {
	t.Helper()

	handler := newTestHandler(t, commits)
	app := fiber.New()
	handler.RegisterRoutes(app)
	return app, handler.repos
}

func newTestHandler(t *testing.T, commits probe.CommitSource) *Handler {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "observatory-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler, err := NewHandler(database, []byte("observatory-test-secret-key"), commits, NewAuditLog(io.Discard), Options{
		BaseURL: "http://localhost:8080",
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	return handler
}

func createTestUser(t *testing.T, repos *db.Repositories, handle string, tier int) models.User {
	t.Helper()

	salt, err := security.NewSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}

	user := models.User{
		RealName:     "Test " + handle,
		Handle:       handle,
		Email:        handle + "@example.com",
		PasswordHash: security.DerivePassword("StrongPass1", salt),
		Salt:         salt,
		Active:       true,
		JoinedOn:     time.Now().UTC(),
		Tier:         tier,
	}
	if err := repos.Users.Create(&user); err != nil {
		t.Fatalf("create user %q: %v", handle, err)
	}
	return user
}

func loginAndExtractIdentityCookie(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	form := url.Values{
		"email":    {email},
		"password": {"StrongPass1"},
	}
	response := postForm(t, app, "/login", "", form)
	defer response.Body.Close()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected login status 303, got %d", response.StatusCode)
	}
	for _, cookie := range response.Cookies() {
		if cookie.Name == identityCookieName && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value
		}
	}

	t.Fatal("identity cookie is missing in login response")
	return ""
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func doRequest(t *testing.T, app *fiber.App, method string, path string, cookie string) *http.Response {
	t.Helper()

	request := httptest.NewRequest(method, path, nil)
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func sendForm(t *testing.T, app *fiber.App, method string, path string, cookie string, form url.Values) *http.Response {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func postForm(t *testing.T, app *fiber.App, path string, cookie string, form url.Values) *http.Response {
	t.Helper()
	return sendForm(t, app, http.MethodPost, path, cookie, form)
}

func assertRedirect(t *testing.T, response *http.Response, wantLocation string) {
	t.Helper()

	if response.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", response.StatusCode)
	}
	if location := response.Header.Get("Location"); location != wantLocation {
		t.Fatalf("expected redirect to %q, got %q", wantLocation, location)
	}
}
