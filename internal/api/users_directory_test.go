package api

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestUserDirectoryIsVisibleWithoutLogin(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)

	for _, path := range []string{"/users", "/users/json", "/users/" + itoa(user.ID)} {
		response := doRequest(t, app, http.MethodGet, path, "")
		if response.StatusCode != http.StatusOK {
			t.Fatalf("GET %s without a session: expected 200, got %d", path, response.StatusCode)
		}
		response.Body.Close()
	}
}

func TestUserPageRendersSummaryForAnonymousVisitor(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)

	response := doRequest(t, app, http.MethodGet, "/users/"+itoa(user.ID), "")
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read user page: %v", err)
	}
	for _, want := range []string{`"user"`, `"summary"`, `"ada"`} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("user page missing %s: %s", want, body)
		}
	}
}
