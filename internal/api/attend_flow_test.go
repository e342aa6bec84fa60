package api

import (
	"net/url"
	"testing"
	"time"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
)

func createTestEvent(t *testing.T, repos *db.Repositories, code string, hostedBy uint) models.Event {
	t.Helper()

	event := models.Event{
		StartAt:  time.Now().Add(time.Hour),
		EndAt:    time.Now().Add(2 * time.Hour),
		Title:    "Install Party",
		HostedBy: hostedBy,
		Code:     code,
	}
	if err := repos.Events.Create(&event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func TestAttendEventCodeOnceThenUsed(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)
	createTestEvent(t, repos, "abc123", user.ID)
	cookie := loginAndExtractIdentityCookie(t, app, user.Email)

	first := postForm(t, app, "/attend", cookie, url.Values{"code": {"abc123"}})
	defer first.Body.Close()
	assertRedirect(t, first, "/dashboard")

	repeat := postForm(t, app, "/attend", cookie, url.Values{"code": {"abc123"}})
	defer repeat.Body.Close()
	assertRedirect(t, repeat, "/attend?e=used")
}

func TestAttendAcceptsCodeCaseInsensitively(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)
	createTestEvent(t, repos, "abc123", user.ID)
	cookie := loginAndExtractIdentityCookie(t, app, user.Email)

	response := postForm(t, app, "/attend", cookie, url.Values{"code": {"  ABC123  "}})
	defer response.Body.Close()
	assertRedirect(t, response, "/dashboard")
}

func TestAttendUnknownCodeIsInvalid(t *testing.T) {
	app, repos := newTestApp(t)
	user := createTestUser(t, repos, "ada", 0)
	cookie := loginAndExtractIdentityCookie(t, app, user.Email)

	response := postForm(t, app, "/attend", cookie, url.Values{"code": {"zzzzzz"}})
	defer response.Body.Close()
	assertRedirect(t, response, "/attend?e=invalid")
}

func TestAttendMeetingCodeRequiresMembership(t *testing.T) {
	app, repos := newTestApp(t)
	owner := createTestUser(t, repos, "owner", 1)
	outsider := createTestUser(t, repos, "outsider", 0)

	group := models.Group{Name: "Kernel Study", OwnerID: owner.ID}
	if err := repos.Groups.Create(&group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := repos.Groups.AddMember(group.ID, owner.ID); err != nil {
		t.Fatalf("enroll owner: %v", err)
	}
	meeting := models.Meeting{
		HappenedAt: time.Now(),
		Code:       "m33t01",
		GroupID:    group.ID,
		HostedBy:   owner.ID,
	}
	if err := repos.Meetings.Create(&meeting); err != nil {
		t.Fatalf("create meeting: %v", err)
	}

	outsiderCookie := loginAndExtractIdentityCookie(t, app, outsider.Email)

	// The outsider is told "used", never "not a member".
	blocked := postForm(t, app, "/attend", outsiderCookie, url.Values{"code": {"m33t01"}})
	defer blocked.Body.Close()
	assertRedirect(t, blocked, "/attend?e=used")

	// The group owner enrolls them, after which the same code redeems.
	ownerCookie := loginAndExtractIdentityCookie(t, app, owner.Email)
	enroll := postForm(t, app, "/groups/"+itoa(group.ID)+"/members", ownerCookie, url.Values{
		"user_id": {itoa(outsider.ID)},
	})
	enroll.Body.Close()

	allowed := postForm(t, app, "/attend", outsiderCookie, url.Values{"code": {"m33t01"}})
	defer allowed.Body.Close()
	assertRedirect(t, allowed, "/dashboard")

	again := postForm(t, app, "/attend", outsiderCookie, url.Values{"code": {"m33t01"}})
	defer again.Body.Close()
	assertRedirect(t, again, "/attend?e=used")
}
