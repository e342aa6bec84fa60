package attend

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
)

func newTestRepos(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "attend-test.db"))
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
	return db.NewRepositories(database)
}

func createEventWithCode(t *testing.T, repos *db.Repositories, code string) models.Event {
	t.Helper()

	event := models.Event{
		StartAt: time.Now(),
		EndAt:   time.Now().Add(time.Hour),
		Title:   "Event " + code,
		Code:    code,
	}
	if err := repos.Events.Create(&event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func createMeetingWithCode(t *testing.T, repos *db.Repositories, code string, groupID uint) models.Meeting {
	t.Helper()

	meeting := models.Meeting{
		HappenedAt: time.Now(),
		Code:       code,
		GroupID:    groupID,
		HostedBy:   models.AdminUserID,
	}
	if err := repos.Meetings.Create(&meeting); err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	return meeting
}

func TestMintProducesDistinctWellFormedCodes(t *testing.T) {
	repos := newTestRepos(t)
	service := NewCodeService(repos.Events, repos.Meetings)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := service.Mint()
		if err != nil {
			t.Fatalf("mint %d: %v", i, err)
		}
		if len(code) != 6 {
			t.Fatalf("expected six characters, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(CodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		if seen[code] {
			t.Fatalf("code %q minted twice", code)
		}
		seen[code] = true

		// Persist the code so later mints must avoid it.
		createEventWithCode(t, repos, code)
	}
}

func TestConcurrentMintsYieldOneOwnerPerCode(t *testing.T) {
	repos := newTestRepos(t)
	service := NewCodeService(repos.Events, repos.Meetings)

	const workers = 200
	codes := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				code, err := service.Mint()
				if err != nil {
					t.Errorf("worker %d mint: %v", worker, err)
					return
				}
				event := models.Event{
					StartAt: time.Now(),
					EndAt:   time.Now().Add(time.Hour),
					Title:   "Event " + code,
					Code:    code,
				}
				err = repos.Events.Create(&event)
				if err == nil {
					codes <- code
					return
				}
				// Another worker claimed the code between the mint
				// check and our insert. Mint again.
				if !db.IsUniqueViolation(err) {
					t.Errorf("worker %d create event: %v", worker, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		if seen[code] {
			t.Fatalf("code %q persisted twice", code)
		}
		seen[code] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct codes, got %d", workers, len(seen))
	}

	events, err := repos.Events.ListOrdered()
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != workers {
		t.Fatalf("expected %d events, got %d", workers, len(events))
	}
	owners := make(map[string]uint)
	for _, event := range events {
		if previous, taken := owners[event.Code]; taken {
			t.Fatalf("code %q owned by events %d and %d", event.Code, previous, event.ID)
		}
		owners[event.Code] = event.ID
	}
}

func TestMintAvoidsCodesHeldByMeetings(t *testing.T) {
	repos := newTestRepos(t)
	service := NewCodeService(repos.Events, repos.Meetings)

	group := models.Group{Name: "Study", OwnerID: models.AdminUserID}
	if err := repos.Groups.Create(&group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	createMeetingWithCode(t, repos, "aaaaaa", group.ID)

	for i := 0; i < 50; i++ {
		code, err := service.Mint()
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		if code == "aaaaaa" {
			t.Fatal("minted a code already held by a meeting")
		}
	}
}

func TestResolvePrefersEventsAndIgnoresCase(t *testing.T) {
	repos := newTestRepos(t)
	service := NewCodeService(repos.Events, repos.Meetings)

	event := createEventWithCode(t, repos, "abc123")

	occasion, err := service.Resolve("  ABC123 ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !occasion.IsEvent() || occasion.ID() != event.ID {
		t.Fatalf("expected the event occasion, got event=%v id=%d", occasion.IsEvent(), occasion.ID())
	}
}

func TestResolveFindsMeetings(t *testing.T) {
	repos := newTestRepos(t)
	service := NewCodeService(repos.Events, repos.Meetings)

	group := models.Group{Name: "Study", OwnerID: models.AdminUserID}
	if err := repos.Groups.Create(&group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	meeting := createMeetingWithCode(t, repos, "m33t01", group.ID)

	occasion, err := service.Resolve("m33t01")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if occasion.IsEvent() || occasion.ID() != meeting.ID {
		t.Fatalf("expected the meeting occasion, got event=%v id=%d", occasion.IsEvent(), occasion.ID())
	}
	groupID, scoped := occasion.GroupID()
	if !scoped || groupID != group.ID {
		t.Fatalf("expected group scope %d, got %d (scoped=%v)", group.ID, groupID, scoped)
	}
}

func TestResolveRejectsUnknownAndEmptyCodes(t *testing.T) {
	repos := newTestRepos(t)
	service := NewCodeService(repos.Events, repos.Meetings)

	if _, err := service.Resolve("zzzzzz"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if _, err := service.Resolve("   "); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for blank input, got %v", err)
	}
}
