package api

import (
	"errors"
	"testing"
	"time"

	"github.com/observatory-hq/observatory/internal/models"
)

func eventWithCode(code string) models.Event {
	return models.Event{
		StartAt: time.Now(),
		EndAt:   time.Now().Add(time.Hour),
		Title:   "Event " + code,
		Code:    code,
	}
}

func TestMintAndInsertMintsAgainAfterLosingCodeRace(t *testing.T) {
	handler := newTestHandler(t, stubCommitSource{})

	// Claim the first minted code with a rival row between the mint
	// check and the insert, the way a concurrent request would.
	var minted []string
	err := handler.mintAndInsert(func(code string) error {
		minted = append(minted, code)
		if len(minted) == 1 {
			rival := eventWithCode(code)
			if err := handler.repos.Events.Create(&rival); err != nil {
				t.Fatalf("create rival event: %v", err)
			}
		}
		event := eventWithCode(code)
		return handler.repos.Events.Create(&event)
	})
	if err != nil {
		t.Fatalf("expected the retry to land, got %v", err)
	}
	if len(minted) != 2 {
		t.Fatalf("expected a second mint after the collision, got %d attempt(s)", len(minted))
	}
	if minted[0] == minted[1] {
		t.Fatalf("retry reused the claimed code %q", minted[0])
	}
}

func TestMintAndInsertStopsOnUnrelatedInsertError(t *testing.T) {
	handler := newTestHandler(t, stubCommitSource{})

	sentinel := errors.New("insert rejected")
	attempts := 0
	err := handler.mintAndInsert(func(code string) error {
		attempts++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the insert error back, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt for a non-collision error, got %d", attempts)
	}
}
