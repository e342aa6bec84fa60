// Package attend implements attendance codes: minting, resolution to the
// occasion a code unlocks, and the redemption ledger.
package attend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
	"github.com/observatory-hq/observatory/internal/security"
)

// CodeAlphabet is the character distribution for attendance codes. The
// admin bootstrap password draws from the same set.
const CodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const (
	codeLength   = 6
	mintAttempts = 64
)

var (
	// ErrCodeSpaceExhausted is returned when minting keeps colliding.
	// With a 36^6 space this means something is badly wrong.
	ErrCodeSpaceExhausted = errors.New("attendance code space exhausted")

	// ErrInvalidCode is returned when a submitted code matches neither
	// an event nor a meeting.
	ErrInvalidCode = errors.New("invalid attendance code")
)

type CodeService struct {
	events   *db.EventRepository
	meetings *db.MeetingRepository
}

func NewCodeService(events *db.EventRepository, meetings *db.MeetingRepository) *CodeService {
	return &CodeService{events: events, meetings: meetings}
}

// Mint produces a code unused by any event or meeting. The caller must
// persist the occasion row carrying it; until then the code is not
// reserved, and a racing insert is caught by the unique indexes.
func (service *CodeService) Mint() (string, error) {
	for attempt := 0; attempt < mintAttempts; attempt++ {
		code, err := security.RandomString(codeLength, CodeAlphabet)
		if err != nil {
			return "", fmt.Errorf("generate attendance code: %w", err)
		}

		_, err = service.Resolve(code)
		if errors.Is(err, ErrInvalidCode) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrCodeSpaceExhausted
}

// Resolve maps a submitted code to the occasion it unlocks. Events are
// checked before meetings; input case is ignored.
func (service *CodeService) Resolve(code string) (models.Occasion, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return models.Occasion{}, ErrInvalidCode
	}

	event, err := service.events.FindByCode(code)
	if err == nil {
		return models.EventOccasion(event), nil
	}
	if !db.IsNotFound(err) {
		return models.Occasion{}, err
	}

	meeting, err := service.meetings.FindByCode(code)
	if err == nil {
		return models.MeetingOccasion(meeting), nil
	}
	if !db.IsNotFound(err) {
		return models.Occasion{}, err
	}

	return models.Occasion{}, ErrInvalidCode
}
