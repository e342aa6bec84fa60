package attend

import (
	"errors"
	"fmt"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
)

// ErrUsedCode covers both repeat redemptions and membership failures.
// The two are deliberately indistinguishable so that a submitted code
// does not leak whose meeting it belongs to.
var ErrUsedCode = errors.New("attendance code already used")

type Ledger struct {
	codes       *CodeService
	groups      *db.GroupRepository
	attendances *db.AttendanceRepository
}

func NewLedger(codes *CodeService, groups *db.GroupRepository, attendances *db.AttendanceRepository) *Ledger {
	return &Ledger{codes: codes, groups: groups, attendances: attendances}
}

// Redeem records that the user attended the occasion the code unlocks.
//
// Events are open to every user. Meetings require a membership row
// connecting the user to the meeting's group. At most one attendance row
// ever exists per (user, occasion); a concurrent duplicate loses at the
// unique index and reports the same ErrUsedCode.
func (ledger *Ledger) Redeem(userID uint, code string) (models.Occasion, error) {
	occasion, err := ledger.codes.Resolve(code)
	if err != nil {
		return models.Occasion{}, err
	}

	if groupID, scoped := occasion.GroupID(); scoped {
		member, err := ledger.groups.IsMember(groupID, userID)
		if err != nil {
			return models.Occasion{}, fmt.Errorf("check group membership: %w", err)
		}
		if !member {
			return models.Occasion{}, ErrUsedCode
		}
	}

	attendance := models.Attendance{UserID: userID, IsEvent: occasion.IsEvent()}
	occasionID := occasion.ID()
	if occasion.IsEvent() {
		attended, err := ledger.attendances.ExistsForEvent(userID, occasionID)
		if err != nil {
			return models.Occasion{}, err
		}
		if attended {
			return models.Occasion{}, ErrUsedCode
		}
		attendance.EventID = &occasionID
	} else {
		attended, err := ledger.attendances.ExistsForMeeting(userID, occasionID)
		if err != nil {
			return models.Occasion{}, err
		}
		if attended {
			return models.Occasion{}, ErrUsedCode
		}
		attendance.MeetingID = &occasionID
	}

	if err := ledger.attendances.Create(&attendance); err != nil {
		if db.IsUniqueViolation(err) {
			return models.Occasion{}, ErrUsedCode
		}
		return models.Occasion{}, err
	}

	return occasion, nil
}
