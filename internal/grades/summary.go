// Package grades derives the per-user grade summary shown on dashboards
// and profile pages. Nothing here is cached; every request recomputes.
package grades

import (
	"fmt"

	"github.com/observatory-hq/observatory/internal/db"
	"github.com/observatory-hq/observatory/internal/models"
	"github.com/observatory-hq/observatory/internal/probe"
)

// Summary aggregates what a user attended, what their groups obliged
// them to attend, and an approximate commit count from the code host.
type Summary struct {
	Attendances       []AttendedOccasion `json:"attendances"`
	NeededAttendances int                `json:"needed_attendances"`
	CommitCount       int                `json:"commit_count"`
	CommitCountKnown  bool               `json:"commit_count_known"`
}

// AttendedOccasion is the rendered view of one redemption.
type AttendedOccasion struct {
	Name    string `json:"name"`
	Time    string `json:"time"`
	URL     string `json:"url"`
	IsEvent bool   `json:"is_event"`
}

type Aggregator struct {
	groups      *db.GroupRepository
	projects    *db.ProjectRepository
	meetings    *db.MeetingRepository
	events      *db.EventRepository
	attendances *db.AttendanceRepository
	commits     probe.CommitSource
}

func NewAggregator(
	groups *db.GroupRepository,
	projects *db.ProjectRepository,
	meetings *db.MeetingRepository,
	events *db.EventRepository,
	attendances *db.AttendanceRepository,
	commits probe.CommitSource,
) *Aggregator {
	return &Aggregator{
		groups:      groups,
		projects:    projects,
		meetings:    meetings,
		events:      events,
		attendances: attendances,
		commits:     commits,
	}
}

func (aggregator *Aggregator) Summarize(user models.User) (Summary, error) {
	attended, err := aggregator.attendedOccasions(user.ID)
	if err != nil {
		return Summary{}, err
	}

	needed, err := aggregator.neededAttendances(user.ID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Attendances:       attended,
		NeededAttendances: needed,
	}
	if count, known := aggregator.commitCount(user); known {
		summary.CommitCount = count
		summary.CommitCountKnown = true
	}
	return summary, nil
}

func (aggregator *Aggregator) attendedOccasions(userID uint) ([]AttendedOccasion, error) {
	rows, err := aggregator.attendances.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	attended := make([]AttendedOccasion, 0, len(rows))
	for _, row := range rows {
		occasion, err := aggregator.resolveOccasion(row)
		if err != nil {
			return nil, err
		}
		attended = append(attended, AttendedOccasion{
			Name:    occasion.Name(),
			Time:    occasion.Time().Format("2006-01-02 15:04"),
			URL:     occasion.URL(),
			IsEvent: occasion.IsEvent(),
		})
	}
	return attended, nil
}

func (aggregator *Aggregator) resolveOccasion(row models.Attendance) (models.Occasion, error) {
	if row.IsEvent {
		if row.EventID == nil {
			return models.Occasion{}, fmt.Errorf("attendance %d marked as event without event id", row.ID)
		}
		event, err := aggregator.events.FindByID(*row.EventID)
		if err != nil {
			return models.Occasion{}, err
		}
		return models.EventOccasion(event), nil
	}

	if row.MeetingID == nil {
		return models.Occasion{}, fmt.Errorf("attendance %d marked as meeting without meeting id", row.ID)
	}
	meeting, err := aggregator.meetings.FindByID(*row.MeetingID)
	if err != nil {
		return models.Occasion{}, err
	}
	return models.MeetingOccasion(meeting), nil
}

// neededAttendances is the sum of meeting counts over the user's groups.
// Events never enter the denominator.
func (aggregator *Aggregator) neededAttendances(userID uint) (int, error) {
	groups, err := aggregator.groups.GroupsForUser(userID)
	if err != nil {
		return 0, err
	}

	needed := 0
	for _, group := range groups {
		count, err := aggregator.meetings.CountForGroup(group.ID)
		if err != nil {
			return 0, err
		}
		needed += int(count)
	}
	return needed, nil
}

// commitCount counts, from the first repo the probe answers for, the
// commits whose author login equals the user's handle. The comparison is
// case-sensitive, matching the code host's login semantics.
func (aggregator *Aggregator) commitCount(user models.User) (int, bool) {
	projects, err := aggregator.projects.ProjectsForUser(user.ID)
	if err != nil {
		return 0, false
	}

	for _, project := range projects {
		for _, repoURL := range project.RepoList() {
			commits, known := aggregator.commits.CommitsFor(repoURL)
			if !known {
				continue
			}
			count := 0
			for _, commit := range commits {
				if commit.AuthorLogin == user.Handle {
					count++
				}
			}
			return count, true
		}
	}
	return 0, false
}
