package models

import (
	"fmt"
	"time"
)

// Meeting is a group-scoped occasion. Its attendance code shares one
// namespace with event codes.
type Meeting struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	HappenedAt time.Time `gorm:"not null" json:"happened_at"`
	Code       string    `gorm:"not null" json:"-"`
	GroupID    uint      `gorm:"not null" json:"group_id"`
	HostedBy   uint      `gorm:"not null" json:"hosted_by"`
}

// Event is a public occasion. Any user may redeem its code.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StartAt     time.Time `gorm:"not null" json:"start_at"`
	EndAt       time.Time `gorm:"not null" json:"end_at"`
	Title       string    `gorm:"not null" json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Color       *string   `json:"color,omitempty"`
	HostedBy    uint      `gorm:"not null" json:"hosted_by"`
	Code        string    `gorm:"not null" json:"-"`
}

// Occasion is the tagged union of the two attendance-code owners. Exactly
// one of the two arms is set.
type Occasion struct {
	event   *Event
	meeting *Meeting
}

func EventOccasion(event Event) Occasion {
	return Occasion{event: &event}
}

func MeetingOccasion(meeting Meeting) Occasion {
	return Occasion{meeting: &meeting}
}

func (o Occasion) IsEvent() bool {
	return o.event != nil
}

func (o Occasion) ID() uint {
	if o.event != nil {
		return o.event.ID
	}
	return o.meeting.ID
}

func (o Occasion) Name() string {
	if o.event != nil {
		return o.event.Title
	}
	return fmt.Sprintf("Meeting on %s", o.meeting.HappenedAt.Format("2006-01-02"))
}

func (o Occasion) Time() time.Time {
	if o.event != nil {
		return o.event.StartAt
	}
	return o.meeting.HappenedAt
}

func (o Occasion) OwnerID() uint {
	if o.event != nil {
		return o.event.HostedBy
	}
	return o.meeting.HostedBy
}

// GroupID reports the owning group for meetings. Events carry none.
func (o Occasion) GroupID() (uint, bool) {
	if o.meeting != nil {
		return o.meeting.GroupID, true
	}
	return 0, false
}

func (o Occasion) URL() string {
	if o.event != nil {
		return fmt.Sprintf("/calendar/%d", o.event.ID)
	}
	return fmt.Sprintf("/groups/%d/meetings/%d", o.meeting.GroupID, o.meeting.ID)
}
