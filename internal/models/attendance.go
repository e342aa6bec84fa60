package models

// Attendance is one redemption of an occasion's code by a user. Rows are
// append-only: created on redemption, removed only when the parent user
// or occasion goes away.
//
// IsEvent decides which of the two foreign keys is set; the other stays
// null.
type Attendance struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	UserID    uint  `gorm:"not null" json:"user_id"`
	IsEvent   bool  `gorm:"not null" json:"is_event"`
	MeetingID *uint `json:"meeting_id,omitempty"`
	EventID   *uint `json:"event_id,omitempty"`
}

func (Attendance) TableName() string {
	return "attendances"
}
