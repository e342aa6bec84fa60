package db

import "gorm.io/gorm"

type Repositories struct {
	Users       *UserRepository
	Groups      *GroupRepository
	Projects    *ProjectRepository
	Meetings    *MeetingRepository
	Events      *EventRepository
	Attendances *AttendanceRepository
	News        *NewsRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Groups:      NewGroupRepository(database),
		Projects:    NewProjectRepository(database),
		Meetings:    NewMeetingRepository(database),
		Events:      NewEventRepository(database),
		Attendances: NewAttendanceRepository(database),
		News:        NewNewsRepository(database),
	}
}
