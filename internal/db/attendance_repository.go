package db

import (
	"github.com/observatory-hq/observatory/internal/models"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	database *gorm.DB
}

func NewAttendanceRepository(database *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{database: database}
}

func (repo *AttendanceRepository) Create(attendance *models.Attendance) error {
	return repo.database.Create(attendance).Error
}

func (repo *AttendanceRepository) ExistsForEvent(userID uint, eventID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Attendance{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *AttendanceRepository) ExistsForMeeting(userID uint, meetingID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Attendance{}).
		Where("user_id = ? AND meeting_id = ?", userID, meetingID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ListForUser returns the user's redemptions in insertion order.
func (repo *AttendanceRepository) ListForUser(userID uint) ([]models.Attendance, error) {
	attendances := make([]models.Attendance, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&attendances).Error; err != nil {
		return nil, err
	}
	return attendances, nil
}

func (repo *AttendanceRepository) CountForUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Attendance{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
