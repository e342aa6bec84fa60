package db

import (
	"strings"

	"github.com/observatory-hq/observatory/internal/models"
	"gorm.io/gorm"
)

type MeetingRepository struct {
	database *gorm.DB
}

func NewMeetingRepository(database *gorm.DB) *MeetingRepository {
	return &MeetingRepository{database: database}
}

func (repo *MeetingRepository) FindByID(meetingID uint) (models.Meeting, error) {
	var meeting models.Meeting
	if err := repo.database.First(&meeting, "id = ?", meetingID).Error; err != nil {
		return models.Meeting{}, err
	}
	return meeting, nil
}

func (repo *MeetingRepository) FindByCode(code string) (models.Meeting, error) {
	var meeting models.Meeting
	if err := repo.database.Where("code = ?", strings.ToLower(code)).First(&meeting).Error; err != nil {
		return models.Meeting{}, err
	}
	return meeting, nil
}

func (repo *MeetingRepository) ListForGroup(groupID uint) ([]models.Meeting, error) {
	meetings := make([]models.Meeting, 0)
	if err := repo.database.
		Where("group_id = ?", groupID).
		Order("happened_at ASC").
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (repo *MeetingRepository) CountForGroup(groupID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Meeting{}).
		Where("group_id = ?", groupID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *MeetingRepository) Create(meeting *models.Meeting) error {
	return repo.database.Create(meeting).Error
}

func (repo *MeetingRepository) Delete(meetingID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", meetingID).Delete(&models.Meeting{}).Error
	})
}
