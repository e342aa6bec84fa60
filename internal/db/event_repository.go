package db

import (
	"strings"

	"github.com/observatory-hq/observatory/internal/models"
	"gorm.io/gorm"
)

type EventRepository struct {
	database *gorm.DB
}

func NewEventRepository(database *gorm.DB) *EventRepository {
	return &EventRepository{database: database}
}

func (repo *EventRepository) FindByID(eventID uint) (models.Event, error) {
	var event models.Event
	if err := repo.database.First(&event, "id = ?", eventID).Error; err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// FindByCode matches minted codes, which are always lowercase; input is
// folded before comparison.
func (repo *EventRepository) FindByCode(code string) (models.Event, error) {
	var event models.Event
	if err := repo.database.Where("code = ?", strings.ToLower(code)).First(&event).Error; err != nil {
		return models.Event{}, err
	}
	return event, nil
}

func (repo *EventRepository) ListOrdered() ([]models.Event, error) {
	events := make([]models.Event, 0)
	if err := repo.database.Order("start_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (repo *EventRepository) Create(event *models.Event) error {
	return repo.database.Create(event).Error
}

func (repo *EventRepository) Save(event *models.Event) error {
	return repo.database.Save(event).Error
}

func (repo *EventRepository) Delete(eventID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", eventID).Delete(&models.Event{}).Error
	})
}
