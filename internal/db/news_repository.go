package db

import (
	"github.com/observatory-hq/observatory/internal/models"
	"gorm.io/gorm"
)

type NewsRepository struct {
	database *gorm.DB
}

func NewNewsRepository(database *gorm.DB) *NewsRepository {
	return &NewsRepository{database: database}
}

func (repo *NewsRepository) FindByID(storyID uint) (models.NewsStory, error) {
	var story models.NewsStory
	if err := repo.database.First(&story, "id = ?", storyID).Error; err != nil {
		return models.NewsStory{}, err
	}
	return story, nil
}

func (repo *NewsRepository) ListOrdered() ([]models.NewsStory, error) {
	stories := make([]models.NewsStory, 0)
	if err := repo.database.Order("happened_at ASC").Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (repo *NewsRepository) ExistsTitle(title string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.NewsStory{}).
		Where("title = ?", title).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *NewsRepository) Create(story *models.NewsStory) error {
	return repo.database.Create(story).Error
}

func (repo *NewsRepository) Save(story *models.NewsStory) error {
	return repo.database.Save(story).Error
}

func (repo *NewsRepository) Delete(storyID uint) error {
	return repo.database.Where("id = ?", storyID).Delete(&models.NewsStory{}).Error
}
