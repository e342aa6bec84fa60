package db

import (
	"github.com/observatory-hq/observatory/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	database *gorm.DB
}

func NewProjectRepository(database *gorm.DB) *ProjectRepository {
	return &ProjectRepository{database: database}
}

func (repo *ProjectRepository) FindByID(projectID uint) (models.Project, error) {
	var project models.Project
	if err := repo.database.First(&project, "id = ?", projectID).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (repo *ProjectRepository) FindByName(name string) (models.Project, error) {
	var project models.Project
	if err := repo.database.Where("name = ? COLLATE NOCASE", name).First(&project).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (repo *ProjectRepository) ExistsName(name string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Project{}).
		Where("name = ? COLLATE NOCASE", name).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ProjectRepository) Search(term string) ([]models.Project, error) {
	query := repo.database.Model(&models.Project{}).Order("id ASC")
	if term != "" {
		query = query.Where("name LIKE ?", "%"+term+"%")
	}
	projects := make([]models.Project, 0)
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) Create(project *models.Project) error {
	return repo.database.Create(project).Error
}

func (repo *ProjectRepository) Save(project *models.Project) error {
	return repo.database.Save(project).Error
}

func (repo *ProjectRepository) Delete(projectID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.RelationProjectUser{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", projectID).Delete(&models.Project{}).Error
	})
}

func (repo *ProjectRepository) IsMember(projectID uint, userID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.RelationProjectUser{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ProjectRepository) AddMember(projectID uint, userID uint) error {
	return repo.database.Create(&models.RelationProjectUser{ProjectID: projectID, UserID: userID}).Error
}

func (repo *ProjectRepository) Members(projectID uint) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.
		Joins("JOIN relation_project_user ON relation_project_user.user_id = users.id").
		Where("relation_project_user.project_id = ?", projectID).
		Order("users.id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *ProjectRepository) ProjectsForUser(userID uint) ([]models.Project, error) {
	projects := make([]models.Project, 0)
	if err := repo.database.
		Joins("JOIN relation_project_user ON relation_project_user.project_id = projects.id").
		Where("relation_project_user.user_id = ?", userID).
		Order("projects.id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
