package db

import (
	"github.com/observatory-hq/observatory/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	database *gorm.DB
}

func NewGroupRepository(database *gorm.DB) *GroupRepository {
	return &GroupRepository{database: database}
}

func (repo *GroupRepository) FindByID(groupID uint) (models.Group, error) {
	var group models.Group
	if err := repo.database.First(&group, "id = ?", groupID).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}

func (repo *GroupRepository) List() ([]models.Group, error) {
	groups := make([]models.Group, 0)
	if err := repo.database.Order("id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (repo *GroupRepository) ExistsName(name string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.Group{}).
		Where("name = ? COLLATE NOCASE", name).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *GroupRepository) Create(group *models.Group) error {
	return repo.database.Create(group).Error
}

func (repo *GroupRepository) Save(group *models.Group) error {
	return repo.database.Save(group).Error
}

// Delete removes the group with its meetings, their attendances, and its
// membership rows.
func (repo *GroupRepository) Delete(groupID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		meetingIDs := make([]uint, 0)
		if err := tx.Model(&models.Meeting{}).
			Where("group_id = ?", groupID).
			Pluck("id", &meetingIDs).Error; err != nil {
			return err
		}
		if len(meetingIDs) > 0 {
			if err := tx.Where("meeting_id IN ?", meetingIDs).Delete(&models.Attendance{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", groupID).Delete(&models.Meeting{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.RelationGroupUser{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", groupID).Delete(&models.Group{}).Error
	})
}

func (repo *GroupRepository) IsMember(groupID uint, userID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.RelationGroupUser{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *GroupRepository) AddMember(groupID uint, userID uint) error {
	return repo.database.Create(&models.RelationGroupUser{GroupID: groupID, UserID: userID}).Error
}

func (repo *GroupRepository) RemoveMember(groupID uint, userID uint) error {
	return repo.database.
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.RelationGroupUser{}).Error
}

func (repo *GroupRepository) Members(groupID uint) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.
		Joins("JOIN relation_group_user ON relation_group_user.user_id = users.id").
		Where("relation_group_user.group_id = ?", groupID).
		Order("users.id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *GroupRepository) GroupsForUser(userID uint) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	if err := repo.database.
		Joins("JOIN relation_group_user ON relation_group_user.group_id = groups.id").
		Where("relation_group_user.user_id = ?", userID).
		Order("groups.id ASC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
