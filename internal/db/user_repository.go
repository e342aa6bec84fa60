package db

import (
	"github.com/observatory-hq/observatory/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, "id = ?", userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByHandle(handle string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("handle = ? COLLATE NOCASE", handle).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("email = ? COLLATE NOCASE", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) UpdateByID(userID uint, updates map[string]any) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (repo *UserRepository) UpdateCredentials(userID uint, hash models.BinaryText, salt models.BinaryText) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash": hash,
		"salt":          salt,
	}).Error
}

// ExistsEmail reports whether any user already claims the email. The
// case-insensitive match mirrors the unique index.
func (repo *UserRepository) ExistsEmail(email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("email = ? COLLATE NOCASE", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ExistsHandle(handle string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("handle = ? COLLATE NOCASE", handle).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// ExistsEmailOtherThan reports whether another user already claims the
// email. The case-insensitive match mirrors the unique index.
func (repo *UserRepository) ExistsEmailOtherThan(email string, excludeID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("email = ? COLLATE NOCASE AND id <> ?", email, excludeID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ExistsHandleOtherThan(handle string, excludeID uint) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("handle = ? COLLATE NOCASE AND id <> ?", handle, excludeID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) ExistsMmostOtherThan(mmost string, excludeID uint) (bool, error) {
	if mmost == "" {
		return false, nil
	}
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("mmost = ? AND id <> ?", mmost, excludeID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// Search filters users by name, handle, or the mailbox part of their
// email. Inactive and former members are hidden unless requested.
func (repo *UserRepository) Search(term string, includeInactive bool) ([]models.User, error) {
	query := repo.database.Model(&models.User{}).Order("id ASC")

	if term != "" {
		pattern := "%" + term + "%"
		emailPattern := "%" + term + "@%"
		query = query.Where(
			"real_name LIKE ? OR handle LIKE ? OR email LIKE ?",
			pattern, pattern, emailPattern,
		)
	}
	if !includeInactive {
		query = query.Where("active = ? AND former = ?", true, false)
	}

	users := make([]models.User, 0)
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes the user together with its relations and attendances.
func (repo *UserRepository) Delete(userID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RelationGroupUser{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RelationProjectUser{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
}
