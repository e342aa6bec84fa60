package models

type Group struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"not null" json:"name"`
	OwnerID  uint    `gorm:"not null" json:"owner_id"`
	Location *string `json:"location,omitempty"`
}

// RelationGroupUser connects a user to a group. Each (group, user) pair
// exists at most once.
type RelationGroupUser struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	GroupID uint `gorm:"not null" json:"group_id"`
	UserID  uint `gorm:"not null" json:"user_id"`
}

func (RelationGroupUser) TableName() string {
	return "relation_group_user"
}
