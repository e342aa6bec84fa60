package models

import "time"

// Privilege tiers. Anything above TierMentor is an admin.
const (
	TierMember = 0
	TierMentor = 1
	TierAdmin  = 2
)

// AdminUserID is the built-in admin identity seeded by the schema. Its
// tier can never change.
const AdminUserID = 0

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RealName     string     `gorm:"not null" json:"real_name"`
	Handle       string     `gorm:"not null" json:"handle"`
	Email        string     `gorm:"not null" json:"email"`
	PasswordHash BinaryText `gorm:"not null;default:''" json:"-"`
	Salt         BinaryText `gorm:"not null;default:''" json:"-"`
	Bio          string     `gorm:"not null;default:''" json:"bio"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	JoinedOn     time.Time  `gorm:"not null" json:"joined_on"`
	Tier         int        `gorm:"not null;default:0" json:"tier"`
	Mmost        string     `gorm:"not null;default:''" json:"mmost"`
	Former       bool       `gorm:"not null;default:false" json:"former"`
	Extrn        bool       `gorm:"column:extrn;not null;default:false" json:"extrn"`
}

func (u User) IsMentor() bool {
	return u.Tier >= TierMentor
}

func (u User) IsAdmin() bool {
	return u.Tier >= TierAdmin
}
