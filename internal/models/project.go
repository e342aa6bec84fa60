package models

import "encoding/json"

type Project struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `gorm:"not null;default:''" json:"description"`
	Homepage    *string `json:"homepage,omitempty"`
	OwnerID     uint    `gorm:"not null" json:"owner_id"`
	Active      bool    `gorm:"not null;default:true" json:"active"`
	Repos       string  `gorm:"not null;default:'[]'" json:"repos"`
	Extrn       bool    `gorm:"column:extrn;not null;default:false" json:"extrn"`
}

// RepoList decodes the serialized repo column. A corrupt or empty column
// reads as no repos.
func (p Project) RepoList() []string {
	if p.Repos == "" {
		return nil
	}
	var repos []string
	if err := json.Unmarshal([]byte(p.Repos), &repos); err != nil {
		return nil
	}
	return repos
}

// SetRepoList serializes the list into the repo column, dropping empty
// entries the way the submission forms produce them.
func (p *Project) SetRepoList(repos []string) error {
	kept := make([]string, 0, len(repos))
	for _, repo := range repos {
		if repo == "" {
			continue
		}
		kept = append(kept, repo)
	}
	serialized, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	p.Repos = string(serialized)
	return nil
}

// RelationProjectUser connects a user to a project. Each (project, user)
// pair exists at most once.
type RelationProjectUser struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ProjectID uint `gorm:"not null" json:"project_id"`
	UserID    uint `gorm:"not null" json:"user_id"`
}

func (RelationProjectUser) TableName() string {
	return "relation_project_user"
}
