package models

import "gorm.io/gorm"

// FCECAbstract is the paper abstract an FCEC team submits, one row per team.
type FCECAbstract struct {
	gorm.Model
	TeamID uint `gorm:"not null;uniqueIndex" json:"team_id"`

	Title string `gorm:"not null" json:"title"`

	AbstractFile  *string `json:"abstract_file,omitempty"`
	StatementFile *string `json:"statement_file,omitempty"` // originality statement

	Team Team `json:"-"`
}
