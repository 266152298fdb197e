package models

import "gorm.io/gorm"

// SBCBridge holds the bridge design data an SBC team submits, one row per
// team.
type SBCBridge struct {
	gorm.Model
	TeamID uint `gorm:"not null;uniqueIndex" json:"team_id"`

	BridgeName        string `gorm:"not null" json:"bridge_name"`
	BridgeDescription string `json:"bridge_description"`

	Team Team `json:"-"`
}

// SBCAdvisor is a supervising lecturer attached to an SBC team. A team may
// list more than one.
type SBCAdvisor struct {
	gorm.Model
	TeamID uint `gorm:"not null;index" json:"team_id"`

	FullName string `gorm:"not null" json:"full_name"`
	StaffID  string `json:"staff_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	IDCard *string `json:"id_card,omitempty"`
	Photo  *string `json:"photo,omitempty"`

	Team Team `json:"-"`
}
