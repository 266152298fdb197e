package models

import "gorm.io/gorm"

// TeamStatus is the verification state of a submission. A single enum keeps
// verified and rejected mutually exclusive.
type TeamStatus string

const (
	StatusPending  TeamStatus = "pending"
	StatusVerified TeamStatus = "verified"
	StatusRejected TeamStatus = "rejected"
)

// Competition slugs. CRAFT registers standalone participants, not teams.
const (
	EventCIC   = "cic"
	EventSBC   = "sbc"
	EventFCEC  = "fcec"
	EventCraft = "craft"
)

// Team is one registered squad within a competition. Track-specific data
// (bridge info, abstract info) lives in its own table keyed by TeamID.
type Team struct {
	gorm.Model
	Event           string     `gorm:"not null;index" json:"event"`
	TeamName        string     `gorm:"not null;index" json:"team_name"`
	InstitutionName string     `gorm:"not null" json:"institution_name"`
	Email           string     `gorm:"not null" json:"email"`
	PaymentProof    string     `json:"payment_proof"`
	Voucher         *string    `json:"voucher,omitempty"`
	Status          TeamStatus `gorm:"type:varchar(16);default:'pending'" json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`

	Members []Member `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// Member is one person on a team. Exactly one member per team carries
// IsLeader. Document columns hold upload paths.
type Member struct {
	gorm.Model
	TeamID uint `gorm:"not null;index" json:"team_id"`

	FullName  string `gorm:"not null" json:"full_name"`
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsLeader  bool   `gorm:"default:false" json:"is_leader"`

	IDCard           *string `json:"id_card,omitempty"`
	EnrollmentLetter *string `json:"enrollment_letter,omitempty"`
	Photo            *string `json:"photo,omitempty"`

	Team Team `json:"-"`
}
