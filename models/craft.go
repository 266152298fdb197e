package models

import "gorm.io/gorm"

// CraftParticipant registers for CRAFT individually; there is no team or
// member row behind it.
type CraftParticipant struct {
	gorm.Model
	FullName        string     `gorm:"not null" json:"full_name"`
	InstitutionName string     `gorm:"not null" json:"institution_name"`
	Email           string     `gorm:"not null;index" json:"email"`
	Phone           string     `json:"phone"`
	PaymentProof    string     `json:"payment_proof"`
	IDCard          *string    `json:"id_card,omitempty"`
	Status          TeamStatus `gorm:"type:varchar(16);default:'pending'" json:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
}
