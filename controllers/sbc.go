package controller

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"civex/models"
	"civex/utils"
)

// SBCSpec covers the Smart Bridge Competition: a bridge record plus one or
// more supervising advisors per team, with a larger upload cap for design
// documents.
type SBCSpec struct{}

const sbcMaxFileSize = 10 << 20

type AdvisorRequest struct {
	FullName string `json:"full_name" validate:"required"`
	StaffID  string `json:"staff_id"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
}

type sbcPayload struct {
	TeamRequest
	BridgeName        string           `json:"bridge_name" validate:"required"`
	BridgeDescription string           `json:"bridge_description"`
	Advisors          []AdvisorRequest `json:"advisors" validate:"required,min=1,dive"`
}

func (p *sbcPayload) Team() *TeamRequest { return &p.TeamRequest }

func (SBCSpec) Slug() string { return models.EventSBC }

func (SBCSpec) DecodeCreate(data []byte) (TrackPayload, error) {
	var p sbcPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (SBCSpec) UploadFields(p TrackPayload) []utils.FileField {
	fields := teamFileFields(p, sbcMaxFileSize)
	sp := p.(*sbcPayload)
	for i := range sp.Advisors {
		prefix := fmt.Sprintf("advisor%d", i+1)
		fields = append(fields,
			utils.FileField{Name: prefix + "_id_card", MaxSize: sbcMaxFileSize, AllowedExts: utils.DocumentExts},
			utils.FileField{Name: prefix + "_photo", MaxSize: sbcMaxFileSize, AllowedExts: utils.ImageExts},
		)
	}
	return fields
}

func (SBCSpec) InsertExtras(tx *gorm.DB, team *models.Team, p TrackPayload, files *utils.Intake) error {
	sp := p.(*sbcPayload)

	bridge := models.SBCBridge{
		TeamID:            team.ID,
		BridgeName:        sp.BridgeName,
		BridgeDescription: sp.BridgeDescription,
	}
	if err := tx.Create(&bridge).Error; err != nil {
		return err
	}

	for i := range sp.Advisors {
		a := &sp.Advisors[i]
		prefix := fmt.Sprintf("advisor%d", i+1)
		advisor := models.SBCAdvisor{
			TeamID:   team.ID,
			FullName: a.FullName,
			StaffID:  a.StaffID,
			Email:    a.Email,
			Phone:    a.Phone,
			IDCard:   files.Path(prefix + "_id_card"),
			Photo:    files.Path(prefix + "_photo"),
		}
		if err := tx.Create(&advisor).Error; err != nil {
			return err
		}
	}
	return nil
}

func (SBCSpec) LoadExtras(db *gorm.DB, teamID uint) (fiber.Map, error) {
	var bridge models.SBCBridge
	if err := db.Where("team_id = ?", teamID).First(&bridge).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, nil
	}

	var advisors []models.SBCAdvisor
	if err := db.Where("team_id = ?", teamID).Order("id asc").Find(&advisors).Error; err != nil {
		return nil, err
	}

	return fiber.Map{
		"bridge":   bridge,
		"advisors": advisors,
	}, nil
}

func (SBCSpec) PurgeExtras(tx *gorm.DB, teamID uint) error {
	if err := tx.Where("team_id = ?", teamID).Delete(&models.SBCAdvisor{}).Error; err != nil {
		return err
	}
	return tx.Where("team_id = ?", teamID).Delete(&models.SBCBridge{}).Error
}
