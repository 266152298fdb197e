package controller

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"civex/models"
	"civex/utils"
)

// FCECSpec covers the Future Civil Engineer Challenge: teams submit a paper
// abstract (PDF) alongside the common registration data.
type FCECSpec struct{}

type fcecPayload struct {
	TeamRequest
	AbstractTitle string `json:"abstract_title" validate:"required"`
}

func (p *fcecPayload) Team() *TeamRequest { return &p.TeamRequest }

func (FCECSpec) Slug() string { return models.EventFCEC }

func (FCECSpec) DecodeCreate(data []byte) (TrackPayload, error) {
	var p fcecPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (FCECSpec) UploadFields(p TrackPayload) []utils.FileField {
	fields := teamFileFields(p, utils.DefaultMaxFileSize)
	return append(fields,
		utils.FileField{Name: "abstract_file", Required: true, AllowedExts: []string{".pdf"}},
		utils.FileField{Name: "statement_file", AllowedExts: []string{".pdf"}},
	)
}

func (FCECSpec) InsertExtras(tx *gorm.DB, team *models.Team, p TrackPayload, files *utils.Intake) error {
	fp := p.(*fcecPayload)
	abstract := models.FCECAbstract{
		TeamID:        team.ID,
		Title:         fp.AbstractTitle,
		AbstractFile:  files.Path("abstract_file"),
		StatementFile: files.Path("statement_file"),
	}
	return tx.Create(&abstract).Error
}

func (FCECSpec) LoadExtras(db *gorm.DB, teamID uint) (fiber.Map, error) {
	var abstract models.FCECAbstract
	if err := db.Where("team_id = ?", teamID).First(&abstract).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, nil
	}
	return fiber.Map{"abstract": abstract}, nil
}

func (FCECSpec) PurgeExtras(tx *gorm.DB, teamID uint) error {
	return tx.Where("team_id = ?", teamID).Delete(&models.FCECAbstract{}).Error
}
