package controller

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"civex/models"
	"civex/utils"
)

// CICSpec covers the Civil Innovation Contest. CIC carries no data beyond
// the common team and roster.
type CICSpec struct{}

type cicPayload struct {
	TeamRequest
}

func (p *cicPayload) Team() *TeamRequest { return &p.TeamRequest }

func (CICSpec) Slug() string { return models.EventCIC }

func (CICSpec) DecodeCreate(data []byte) (TrackPayload, error) {
	var p cicPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (CICSpec) UploadFields(p TrackPayload) []utils.FileField {
	return teamFileFields(p, utils.DefaultMaxFileSize)
}

func (CICSpec) InsertExtras(tx *gorm.DB, team *models.Team, p TrackPayload, files *utils.Intake) error {
	return nil
}

func (CICSpec) LoadExtras(db *gorm.DB, teamID uint) (fiber.Map, error) {
	return nil, nil
}

func (CICSpec) PurgeExtras(tx *gorm.DB, teamID uint) error {
	return nil
}
