package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"civex/models"
	"civex/utils"
)

// ParticipantController produces the denormalized per-competition export
// view. Each row is split into a "data" group (public fields) and a
// "downloads" group (document paths) so the presentation layer can treat
// file references separately.
type ParticipantController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewParticipantController(db *gorm.DB, logger *log.Logger) *ParticipantController {
	return &ParticipantController{DB: db, Logger: logger}
}

// GetParticipants lists every registration of one competition.
func (pc *ParticipantController) GetParticipants(c *fiber.Ctx) error {
	event := c.Params("event")

	var (
		rows []fiber.Map
		err  error
	)
	switch event {
	case models.EventCIC, models.EventSBC, models.EventFCEC:
		rows, err = pc.teamRows(event)
	case models.EventCraft:
		rows, err = pc.craftRows()
	default:
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown competition", nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch participants", err)
	}
	if len(rows) == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No participants found for this competition", nil)
	}

	return c.JSON(utils.SuccessResponse(rows))
}

func (pc *ParticipantController) teamRows(event string) ([]fiber.Map, error) {
	var teams []models.Team
	if err := pc.DB.Where("event = ?", event).Order("id asc").Find(&teams).Error; err != nil {
		return nil, err
	}

	rows := make([]fiber.Map, 0, len(teams))
	for i := range teams {
		team := &teams[i]

		var members []models.Member
		if err := pc.DB.Where("team_id = ?", team.ID).Order("is_leader desc, id asc").Find(&members).Error; err != nil {
			return nil, err
		}

		memberData := make([]fiber.Map, 0, len(members))
		memberDocs := make([]fiber.Map, 0, len(members))
		for j := range members {
			m := &members[j]
			memberData = append(memberData, fiber.Map{
				"full_name":  m.FullName,
				"student_id": m.StudentID,
				"email":      m.Email,
				"phone":      m.Phone,
				"is_leader":  m.IsLeader,
			})
			memberDocs = append(memberDocs, fiber.Map{
				"full_name":         m.FullName,
				"id_card":           m.IDCard,
				"enrollment_letter": m.EnrollmentLetter,
				"photo":             m.Photo,
			})
		}

		data := fiber.Map{
			"team_id":          team.ID,
			"team_name":        team.TeamName,
			"institution_name": team.InstitutionName,
			"email":            team.Email,
			"status":           team.Status,
			"rejection_reason": team.RejectionReason,
			"members":          memberData,
		}
		downloads := fiber.Map{
			"payment_proof": team.PaymentProof,
			"voucher":       team.Voucher,
			"members":       memberDocs,
		}

		switch event {
		case models.EventSBC:
			if err := pc.attachSBC(team.ID, data, downloads); err != nil {
				return nil, err
			}
		case models.EventFCEC:
			if err := pc.attachFCEC(team.ID, data, downloads); err != nil {
				return nil, err
			}
		}

		rows = append(rows, fiber.Map{
			"data":      data,
			"downloads": downloads,
		})
	}
	return rows, nil
}

func (pc *ParticipantController) attachSBC(teamID uint, data, downloads fiber.Map) error {
	var bridge models.SBCBridge
	if err := pc.DB.Where("team_id = ?", teamID).First(&bridge).Error; err == nil {
		data["bridge_name"] = bridge.BridgeName
		data["bridge_description"] = bridge.BridgeDescription
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	var advisors []models.SBCAdvisor
	if err := pc.DB.Where("team_id = ?", teamID).Order("id asc").Find(&advisors).Error; err != nil {
		return err
	}

	advisorData := make([]fiber.Map, 0, len(advisors))
	advisorDocs := make([]fiber.Map, 0, len(advisors))
	for i := range advisors {
		a := &advisors[i]
		advisorData = append(advisorData, fiber.Map{
			"full_name": a.FullName,
			"staff_id":  a.StaffID,
			"email":     a.Email,
			"phone":     a.Phone,
		})
		advisorDocs = append(advisorDocs, fiber.Map{
			"full_name": a.FullName,
			"id_card":   a.IDCard,
			"photo":     a.Photo,
		})
	}
	data["advisors"] = advisorData
	downloads["advisors"] = advisorDocs
	return nil
}

func (pc *ParticipantController) attachFCEC(teamID uint, data, downloads fiber.Map) error {
	var abstract models.FCECAbstract
	if err := pc.DB.Where("team_id = ?", teamID).First(&abstract).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	data["abstract_title"] = abstract.Title
	downloads["abstract_file"] = abstract.AbstractFile
	downloads["statement_file"] = abstract.StatementFile
	return nil
}

func (pc *ParticipantController) craftRows() ([]fiber.Map, error) {
	var participants []models.CraftParticipant
	if err := pc.DB.Order("id asc").Find(&participants).Error; err != nil {
		return nil, err
	}

	rows := make([]fiber.Map, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		rows = append(rows, fiber.Map{
			"data": fiber.Map{
				"participant_id":   p.ID,
				"full_name":        p.FullName,
				"institution_name": p.InstitutionName,
				"email":            p.Email,
				"phone":            p.Phone,
				"status":           p.Status,
				"rejection_reason": p.RejectionReason,
			},
			"downloads": fiber.Map{
				"payment_proof": p.PaymentProof,
				"id_card":       p.IDCard,
			},
		})
	}
	return rows, nil
}
