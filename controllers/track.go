package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"civex/models"
	"civex/utils"
)

// MemberRequest carries one roster entry. FullName is optional so that
// frontends can send a trailing blank placeholder row; blank entries are
// skipped at create time.
type MemberRequest struct {
	ID        uint   `json:"id,omitempty"`
	FullName  string `json:"full_name"`
	StudentID string `json:"student_id"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

// TeamRequest is the common team shape every track shares. Track payloads
// embed it and add their own fields.
type TeamRequest struct {
	TeamName        string          `json:"team_name" validate:"required"`
	InstitutionName string          `json:"institution_name" validate:"required"`
	Email           string          `json:"email" validate:"required,email"`
	Leader          MemberRequest   `json:"leader"`
	Members         []MemberRequest `json:"members" validate:"dive"`
}

// TrackPayload is a decoded create payload for some track.
type TrackPayload interface {
	Team() *TeamRequest
}

// TrackSpec supplies everything that differs between competitions: the
// slug, the file fields to accept, and the track-specific rows hanging off
// a team. The surrounding workflow (uniqueness check, staging, transaction,
// roster writes, verification) is shared.
type TrackSpec interface {
	Slug() string
	DecodeCreate(data []byte) (TrackPayload, error)
	UploadFields(p TrackPayload) []utils.FileField
	InsertExtras(tx *gorm.DB, team *models.Team, p TrackPayload, files *utils.Intake) error
	LoadExtras(db *gorm.DB, teamID uint) (fiber.Map, error)
	PurgeExtras(tx *gorm.DB, teamID uint) error
}

// TrackController implements the registration workflow for one track.
type TrackController struct {
	DB     *gorm.DB
	Spec   TrackSpec
	Logger *log.Logger
}

func NewTrackController(db *gorm.DB, spec TrackSpec, logger *log.Logger) *TrackController {
	return &TrackController{DB: db, Spec: spec, Logger: logger}
}

// teamFileFields builds the shared upload field list: team-level documents
// plus one document set per roster entry. maxSize applies to every field.
func teamFileFields(p TrackPayload, maxSize int64) []utils.FileField {
	fields := []utils.FileField{
		{Name: "payment_proof", Required: true, MaxSize: maxSize, AllowedExts: utils.DocumentExts},
		{Name: "voucher", MaxSize: maxSize, AllowedExts: utils.DocumentExts},
	}
	fields = append(fields, memberDocFields("leader", maxSize)...)
	for i := range p.Team().Members {
		fields = append(fields, memberDocFields(fmt.Sprintf("member%d", i+1), maxSize)...)
	}
	return fields
}

func memberDocFields(prefix string, maxSize int64) []utils.FileField {
	return []utils.FileField{
		{Name: prefix + "_id_card", MaxSize: maxSize, AllowedExts: utils.DocumentExts},
		{Name: prefix + "_enrollment_letter", MaxSize: maxSize, AllowedExts: utils.DocumentExts},
		{Name: prefix + "_photo", MaxSize: maxSize, AllowedExts: utils.ImageExts},
	}
}

// composite assembles the denormalized team view: team row, the leader
// split from the remaining members (leader first), and the track's extra
// records.
func (tc *TrackController) composite(team *models.Team) (fiber.Map, error) {
	var members []models.Member
	if err := tc.DB.Where("team_id = ?", team.ID).Order("is_leader desc, id asc").Find(&members).Error; err != nil {
		return nil, err
	}

	var leader *models.Member
	rest := make([]models.Member, 0, len(members))
	for i := range members {
		if members[i].IsLeader && leader == nil {
			leader = &members[i]
			continue
		}
		rest = append(rest, members[i])
	}

	view := fiber.Map{
		"team":    team,
		"leader":  leader,
		"members": rest,
	}

	extras, err := tc.Spec.LoadExtras(tc.DB, team.ID)
	if err != nil {
		return nil, err
	}
	for k, v := range extras {
		view[k] = v
	}
	return view, nil
}

func (tc *TrackController) findTeam(id uint) (*models.Team, error) {
	var team models.Team
	err := tc.DB.Where("id = ? AND event = ?", id, tc.Spec.Slug()).First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListTeams returns every team of the track as composite views.
func (tc *TrackController) ListTeams(c *fiber.Ctx) error {
	var teams []models.Team
	if err := tc.DB.Where("event = ?", tc.Spec.Slug()).Order("id asc").Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch teams", err)
	}
	if len(teams) == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No teams registered for this competition", nil)
	}

	views := make([]fiber.Map, 0, len(teams))
	for i := range teams {
		view, err := tc.composite(&teams[i])
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assemble team data", err)
		}
		views = append(views, view)
	}

	return c.JSON(utils.SuccessResponse(views))
}

// GetTeam returns one team of the track.
func (tc *TrackController) GetTeam(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team ID", nil)
	}

	team, err := tc.findTeam(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team", err)
	}

	view, err := tc.composite(team)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assemble team data", err)
	}
	if leader, _ := view["leader"].(*models.Member); leader == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team has no members", nil)
	}

	return c.JSON(utils.SuccessResponse(view))
}

// CreateTeam registers a new team: structured payload in the multipart
// "data" field, documents in the file fields. The name-uniqueness check
// runs before any file is accepted, the row writes run in one transaction,
// and staged files are promoted only after commit.
func (tc *TrackController) CreateTeam(c *fiber.Ctx) error {
	data := c.FormValue("data")
	if data == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing data field", nil)
	}

	payload, err := tc.Spec.DecodeCreate([]byte(data))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team := payload.Team()
	if strings.TrimSpace(team.Leader.FullName) == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", errors.New("leader full_name is required"))
	}

	var count int64
	if err := tc.DB.Model(&models.Team{}).
		Where("event = ? AND team_name = ?", tc.Spec.Slug(), team.TeamName).
		Count(&count).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check team name", err)
	}
	if count > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Team name already registered for this competition", nil)
	}

	intake, err := utils.StageUploads(c, tc.Spec.Slug(), tc.Spec.UploadFields(payload))
	if err != nil {
		var invalid *utils.InvalidUploadError
		if errors.As(err, &invalid) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "File validation failed", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store uploads", err)
	}

	tx := tc.DB.Begin()
	if tx.Error != nil {
		_ = intake.Discard()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start transaction", tx.Error)
	}

	row := models.Team{
		Event:           tc.Spec.Slug(),
		TeamName:        team.TeamName,
		InstitutionName: team.InstitutionName,
		Email:           team.Email,
		PaymentProof:    intake.PathString("payment_proof"),
		Voucher:         intake.Path("voucher"),
		Status:          models.StatusPending,
	}
	if err := tx.Create(&row).Error; err != nil {
		return tc.abortCreate(c, tx, intake, "Failed to create team", err)
	}

	leader := memberFromRequest(&team.Leader, row.ID, true, intake, "leader")
	if err := tx.Create(leader).Error; err != nil {
		return tc.abortCreate(c, tx, intake, "Failed to create team leader", err)
	}

	for i := range team.Members {
		m := &team.Members[i]
		if strings.TrimSpace(m.FullName) == "" {
			continue // trailing placeholder row
		}
		member := memberFromRequest(m, row.ID, false, intake, fmt.Sprintf("member%d", i+1))
		if err := tx.Create(member).Error; err != nil {
			return tc.abortCreate(c, tx, intake, "Failed to create team member", err)
		}
	}

	if err := tc.Spec.InsertExtras(tx, &row, payload, intake); err != nil {
		return tc.abortCreate(c, tx, intake, "Failed to create competition records", err)
	}

	if err := tx.Commit().Error; err != nil {
		_ = intake.Discard()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit registration", err)
	}

	intake.Promote()

	if err := utils.SendRegistrationReceived(team.Email, tc.Spec.Slug(), team.TeamName); err != nil {
		tc.Logger.Printf("registration email to %s failed: %v", team.Email, err)
	}

	view, err := tc.composite(&row)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assemble team data", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(view))
}

func (tc *TrackController) abortCreate(c *fiber.Ctx, tx *gorm.DB, intake *utils.Intake, message string, err error) error {
	tx.Rollback()
	_ = intake.Discard()
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, message, err)
}

func memberFromRequest(req *MemberRequest, teamID uint, isLeader bool, files *utils.Intake, fieldPrefix string) *models.Member {
	return &models.Member{
		TeamID:           teamID,
		FullName:         req.FullName,
		StudentID:        req.StudentID,
		Email:            req.Email,
		Phone:            req.Phone,
		IsLeader:         isLeader,
		IDCard:           files.Path(fieldPrefix + "_id_card"),
		EnrollmentLetter: files.Path(fieldPrefix + "_enrollment_letter"),
		Photo:            files.Path(fieldPrefix + "_photo"),
	}
}

// TeamUpdateRequest overwrites the editable team fields plus the roster.
// Every member entry must carry its existing row ID.
type TeamUpdateRequest struct {
	TeamName        string          `json:"team_name" validate:"required"`
	InstitutionName string          `json:"institution_name" validate:"required"`
	Email           string          `json:"email" validate:"required,email"`
	Leader          MemberRequest   `json:"leader"`
	Members         []MemberRequest `json:"members" validate:"dive"`
}

// UpdateTeam overwrites the team row and its member rows. Member writes fan
// out concurrently; the first failure wins.
func (tc *TrackController) UpdateTeam(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team ID", nil)
	}

	var req TeamUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	team, err := tc.findTeam(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team", err)
	}

	if err := tc.DB.Model(team).Updates(map[string]interface{}{
		"team_name":        req.TeamName,
		"institution_name": req.InstitutionName,
		"email":            req.Email,
	}).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
	}

	var g errgroup.Group
	entries := append([]MemberRequest{req.Leader}, req.Members...)
	for i := range entries {
		m := entries[i]
		if m.ID == 0 {
			continue
		}
		g.Go(func() error {
			return tc.DB.Model(&models.Member{}).
				Where("id = ? AND team_id = ?", m.ID, team.ID).
				Updates(map[string]interface{}{
					"full_name":  m.FullName,
					"student_id": m.StudentID,
					"email":      m.Email,
					"phone":      m.Phone,
				}).Error
		})
	}
	if err := g.Wait(); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update members", err)
	}

	view, err := tc.composite(team)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assemble team data", err)
	}
	return c.JSON(utils.SuccessResponse(view))
}

// VerifyTeam marks a submission verified, clearing any earlier rejection.
func (tc *TrackController) VerifyTeam(c *fiber.Ctx) error {
	return tc.setStatus(c, models.StatusVerified, nil)
}

type RejectRequest struct {
	Message string `json:"message" validate:"required"`
}

// RejectTeam marks a submission rejected with a staff message.
func (tc *TrackController) RejectTeam(c *fiber.Ctx) error {
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	return tc.setStatus(c, models.StatusRejected, &req.Message)
}

func (tc *TrackController) setStatus(c *fiber.Ctx, status models.TeamStatus, reason *string) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team ID", nil)
	}

	team, err := tc.findTeam(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team", err)
	}

	updates := map[string]interface{}{
		"status":           status,
		"rejection_reason": nil,
	}
	if reason != nil {
		updates["rejection_reason"] = *reason
	}
	if err := tc.DB.Model(team).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team status", err)
	}

	view, err := tc.composite(team)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assemble team data", err)
	}
	return c.JSON(utils.SuccessResponse(view))
}

// DeleteTeam removes the track rows, the members, and finally the team, in
// one transaction so a mid-sequence failure leaves nothing half-deleted.
func (tc *TrackController) DeleteTeam(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team ID", nil)
	}

	team, err := tc.findTeam(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch team", err)
	}

	tx := tc.DB.Begin()
	if tx.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start transaction", tx.Error)
	}

	if err := tc.Spec.PurgeExtras(tx, team.ID); err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete competition records", err)
	}
	if err := tx.Where("team_id = ?", team.ID).Delete(&models.Member{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team members", err)
	}
	if err := tx.Delete(team).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team", err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to commit deletion", err)
	}

	return c.JSON(fiber.Map{"message": "Team deleted"})
}
