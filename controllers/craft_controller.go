package controller

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"civex/models"
	"civex/utils"
)

// CraftController handles CRAFT registrations. CRAFT participants register
// individually, so there is no team or roster behind a record.
type CraftController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCraftController(db *gorm.DB, logger *log.Logger) *CraftController {
	return &CraftController{DB: db, Logger: logger}
}

type CraftRequest struct {
	FullName        string `json:"full_name" validate:"required"`
	InstitutionName string `json:"institution_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
}

func craftUploadFields() []utils.FileField {
	return []utils.FileField{
		{Name: "payment_proof", Required: true, AllowedExts: utils.DocumentExts},
		{Name: "id_card", AllowedExts: utils.DocumentExts},
	}
}

// List returns every CRAFT participant.
func (cc *CraftController) List(c *fiber.Ctx) error {
	var participants []models.CraftParticipant
	if err := cc.DB.Order("id asc").Find(&participants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch participants", err)
	}
	if len(participants) == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No participants registered for this competition", nil)
	}
	return c.JSON(utils.SuccessResponse(participants))
}

// Get returns one CRAFT participant.
func (cc *CraftController) Get(c *fiber.Ctx) error {
	participant, err := cc.find(c)
	if err != nil {
		return cc.findError(c, err)
	}
	return c.JSON(utils.SuccessResponse(participant))
}

// Create registers a participant: JSON in the multipart "data" field plus a
// payment proof. A second registration with the same email answers 409.
func (cc *CraftController) Create(c *fiber.Ctx) error {
	data := c.FormValue("data")
	if data == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing data field", nil)
	}

	var req CraftRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid data field", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var count int64
	if err := cc.DB.Model(&models.CraftParticipant{}).
		Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check registration", err)
	}
	if count > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered for this competition", nil)
	}

	intake, err := utils.StageUploads(c, models.EventCraft, craftUploadFields())
	if err != nil {
		var invalid *utils.InvalidUploadError
		if errors.As(err, &invalid) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "File validation failed", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store uploads", err)
	}

	participant := models.CraftParticipant{
		FullName:        req.FullName,
		InstitutionName: req.InstitutionName,
		Email:           req.Email,
		Phone:           req.Phone,
		PaymentProof:    intake.PathString("payment_proof"),
		IDCard:          intake.Path("id_card"),
		Status:          models.StatusPending,
	}
	if err := cc.DB.Create(&participant).Error; err != nil {
		_ = intake.Discard()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create participant", err)
	}

	intake.Promote()

	if err := utils.SendRegistrationReceived(req.Email, models.EventCraft, req.FullName); err != nil {
		cc.Logger.Printf("registration email to %s failed: %v", req.Email, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(participant))
}

// Update overwrites the participant's editable fields.
func (cc *CraftController) Update(c *fiber.Ctx) error {
	participant, err := cc.find(c)
	if err != nil {
		return cc.findError(c, err)
	}

	var req CraftRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if err := cc.DB.Model(participant).Updates(map[string]interface{}{
		"full_name":        req.FullName,
		"institution_name": req.InstitutionName,
		"email":            req.Email,
		"phone":            req.Phone,
	}).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update participant", err)
	}

	return c.JSON(utils.SuccessResponse(participant))
}

// Verify marks a participant verified, clearing any earlier rejection.
func (cc *CraftController) Verify(c *fiber.Ctx) error {
	return cc.setStatus(c, models.StatusVerified, nil)
}

// Reject marks a participant rejected with a staff message.
func (cc *CraftController) Reject(c *fiber.Ctx) error {
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	return cc.setStatus(c, models.StatusRejected, &req.Message)
}

// Delete removes a participant.
func (cc *CraftController) Delete(c *fiber.Ctx) error {
	participant, err := cc.find(c)
	if err != nil {
		return cc.findError(c, err)
	}

	if err := cc.DB.Delete(participant).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete participant", err)
	}

	return c.JSON(fiber.Map{"message": "Participant deleted"})
}

func (cc *CraftController) setStatus(c *fiber.Ctx, status models.TeamStatus, reason *string) error {
	participant, err := cc.find(c)
	if err != nil {
		return cc.findError(c, err)
	}

	updates := map[string]interface{}{
		"status":           status,
		"rejection_reason": nil,
	}
	if reason != nil {
		updates["rejection_reason"] = *reason
	}
	if err := cc.DB.Model(participant).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update participant status", err)
	}

	return c.JSON(utils.SuccessResponse(participant))
}

var errInvalidParticipantID = errors.New("invalid participant ID")

// find loads the participant from the :id param.
func (cc *CraftController) find(c *fiber.Ctx) (*models.CraftParticipant, error) {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return nil, errInvalidParticipantID
	}

	var participant models.CraftParticipant
	if err := cc.DB.First(&participant, id).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// findError converts a find failure into the matching error response.
func (cc *CraftController) findError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errInvalidParticipantID):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid participant ID", nil)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Participant not found", nil)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch participant", err)
	}
}
