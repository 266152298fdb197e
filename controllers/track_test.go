package controller_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civex/config"
	"civex/models"
)

func TestCreateCICTeamSkipsBlankMember(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader1", false)

	// leader + three roster entries, the trailing one a blank placeholder
	payload := teamPayload("Alpha", "Bob Builder", "Charlie Civil", "")
	resp := doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, payload),
		map[string]string{"payment_proof": "proof.png"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var team models.Team
	require.NoError(t, db.Where("event = ? AND team_name = ?", models.EventCIC, "Alpha").First(&team).Error)
	assert.Equal(t, models.StatusPending, team.Status)
	assert.NotEmpty(t, team.PaymentProof)

	var members []models.Member
	require.NoError(t, db.Where("team_id = ?", team.ID).Find(&members).Error)
	assert.Len(t, members, 3) // leader + 2, blank entry skipped

	leaders := 0
	for _, m := range members {
		if m.IsLeader {
			leaders++
			assert.Equal(t, "Alice Leader", m.FullName)
		}
	}
	assert.Equal(t, 1, leaders)

	// staged file was promoted into the event directory
	assert.Equal(t, 1, countFiles(t, filepath.Join(config.AppConfig.UploadDir, "cic")))
	assert.Equal(t, 0, countFiles(t, filepath.Join(config.AppConfig.UploadDir, "tmp")))
}

func TestCreateDuplicateTeamNameLeavesNoFiles(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader2", false)

	payload := teamPayload("Beta", "Bob Builder")
	resp := doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, payload),
		map[string]string{"payment_proof": "proof.png"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	before := countFiles(t, config.AppConfig.UploadDir)

	resp = doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, payload),
		map[string]string{"payment_proof": "other-proof.png"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	assert.Equal(t, before, countFiles(t, config.AppConfig.UploadDir))

	var count int64
	require.NoError(t, db.Model(&models.Team{}).Where("team_name = ?", "Beta").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSameTeamNameAllowedAcrossTracks(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader3", false)

	resp := doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, teamPayload("Gamma", "Bob")),
		map[string]string{"payment_proof": "proof.png"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	fcec := teamPayload("Gamma", "Bob")
	fcec["abstract_title"] = "Low-carbon concrete"
	resp = doMultipart(t, app, "/api/v1/fcec/", token, mustJSON(t, fcec),
		map[string]string{"payment_proof": "proof.png", "abstract_file": "abstract.pdf"})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Team{}).Where("team_name = ?", "Gamma").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestVerifyAndRejectBothOrders(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader4", false)
	_, adminToken := createUser(t, db, "admin4", true)

	resp := doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, teamPayload("Delta", "Bob")),
		map[string]string{"payment_proof": "proof.png"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var team models.Team
	require.NoError(t, db.Where("team_name = ?", "Delta").First(&team).Error)
	teamID := team.ID

	url := func(suffix string) string {
		return "/api/v1/cic/" + itoa(teamID) + suffix
	}

	// verify then reject: rejection wins and carries the message
	resp = doJSON(t, app, fiber.MethodPatch, url("/verify"), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, db.First(&team, teamID).Error)
	assert.Equal(t, models.StatusVerified, team.Status)
	assert.Nil(t, team.RejectionReason)

	resp = doJSON(t, app, fiber.MethodPatch, url("/reject"), adminToken,
		map[string]string{"message": "payment proof unreadable"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, db.First(&team, teamID).Error)
	assert.Equal(t, models.StatusRejected, team.Status)
	require.NotNil(t, team.RejectionReason)
	assert.Equal(t, "payment proof unreadable", *team.RejectionReason)

	// reject then verify: verification wins and clears the message
	resp = doJSON(t, app, fiber.MethodPatch, url("/verify"), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, db.First(&team, teamID).Error)
	assert.Equal(t, models.StatusVerified, team.Status)
	assert.Nil(t, team.RejectionReason)
}

func TestVerifyRequiresAdmin(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader5", false)

	resp := doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, teamPayload("Epsilon", "Bob")),
		map[string]string{"payment_proof": "proof.png"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var team models.Team
	require.NoError(t, db.Where("team_name = ?", "Epsilon").First(&team).Error)

	resp = doJSON(t, app, fiber.MethodPatch, "/api/v1/cic/"+itoa(team.ID)+"/verify", token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeleteSBCTeamCascades(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader6", false)
	_, adminToken := createUser(t, db, "admin6", true)

	payload := teamPayload("Zeta", "Bob", "Charlie")
	payload["bridge_name"] = "Truss One"
	payload["bridge_description"] = "Warren truss, balsa"
	payload["advisors"] = []map[string]string{
		{"full_name": "Dr. Dosen", "staff_id": "19700101"},
	}
	resp := doMultipart(t, app, "/api/v1/sbc/", token, mustJSON(t, payload),
		map[string]string{"payment_proof": "proof.pdf", "advisor1_photo": "dosen.jpg"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var team models.Team
	require.NoError(t, db.Where("event = ? AND team_name = ?", models.EventSBC, "Zeta").First(&team).Error)

	var bridges, advisors, members int64
	db.Model(&models.SBCBridge{}).Where("team_id = ?", team.ID).Count(&bridges)
	db.Model(&models.SBCAdvisor{}).Where("team_id = ?", team.ID).Count(&advisors)
	db.Model(&models.Member{}).Where("team_id = ?", team.ID).Count(&members)
	require.Equal(t, int64(1), bridges)
	require.Equal(t, int64(1), advisors)
	require.Equal(t, int64(3), members)

	resp = doJSON(t, app, fiber.MethodDelete, "/api/v1/sbc/"+itoa(team.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	db.Model(&models.SBCBridge{}).Where("team_id = ?", team.ID).Count(&bridges)
	db.Model(&models.SBCAdvisor{}).Where("team_id = ?", team.ID).Count(&advisors)
	db.Model(&models.Member{}).Where("team_id = ?", team.ID).Count(&members)
	assert.Equal(t, int64(0), bridges)
	assert.Equal(t, int64(0), advisors)
	assert.Equal(t, int64(0), members)

	var teams int64
	db.Model(&models.Team{}).Where("id = ?", team.ID).Count(&teams)
	assert.Equal(t, int64(0), teams)
}

func TestGetAndListNotFound(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader7", false)

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/cic/", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/cic/999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// a CIC team is invisible through the SBC routes
	create := doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, teamPayload("Eta", "Bob")),
		map[string]string{"payment_proof": "proof.png"})
	require.Equal(t, fiber.StatusCreated, create.StatusCode)

	var team models.Team
	require.NoError(t, db.Where("team_name = ?", "Eta").First(&team).Error)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/sbc/"+itoa(team.ID), token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/cic/"+itoa(team.ID), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListSplitsLeaderFromMembers(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader8", false)

	resp := doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, teamPayload("Theta", "Bob", "Charlie")),
		map[string]string{"payment_proof": "proof.png"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/cic/", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	views, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, views, 1)

	view := views[0].(map[string]interface{})
	leader, ok := view["leader"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Alice Leader", leader["full_name"])

	members, ok := view["members"].([]interface{})
	require.True(t, ok)
	assert.Len(t, members, 2)
	for _, m := range members {
		assert.NotEqual(t, "Alice Leader", m.(map[string]interface{})["full_name"])
	}
}

func TestUpdateTeamOverwritesRoster(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader9", false)

	resp := doMultipart(t, app, "/api/v1/cic/", token, mustJSON(t, teamPayload("Iota", "Bob")),
		map[string]string{"payment_proof": "proof.png"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var team models.Team
	require.NoError(t, db.Where("team_name = ?", "Iota").First(&team).Error)
	var members []models.Member
	require.NoError(t, db.Where("team_id = ?", team.ID).Order("is_leader desc, id asc").Find(&members).Error)
	require.Len(t, members, 2)

	update := map[string]interface{}{
		"team_name":        "Iota Prime",
		"institution_name": "Y Institute",
		"email":            "newmail@example.com",
		"leader": map[string]interface{}{
			"id":        members[0].ID,
			"full_name": "Alice Renamed",
		},
		"members": []map[string]interface{}{
			{"id": members[1].ID, "full_name": "Bob Renamed", "phone": "0812000"},
		},
	}
	resp = doJSON(t, app, fiber.MethodPut, "/api/v1/cic/"+itoa(team.ID), token, update)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&team, team.ID).Error)
	assert.Equal(t, "Iota Prime", team.TeamName)
	assert.Equal(t, "Y Institute", team.InstitutionName)

	var leader models.Member
	require.NoError(t, db.First(&leader, members[0].ID).Error)
	assert.Equal(t, "Alice Renamed", leader.FullName)
	assert.True(t, leader.IsLeader)

	var member models.Member
	require.NoError(t, db.First(&member, members[1].ID).Error)
	assert.Equal(t, "Bob Renamed", member.FullName)
	assert.Equal(t, "0812000", member.Phone)
}

func TestFCECRequiresAbstractFile(t *testing.T) {
	app, db := setupApp(t)
	_, token := createUser(t, db, "leader10", false)

	payload := teamPayload("Kappa", "Bob")
	payload["abstract_title"] = "Seismic dampers"

	resp := doMultipart(t, app, "/api/v1/fcec/", token, mustJSON(t, payload),
		map[string]string{"payment_proof": "proof.png"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// wrong extension for a PDF-only field is rejected too
	resp = doMultipart(t, app, "/api/v1/fcec/", token, mustJSON(t, payload),
		map[string]string{"payment_proof": "proof.png", "abstract_file": "abstract.docx"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Team{}).Where("team_name = ?", "Kappa").Count(&count).Error)
	assert.Equal(t, int64(0), count)

	resp = doMultipart(t, app, "/api/v1/fcec/", token, mustJSON(t, payload),
		map[string]string{"payment_proof": "proof.png", "abstract_file": "abstract.pdf"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var team models.Team
	require.NoError(t, db.Where("team_name = ?", "Kappa").First(&team).Error)
	var abstract models.FCECAbstract
	require.NoError(t, db.Where("team_id = ?", team.ID).First(&abstract).Error)
	assert.Equal(t, "Seismic dampers", abstract.Title)
	require.NotNil(t, abstract.AbstractFile)
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
