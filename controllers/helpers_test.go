package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"civex/config"
	"civex/models"
	"civex/routes"
	"civex/utils"
)

// setupApp builds a fiber app over a fresh in-memory database with the full
// route table registered.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.AppConfig.JWTSecret = "controller-test-secret"
	config.AppConfig.UploadDir = t.TempDir()
	config.AppConfig.SMTPHost = ""

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDB(db))
	config.DB = db

	app := fiber.New()
	routes.SetupRoutes(app, db)
	return app, db
}

// createUser inserts an account and returns it with a valid access token.
func createUser(t *testing.T, db *gorm.DB, username string, admin bool) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsAdmin:      admin,
	}
	require.NoError(t, db.Create(&user).Error)

	token, _, err := utils.GenerateTokenPair(&user)
	require.NoError(t, err)
	return user, token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// doMultipart posts a registration: the structured payload in the "data"
// field plus dummy file content for each named file field.
func doMultipart(t *testing.T, app *fiber.App, path, token, data string, files map[string]string) *http.Response {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("data", data))
	for field, filename := range files {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("dummy file content"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&parsed))
	return parsed
}

// countFiles counts regular files in the upload tree.
func countFiles(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func teamPayload(name string, memberNames ...string) map[string]interface{} {
	members := make([]map[string]string, 0, len(memberNames))
	for i, n := range memberNames {
		members = append(members, map[string]string{
			"full_name":  n,
			"student_id": fmt.Sprintf("2026%02d", i+1),
		})
	}
	return map[string]interface{}{
		"team_name":        name,
		"institution_name": "X University",
		"email":            "team@example.com",
		"leader": map[string]string{
			"full_name":  "Alice Leader",
			"student_id": "202600",
			"email":      "alice@example.com",
		},
		"members": members,
	}
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
