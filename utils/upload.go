package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"civex/config"
)

// Common extension allowlists. Extension comes from the client filename;
// the stored name is always generated.
var (
	ImageExts    = []string{".jpg", ".jpeg", ".png"}
	DocumentExts = []string{".jpg", ".jpeg", ".png", ".pdf"}
)

const DefaultMaxFileSize = 5 << 20 // 5MB

// FileField describes one expected multipart file field.
type FileField struct {
	Name        string
	Required    bool
	MaxSize     int64 // bytes, DefaultMaxFileSize when zero
	AllowedExts []string
}

// InvalidUploadError marks rejections caused by the client's files
// (missing required field, bad extension, oversized).
type InvalidUploadError struct {
	Reason string
}

func (e *InvalidUploadError) Error() string { return e.Reason }

// StagedFile is one accepted upload sitting in the staging directory until
// the surrounding database write commits.
type StagedFile struct {
	Field      string
	TempPath   string
	FinalPath  string
	PublicPath string
}

// Intake tracks every file staged for a single request.
type Intake struct {
	Event string
	Files []StagedFile
}

// StageUploads validates and stores the request's files under the staging
// directory. On any rejection it discards whatever was already staged, so a
// non-nil error always means a clean disk.
func StageUploads(c *fiber.Ctx, event string, fields []FileField) (*Intake, error) {
	stagingDir := filepath.Join(config.AppConfig.UploadDir, "tmp")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	intake := &Intake{Event: event}
	for _, field := range fields {
		fh, err := c.FormFile(field.Name)
		if err != nil || fh == nil {
			if field.Required {
				intake.Discard()
				return nil, &InvalidUploadError{Reason: field.Name + " file is required"}
			}
			continue
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !extAllowed(ext, field.AllowedExts) {
			intake.Discard()
			return nil, &InvalidUploadError{
				Reason: fmt.Sprintf("%s must be one of %s", field.Name, strings.Join(field.AllowedExts, ", ")),
			}
		}

		maxSize := field.MaxSize
		if maxSize == 0 {
			maxSize = DefaultMaxFileSize
		}
		if fh.Size > maxSize {
			intake.Discard()
			return nil, &InvalidUploadError{
				Reason: fmt.Sprintf("%s exceeds the %dMB size limit", field.Name, maxSize>>20),
			}
		}

		name := generateFilename(field.Name, ext)
		tempPath := filepath.Join(stagingDir, name)
		if err := c.SaveFile(fh, tempPath); err != nil {
			intake.Discard()
			return nil, fmt.Errorf("failed to store %s: %w", field.Name, err)
		}

		intake.Files = append(intake.Files, StagedFile{
			Field:      field.Name,
			TempPath:   tempPath,
			FinalPath:  filepath.Join(config.AppConfig.UploadDir, event, name),
			PublicPath: "/uploads/" + event + "/" + name,
		})
	}

	return intake, nil
}

// Path returns the public path for a staged field, nil when the field was
// not provided.
func (in *Intake) Path(field string) *string {
	for i := range in.Files {
		if in.Files[i].Field == field {
			return &in.Files[i].PublicPath
		}
	}
	return nil
}

// PathString is Path for columns that are plain strings.
func (in *Intake) PathString(field string) string {
	if p := in.Path(field); p != nil {
		return *p
	}
	return ""
}

// Promote moves staged files into the event directory. Called only after
// the database write committed; move failures are logged, not escalated.
func (in *Intake) Promote() {
	if len(in.Files) == 0 {
		return
	}
	eventDir := filepath.Join(config.AppConfig.UploadDir, in.Event)
	if err := os.MkdirAll(eventDir, 0o755); err != nil {
		logrus.WithFields(logrus.Fields{"dir": eventDir, "error": err.Error()}).
			Error("failed to create event upload directory")
		return
	}
	for _, f := range in.Files {
		if err := os.Rename(f.TempPath, f.FinalPath); err != nil {
			logrus.WithFields(logrus.Fields{
				"field": f.Field,
				"path":  f.TempPath,
				"error": err.Error(),
			}).Error("failed to promote staged upload")
		}
	}
}

// Discard removes every staged file concurrently. Best effort: removal
// errors are logged and the first one is returned.
func (in *Intake) Discard() error {
	var g errgroup.Group
	for _, f := range in.Files {
		f := f
		g.Go(func() error {
			if err := os.Remove(f.TempPath); err != nil && !os.IsNotExist(err) {
				logrus.WithFields(logrus.Fields{
					"field": f.Field,
					"path":  f.TempPath,
					"error": err.Error(),
				}).Warn("failed to discard staged upload")
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	in.Files = nil
	return err
}

func generateFilename(field, ext string) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixNano(), hex.EncodeToString(buf), ext)
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
