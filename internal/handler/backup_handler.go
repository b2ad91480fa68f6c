package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/middleware"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/service"
	"github.com/rs/zerolog/log"
)

// BackupHandler handles backup and restore HTTP requests
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// BackupResponse summarizes a snapshot without its payload
type BackupResponse struct {
	FileName   string    `json:"fileName"`
	Loans      int       `json:"loans"`
	Investors  int       `json:"investors"`
	BackedUpAt time.Time `json:"backedUpAt"`
	UserEmail  string    `json:"userEmail"`
}

func backupResponse(doc *domain.BackupDocument) BackupResponse {
	return BackupResponse{
		FileName:   doc.FileName,
		Loans:      len(doc.Loans),
		Investors:  len(doc.Investors),
		BackedUpAt: doc.BackedUpAt,
		UserEmail:  doc.UserEmail,
	}
}

// CreateBackup handles POST /api/v1/backup
func (h *BackupHandler) CreateBackup(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	doc, err := h.backupService.CreateBackup(c.Request().Context(), user, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Backup failed")
		return NewInternalError(c, "Backup failed")
	}

	return c.JSON(http.StatusCreated, backupResponse(doc))
}

// ListBackups handles GET /api/v1/backup
func (h *BackupHandler) ListBackups(c echo.Context) error {
	backups, err := h.backupService.ListBackups(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("List backups failed")
		return NewInternalError(c, "List backups failed")
	}
	return c.JSON(http.StatusOK, backups)
}

// RestoreRequest represents the restore request body
type RestoreRequest struct {
	FileName string `json:"fileName"`
}

// Restore handles POST /api/v1/backup/restore
func (h *BackupHandler) Restore(c echo.Context) error {
	var req RestoreRequest
	if err := c.Bind(&req); err != nil || req.FileName == "" {
		return NewValidationError(c, "Invalid request body", []ValidationError{
			{Field: "fileName", Message: "Snapshot file name is required"},
		})
	}

	doc, err := h.backupService.Restore(c.Request().Context(), req.FileName)
	if err != nil {
		if errors.Is(err, domain.ErrBackupNotFound) {
			return NewNotFoundError(c, "Backup not found")
		}
		if errors.Is(err, domain.ErrBackupEmpty) {
			return NewValidationError(c, "Backup contains no loans or investors", nil)
		}
		log.Error().Err(err).Str("file_name", req.FileName).Msg("Restore failed")
		return NewInternalError(c, "Restore failed")
	}

	return c.JSON(http.StatusOK, backupResponse(doc))
}

// EmailBackup handles POST /api/v1/backup/email
func (h *BackupHandler) EmailBackup(c echo.Context) error {
	user := middleware.GetUser(c)
	if user == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	doc, err := h.backupService.EmailBackup(c.Request().Context(), user, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Email backup failed")
		return NewInternalError(c, "Email backup failed")
	}

	return c.JSON(http.StatusCreated, backupResponse(doc))
}
