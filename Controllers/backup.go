package Controllers

import (
	"fmt"

	"Motorhouse/Sync"

	"github.com/gofiber/fiber/v2"
)

// BackupController handles full-dataset export and restore
type BackupController struct {
	Sync *Sync.Coordinator
}

// NewBackupController creates a new BackupController
func NewBackupController(c *Sync.Coordinator) *BackupController {
	return &BackupController{Sync: c}
}

// Export downloads the entire snapshot as a single JSON document
// GET /api/backup
func (bc *BackupController) Export(c *fiber.Ctx) error {
	data, filename, err := bc.Sync.ExportBackup()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to export backup",
			"message": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(data)
}

// Restore replaces local data from an uploaded backup and merges it
// into the cloud when online. Cloud records absent from the backup are
// never deleted; the confirm flag acknowledges exactly that.
// POST /api/backup/restore?confirm=true
func (bc *BackupController) Restore(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		msg := "This will overwrite your current local data (cloud will NOT be updated because you are offline). Pass confirm=true to continue."
		if bc.Sync.Online() {
			msg = "This will overwrite your current local data and merge changes into the cloud. Records present in the cloud but not in this backup will remain. Pass confirm=true to continue."
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Confirmation required",
			"message": msg,
		})
	}

	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid backup file",
			"message": "Request body is empty",
		})
	}

	if err := bc.Sync.RestoreBackup(c.Context(), body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Restore failed",
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Restored successfully",
	})
}

// HardReset wipes all local data. Cloud data is untouched.
// POST /api/backup/reset?confirm=true
func (bc *BackupController) HardReset(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Confirmation required",
			"message": "WARNING: this wipes all data from this device. Pass confirm=true to continue.",
		})
	}

	if err := bc.Sync.HardReset(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Reset failed",
			"message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Local data wiped"})
}
