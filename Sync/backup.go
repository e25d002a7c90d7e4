package Sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Motorhouse/Models"

	"github.com/google/uuid"
)

// BackupFilename follows the motorhouse_backup_<ISO-date>.json
// convention.
func BackupFilename(now time.Time) string {
	return "motorhouse_backup_" + now.Format("2006-01-02") + ".json"
}

// ExportBackup serializes the entire snapshot to a single JSON
// document and returns it with its download filename.
func (c *Coordinator) ExportBackup() ([]byte, string, error) {
	c.mu.RLock()
	data, err := json.Marshal(c.snapshot)
	c.mu.RUnlock()
	if err != nil {
		return nil, "", fmt.Errorf("serialize backup: %w", err)
	}
	return data, BackupFilename(time.Now()), nil
}

// RestoreBackup replaces the in-memory and local snapshot with the
// uploaded one and, when online, merge-upserts every record to the
// remote store sequentially. Records present remotely but absent from
// the backup are never deleted. A structurally invalid backup is
// rejected with no state change.
func (c *Coordinator) RestoreBackup(ctx context.Context, raw []byte) error {
	snap := Models.NewSnapshot()
	if err := json.Unmarshal(raw, snap); err != nil {
		return fmt.Errorf("invalid backup file: %w", err)
	}
	snap.Normalize()

	// Stamp envelope fields the same way a fresh save would, so
	// partial exports from older versions restore cleanly.
	now := time.Now().UTC().Format(time.RFC3339)
	for _, coll := range Models.Collections {
		recs, err := snap.Records(coll)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if rec.GetID() == "" {
				rec.SetID(uuid.NewString())
			}
			rec.StampSchemaVersion()
			if rec.GetCreatedAt() == "" {
				rec.SetCreatedAt(now)
			}
		}
	}

	c.mu.Lock()
	c.snapshot = snap
	persistErr := c.local.SaveSnapshot(snap)
	online := c.state == StateOnline
	c.mu.Unlock()

	if persistErr != nil {
		return fmt.Errorf("persist restored snapshot: %w", persistErr)
	}

	if online && c.remote != nil {
		for _, coll := range Models.Collections {
			recs, err := snap.Records(coll)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				doc, err := recordToDoc(rec)
				if err != nil {
					return fmt.Errorf("encode %s/%s: %w", coll, rec.GetID(), err)
				}
				if err := c.remote.Upsert(ctx, coll, rec.GetID(), doc); err != nil {
					return fmt.Errorf("cloud restore of %s/%s: %w", coll, rec.GetID(), err)
				}
			}
		}
	}

	c.notify("")
	return nil
}
