package Models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotKey is the single key the full dataset snapshot lives under.
const SnapshotKey = "mh_db"

// StoredSnapshot holds the JSON-serialized full snapshot.
type StoredSnapshot struct {
	Key  string         `gorm:"primaryKey;size:64"`
	Data datatypes.JSON `gorm:"not null"`
}

// CounterEntry holds one year-scoped local invoice counter as a
// decimal string.
type CounterEntry struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:32;not null"`
}

// CounterKey returns the local counter key for a year.
func CounterKey(year int) string {
	return fmt.Sprintf("mh_inv_counter_%d", year)
}

// LocalStore is the durable offline mirror of the dataset. It is the
// source of truth while disconnected.
type LocalStore struct {
	db *gorm.DB
}

func NewLocalStore(db *gorm.DB) *LocalStore {
	return &LocalStore{db: db}
}

// SaveSnapshot persists the entire snapshot under the single key.
func (s *LocalStore) SaveSnapshot(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}
	row := StoredSnapshot{Key: SnapshotKey, Data: datatypes.JSON(data)}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data"}),
	}).Create(&row).Error
}

// LoadSnapshot returns the last persisted snapshot, or nil when none
// has ever been written.
func (s *LocalStore) LoadSnapshot() (*Snapshot, error) {
	var row StoredSnapshot
	err := s.db.First(&row, "key = ?", SnapshotKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot()
	if err := json.Unmarshal(row.Data, snap); err != nil {
		return nil, fmt.Errorf("parse stored snapshot: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

// ClearSnapshot wipes the stored snapshot (hard reset).
func (s *LocalStore) ClearSnapshot() error {
	return s.db.Delete(&StoredSnapshot{}, "key = ?", SnapshotKey).Error
}

// Counter returns the current value of the year's local invoice
// counter, zero when absent.
func (s *LocalStore) Counter(year int) (int, error) {
	var row CounterEntry
	err := s.db.First(&row, "key = ?", CounterKey(year)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(row.Value)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter %s: %w", row.Key, err)
	}
	return n, nil
}

// IncrementCounter bumps the year's local counter and returns the new
// value. The read-increment-write is not atomic across devices; two
// offline devices can hand out the same number. Known gap.
func (s *LocalStore) IncrementCounter(year int) (int, error) {
	current, err := s.Counter(year)
	if err != nil {
		return 0, err
	}
	next := current + 1
	row := CounterEntry{Key: CounterKey(year), Value: strconv.Itoa(next)}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
