package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/config"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
)

// Snapshot sources
const (
	SourceSolve = "solve"
	SourceCheck = "check"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// ScheduleSnapshot represents the schedule_snapshots table
type ScheduleSnapshot struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ScheduleID string    `gorm:"index" json:"schedule_id"`
	Source     string    `gorm:"not null" json:"source"`
	Payload    string    `gorm:"type:text;not null" json:"-"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitDB opens postgres when a URL is configured, sqlite otherwise, and migrates the schema
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.URL != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		path := cfg.Path
		if path == "" {
			path = "dashboard.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&ScheduleSnapshot{}, &MasterUser{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveSnapshot stores a copy of a schedule returned by the backend
func SaveSnapshot(db *gorm.DB, schedule *models.Schedule, source, createdBy string) (*ScheduleSnapshot, error) {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	snap := ScheduleSnapshot{
		ID:         uuid.NewString(),
		ScheduleID: schedule.ScheduleID,
		Source:     source,
		Payload:    string(payload),
		CreatedBy:  createdBy,
	}
	if err := db.Create(&snap).Error; err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	return &snap, nil
}

// GetSnapshot loads a snapshot by id
func GetSnapshot(db *gorm.DB, id string) (*ScheduleSnapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSnapshotNotFound
	}
	var snap ScheduleSnapshot
	if err := db.Where("id = ?", id).First(&snap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return &snap, nil
}

// ListSnapshots returns the most recent snapshots first
func ListSnapshots(db *gorm.DB, limit int) ([]ScheduleSnapshot, error) {
	var snaps []ScheduleSnapshot
	err := db.Select("id", "schedule_id", "source", "created_by", "created_at").
		Order("created_at desc").Limit(limit).Find(&snaps).Error
	return snaps, err
}

// Schedule decodes the stored payload
func (s *ScheduleSnapshot) Schedule() (*models.Schedule, error) {
	var schedule models.Schedule
	if err := json.Unmarshal([]byte(s.Payload), &schedule); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.ID, err)
	}
	return &schedule, nil
}
