package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
)

// FailedStore persists jobs that exhausted their retries.
type FailedStore interface {
	SaveFailed(ctx context.Context, job FailedJob) error
}

// FailedJobRecord is the row written by GormFailedStore.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null"`
}

func (FailedJobRecord) TableName() string { return "crm_failed_jobs" }

// GormFailedStore writes failed jobs to crm_failed_jobs.
type GormFailedStore struct {
	db *gorm.DB
}

// NewGormFailedStore creates the table if needed.
func NewGormFailedStore(db *gorm.DB) (*GormFailedStore, error) {
	if err := db.AutoMigrate(&FailedJobRecord{}); err != nil {
		return nil, fmt.Errorf("queue: migrate failed jobs: %w", err)
	}
	return &GormFailedStore{db: db}, nil
}

func (s *GormFailedStore) SaveFailed(ctx context.Context, job FailedJob) error {
	payload, err := json.Marshal(job.Job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	msg := ""
	if job.Err != nil {
		msg = job.Err.Error()
	}
	return s.db.WithContext(ctx).Create(&FailedJobRecord{
		JobType:  job.Name,
		Payload:  string(payload),
		Error:    msg,
		Attempts: job.Attempts,
		FailedAt: job.FailedAt,
	}).Error
}

// Failed lists persisted failures, newest first.
func (s *GormFailedStore) Failed(ctx context.Context) ([]FailedJobRecord, error) {
	var rows []FailedJobRecord
	err := s.db.WithContext(ctx).Order("id DESC").Find(&rows).Error
	return rows, err
}

// persistFailed always keeps the failure in memory and also writes it to the
// store when one is configured.
func (m *Manager) persistFailed(ctx context.Context, job FailedJob) {
	m.mu.Lock()
	m.failed = append(m.failed, job)
	store := m.store
	m.mu.Unlock()

	if store == nil {
		return
	}
	if err := store.SaveFailed(context.WithoutCancel(ctx), job); err != nil {
		logger.Error("queue: persist failed job", "type", job.Name, "error", err)
	}
}
