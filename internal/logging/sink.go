package logging

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"gorm.io/gorm"
)

// Sink persists system log entries.
type Sink interface {
	Write(ctx context.Context, entries []models.SystemLog) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// GormSink writes to the system_logs table.
type GormSink struct {
	db *gorm.DB
}

func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

func (s *GormSink) Write(ctx context.Context, entries []models.SystemLog) error {
	return s.db.WithContext(ctx).CreateInBatches(entries, batchSize).Error
}

func (s *GormSink) Prune(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("timestamp < ?", before).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
