package store

import (
	"context"
	"fmt"

	"axiapac.com/attendance/attendance/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists attendance records and sync runs through gorm.
type GormStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the attendance tables and the unique
// (sheet_source, sheet_row_number) index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.AttendanceRecord{}, &model.SyncRun{}); err != nil {
		return fmt.Errorf("failed to migrate attendance tables: %w", err)
	}
	return nil
}

func (s *GormStore) SyncedRowNumbers(ctx context.Context, source string) ([]int, error) {
	var numbers []int
	err := s.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("sheet_source = ?", source).
		Order("sheet_row_number").
		Pluck("sheet_row_number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load synced row numbers: %w", err)
	}
	return numbers, nil
}

// InsertRecords inserts the batch in one statement. Rows whose
// (sheet_source, sheet_row_number) already exist are skipped, so a retried
// batch never duplicates.
func (s *GormStore) InsertRecords(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sheet_source"}, {Name: "sheet_row_number"}},
		DoNothing: true,
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("failed to insert %d records: %w", len(records), err)
	}
	return nil
}

// RecordsBetween returns records with start <= date <= end, newest date first
// and by employee id within a date.
func (s *GormStore) RecordsBetween(ctx context.Context, start, end string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date DESC").
		Order("employee_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

func (s *GormStore) DeleteAll(ctx context.Context, source string) error {
	res := s.db.WithContext(ctx).Where("sheet_source = ?", source).Delete(&model.AttendanceRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete records: %w", res.Error)
	}
	return nil
}

func (s *GormStore) LogRun(ctx context.Context, run *model.SyncRun) error {
	return s.db.WithContext(ctx).Create(run).Error
}

// RecentRuns lists the latest sync runs, optionally for one direction only.
func (s *GormStore) RecentRuns(ctx context.Context, direction model.SyncDirection, limit int) ([]model.SyncRun, error) {
	q := s.db.WithContext(ctx).Order("started_at DESC")
	if direction != "" {
		q = q.Where("direction = ?", direction)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []model.SyncRun
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}
