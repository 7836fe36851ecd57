package v1

import (
	"context"

	"axiapac.com/attendance/attendance/model"
)

// Store adapts the client to the record store and run logger the sync
// engine expects.
type Store struct {
	client *DatastoreClient
}

func NewStore(client *DatastoreClient) *Store {
	return &Store{client: client}
}

func (s *Store) SyncedRowNumbers(ctx context.Context, source string) ([]int, error) {
	return s.client.Records.SyncedRowNumbers(ctx, source)
}

func (s *Store) InsertRecords(ctx context.Context, records []model.AttendanceRecord) error {
	return s.client.Records.InsertRecords(ctx, records)
}

func (s *Store) RecordsBetween(ctx context.Context, start, end string) ([]model.AttendanceRecord, error) {
	return s.client.Records.RecordsBetween(ctx, start, end)
}

func (s *Store) DeleteAll(ctx context.Context, source string) error {
	return s.client.Records.DeleteAll(ctx, source)
}

func (s *Store) LogRun(ctx context.Context, run *model.SyncRun) error {
	return s.client.Runs.Create(ctx, run)
}
