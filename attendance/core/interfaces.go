package core

import (
	"context"

	"axiapac.com/attendance/attendance/model"
)

// SheetClient reads and writes the attendance sheet. Row and column numbers
// are 1-indexed like the sheet itself; column indexes use the Col* constants.
type SheetClient interface {
	// ReadRows returns every row including the header. Trailing empty cells may be omitted.
	ReadRows(ctx context.Context) ([][]string, error)
	// WriteRows overwrites rows starting at startRow.
	WriteRows(ctx context.Context, startRow int, rows [][]string) error
	// WriteColumn writes values top-down into column col starting at startRow.
	WriteColumn(ctx context.Context, col int, startRow int, values []string) error
	// URL is a human-facing link to the sheet.
	URL() string
}

// RecordStore persists attendance records.
type RecordStore interface {
	SyncedRowNumbers(ctx context.Context, source string) ([]int, error)
	// InsertRecords inserts records, ignoring rows whose (source, row number) already exists.
	InsertRecords(ctx context.Context, records []model.AttendanceRecord) error
	// RecordsBetween returns records dated within [start, end] inclusive,
	// ordered by date descending then employee id ascending.
	RecordsBetween(ctx context.Context, start, end string) ([]model.AttendanceRecord, error)
	DeleteAll(ctx context.Context, source string) error
}

// RunLogger is implemented by stores that keep a sync history.
type RunLogger interface {
	LogRun(ctx context.Context, run *model.SyncRun) error
}

// Notifier delivers run summaries to people.
type Notifier interface {
	Info(ctx context.Context, message string) error
	Error(ctx context.Context, message string) error
}
