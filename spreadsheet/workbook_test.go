package spreadsheet

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"axiapac.com/attendance/attendance/core"
	"axiapac.com/attendance/attendance/model"
	"axiapac.com/attendance/infrastructure/filesystem"
	"axiapac.com/attendance/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cell(rows [][]string, row, col int) string {
	if row > len(rows) {
		return ""
	}
	return utils.PadRight(rows[row-1], core.ColumnCount)[col]
}

func TestWorkbookEmpty(t *testing.T) {
	wb := NewWorkbook(filesystem.LocalFileSystem{Root: t.TempDir()}, "attendance.xlsx", "Attendance", "file://attendance.xlsx")

	rows, err := wb.ReadRows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, "file://attendance.xlsx", wb.URL())
}

func TestWorkbookWrites(t *testing.T) {
	ctx := context.Background()
	wb := NewWorkbook(filesystem.LocalFileSystem{Root: t.TempDir()}, "book.xlsx", "Sheet1", "")

	require.NoError(t, wb.WriteRows(ctx, 1, [][]string{
		core.SheetHeader,
		{"2024-01-15", "E1", "Ann", "", "08:00:00"},
		{"2024-01-16", "E2", "Bob"},
	}))
	require.NoError(t, wb.WriteColumn(ctx, core.ColStatus, 2, []string{"saved", "invalid"}))

	rows, err := wb.ReadRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, core.SheetHeader, rows[0])
	assert.Equal(t, "08:00:00", cell(rows, 2, core.ColFirstIn))
	assert.Equal(t, "saved", cell(rows, 2, core.ColStatus))
	assert.Equal(t, "Bob", cell(rows, 3, core.ColEmployeeName))
	assert.Equal(t, "invalid", cell(rows, 3, core.ColStatus))
}

type sliceStore struct {
	records []model.AttendanceRecord
}

func (s *sliceStore) SyncedRowNumbers(ctx context.Context, source string) ([]int, error) {
	var out []int
	for _, r := range s.records {
		out = append(out, r.SheetRowNumber)
	}
	return out, nil
}

func (s *sliceStore) InsertRecords(ctx context.Context, records []model.AttendanceRecord) error {
	s.records = append(s.records, records...)
	return nil
}

func (s *sliceStore) RecordsBetween(ctx context.Context, start, end string) ([]model.AttendanceRecord, error) {
	var out []model.AttendanceRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if r := s.records[i]; r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *sliceStore) DeleteAll(ctx context.Context, source string) error {
	s.records = nil
	return nil
}

func TestWorkbookRoundTrip(t *testing.T) {
	ctx := context.Background()
	files := filesystem.LocalFileSystem{Root: t.TempDir()}
	quiet := log.New(io.Discard, "", 0)

	source := NewWorkbook(files, "roster.xlsx", "Roster", "")
	require.NoError(t, source.WriteRows(ctx, 1, [][]string{
		core.SheetHeader,
		{"16 Dec 25", "E1", "Ann", "ann@example.com", "7:58 am", "17:02"},
		{"17 Dec 25", "", "Nobody"},
		{"17 Dec 25", "E2", "Bob", "", "9:51 pm", "-"},
	}))

	store := &sliceStore{}
	r := core.NewReconciler(source, store, core.ReconcilerOptions{Source: "roster"}, core.WithLogger(quiet))
	result, err := r.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewRecords)
	assert.Equal(t, 1, result.InvalidRows)

	rows, err := source.ReadRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "saved", cell(rows, 2, core.ColStatus))
	assert.Equal(t, "invalid", cell(rows, 3, core.ColStatus))
	assert.Equal(t, "saved", cell(rows, 4, core.ColStatus))

	target := NewWorkbook(files, "export.xlsx", "Export", "")
	now := func() time.Time { return time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC) }
	e := core.NewExporter(target, store, "roster", core.WithExportLogger(quiet), core.WithExportClock(now))
	out, err := e.Export(ctx, "2025-12-01", "")
	require.NoError(t, err)
	assert.Equal(t, 2, out.RecordsSynced)

	exported, err := target.ReadRows(ctx)
	require.NoError(t, err)
	require.Len(t, exported, 3)
	assert.Equal(t, "2025-12-17", cell(exported, 2, core.ColDate))
	assert.Equal(t, "21:51:00", cell(exported, 2, core.ColFirstIn))
	assert.Equal(t, "exported", cell(exported, 3, core.ColStatus))
}
