package core

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"axiapac.com/attendance/attendance/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 12, 17, 9, 30, 0, 0, time.UTC)

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func newTestReconciler(sheet *memSheet, store *memStore, options ...ReconcilerOption) *Reconciler {
	opts := ReconcilerOptions{
		Source: "roster",
		Batch:  BatchOptions{Size: 2, Pause: DefaultBatchPause, Sleep: noSleep},
	}
	options = append([]ReconcilerOption{WithLogger(discardLogger), WithClock(func() time.Time { return fixedNow })}, options...)
	return NewReconciler(sheet, store, opts, options...)
}

func sheetWith(rows ...[]string) *memSheet {
	return &memSheet{rows: append([][]string{SheetHeader}, rows...)}
}

func syncedRecord(row int) model.AttendanceRecord {
	return model.AttendanceRecord{Date: "2025-12-15", EmployeeID: "E0", EmployeeName: "Old", SheetSource: "roster", SheetRowNumber: row}
}

func TestPlanInbound(t *testing.T) {
	t.Run("Header only", func(t *testing.T) {
		plan := PlanInbound([][]string{SheetHeader}, nil, "", fixedNow)
		assert.Equal(t, 0, plan.TotalRows)
		assert.Empty(t, plan.Records)
		assert.Empty(t, plan.Statuses)
	})

	t.Run("Empty sheet", func(t *testing.T) {
		plan := PlanInbound(nil, nil, "", fixedNow)
		assert.Equal(t, 0, plan.TotalRows)
	})

	t.Run("Mixed rows", func(t *testing.T) {
		rows := [][]string{
			SheetHeader,
			{"16 Dec 25", "E1", "Ann"},
			{"16 Dec 25", "", "Nobody"},
			{"16 Dec 25", "E3", "Cat"},
		}
		plan := PlanInbound(rows, map[int]struct{}{2: {}}, "roster", fixedNow)
		assert.Equal(t, 3, plan.TotalRows)
		assert.Equal(t, 1, plan.AlreadySynced)
		require.Len(t, plan.Records, 1)
		assert.Equal(t, 4, plan.Records[0].SheetRowNumber)
		assert.Contains(t, plan.Invalid, 3)
		assert.Equal(t, []string{StatusSaved, StatusInvalid, ""}, plan.Statuses)
	})
}

func TestSyncInsertsOnlyNewRows(t *testing.T) {
	sheet := sheetWith(
		[]string{"15 Dec 25", "E1", "Ann", "", "8:00 am", "4:00 pm"},
		[]string{"15 Dec 25", "E2", "Bob"},
		[]string{"16 Dec 25", "E3", "Cat", "cat@example.com", "7:45 am", "-", "0:05:00", "Day"},
	)
	store := &memStore{records: []model.AttendanceRecord{syncedRecord(2), syncedRecord(3)}}

	result, err := newTestReconciler(sheet, store).Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.AlreadySynced)
	assert.Equal(t, 1, result.NewRecords)
	assert.Equal(t, "Synced 1 new records", result.Message())

	require.Len(t, store.records, 3)
	added := store.records[2]
	assert.Equal(t, 4, added.SheetRowNumber)
	assert.Equal(t, "2025-12-16", added.Date)
	assert.Equal(t, "07:45:00", *added.FirstIn)
	assert.Nil(t, added.LastOut)
	assert.Equal(t, "00:05:00", *added.LateLogin)
	assert.Equal(t, fixedNow, added.SheetSyncedAt)

	for row := 2; row <= 4; row++ {
		assert.Equal(t, StatusSaved, sheet.status(row), "row %d", row)
	}
	assert.Equal(t, 1, sheet.writes)

	require.Len(t, store.runs, 1)
	assert.Equal(t, model.SyncInbound, store.runs[0].Direction)
	assert.Equal(t, model.SyncRunSuccess, store.runs[0].Status)
	assert.Equal(t, result.RunID, store.runs[0].ID)
}

func TestSyncIsIdempotent(t *testing.T) {
	sheet := sheetWith(
		[]string{"2025-12-16", "E1", "Ann"},
		[]string{"2025-12-16", "E2", "Bob"},
		[]string{"2025-12-16", "E3", "Cat"},
	)
	store := &memStore{}
	r := newTestReconciler(sheet, store)

	first, err := r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.NewRecords)

	second, err := r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.NewRecords)
	assert.Equal(t, 3, second.AlreadySynced)
	assert.Equal(t, "No new records to sync", second.Message())
	assert.Len(t, store.records, 3)
}

func TestSyncSkipsInvalidRows(t *testing.T) {
	sheet := sheetWith(
		[]string{"2025-12-16", "", "Ann"},
		[]string{"2025-12-16", "E2", "Bob"},
		[]string{"not a date", "E3", "Cat"},
	)
	store := &memStore{}

	result, err := newTestReconciler(sheet, store).Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.NewRecords)
	assert.Equal(t, 2, result.InvalidRows)
	require.Len(t, store.records, 1)
	assert.Equal(t, 3, store.records[0].SheetRowNumber)
	assert.Equal(t, StatusInvalid, sheet.status(2))
	assert.Equal(t, StatusSaved, sheet.status(3))
	assert.Equal(t, StatusInvalid, sheet.status(4))
}

func TestSyncLogsInvalidRowsInSheetOrder(t *testing.T) {
	sheet := sheetWith(
		[]string{"2025-12-16", "", "Ann"},
		[]string{"2025-12-16", "E2", "Bob"},
		[]string{"not a date", "E3", "Cat"},
		[]string{"", "E4", "Dan"},
		[]string{"2025-12-16", "", "Eve"},
	)
	var buf bytes.Buffer
	r := newTestReconciler(sheet, &memStore{}, WithLogger(log.New(&buf, "", 0)))

	_, err := r.Sync(context.Background())
	require.NoError(t, err)

	var skipped []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Skipping row") {
			skipped = append(skipped, strings.SplitN(line, ":", 2)[0])
		}
	}
	assert.Equal(t, []string{
		"[WARN] Skipping row 2",
		"[WARN] Skipping row 4",
		"[WARN] Skipping row 5",
		"[WARN] Skipping row 6",
	}, skipped)
}

func TestInboundPlanInvalidRows(t *testing.T) {
	plan := InboundPlan{Invalid: map[int]error{9: errors.New("x"), 2: errors.New("y"), 5: errors.New("z")}}
	assert.Equal(t, []int{2, 5, 9}, plan.InvalidRows())
	assert.Empty(t, InboundPlan{}.InvalidRows())
}

func TestSyncHeaderOnly(t *testing.T) {
	sheet := sheetWith()
	store := &memStore{}

	result, err := newTestReconciler(sheet, store).Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalRows)
	assert.Equal(t, 0, store.inserts)
	assert.Equal(t, 0, sheet.writes)
}

func TestSyncBatchFailureIsPartial(t *testing.T) {
	sheet := sheetWith(
		[]string{"2025-12-16", "E1", "Ann"},
		[]string{"2025-12-16", "E2", "Bob"},
		[]string{"2025-12-16", "E3", "Cat"},
		[]string{"2025-12-16", "E4", "Dan"},
		[]string{"2025-12-16", "E5", "Eve"},
	)
	store := &memStore{failOn: func(batch []model.AttendanceRecord) error {
		if batch[0].SheetRowNumber == 4 {
			return errors.New("lock wait timeout")
		}
		return nil
	}}
	notifier := &memNotifier{}

	result, err := newTestReconciler(sheet, store, WithNotifier(notifier)).Sync(context.Background())

	require.Error(t, err)
	assert.Equal(t, CodePartial, CodeOf(err))
	assert.Equal(t, 3, result.NewRecords)
	assert.Equal(t, 2, result.FailedRows)
	assert.Equal(t, 1, result.FailedBatches)
	assert.Len(t, store.records, 3)

	assert.Equal(t, StatusSaved, sheet.status(2))
	assert.Equal(t, StatusSaved, sheet.status(3))
	assert.Equal(t, StatusFailed, sheet.status(4))
	assert.Equal(t, StatusFailed, sheet.status(5))
	assert.Equal(t, StatusSaved, sheet.status(6))

	require.Len(t, store.runs, 1)
	assert.Equal(t, model.SyncRunPartial, store.runs[0].Status)
	assert.Len(t, notifier.errors, 1)

	// Failed rows are retried by the next run.
	store.failOn = nil
	retry, err := newTestReconciler(sheet, store).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, retry.NewRecords)
	assert.Equal(t, StatusSaved, sheet.status(4))
}

func TestSyncReadFailure(t *testing.T) {
	sheet := &memSheet{readErr: errors.New("403 forbidden")}
	store := &memStore{}
	notifier := &memNotifier{}

	_, err := newTestReconciler(sheet, store, WithNotifier(notifier)).Sync(context.Background())

	require.Error(t, err)
	assert.Equal(t, CodeUpstream, CodeOf(err))
	assert.Contains(t, err.Error(), "403 forbidden")
	assert.Equal(t, 0, store.inserts)
	require.Len(t, store.runs, 1)
	assert.Equal(t, model.SyncRunFailed, store.runs[0].Status)
	assert.Len(t, notifier.errors, 1)
}

func TestSyncStoreFailure(t *testing.T) {
	sheet := sheetWith([]string{"2025-12-16", "E1", "Ann"})
	store := &memStore{syncedErr: errors.New("connection refused")}

	_, err := newTestReconciler(sheet, store).Sync(context.Background())

	assert.Equal(t, CodeUpstream, CodeOf(err))
	assert.Equal(t, 0, sheet.writes)
}

func TestReimport(t *testing.T) {
	sheet := sheetWith(
		[]string{"2025-12-16", "E1", "Ann"},
		[]string{"2025-12-16", "E2", "Bob"},
	)
	other := model.AttendanceRecord{Date: "2025-12-01", EmployeeID: "X", EmployeeName: "Other", SheetSource: "payroll", SheetRowNumber: 2}
	store := &memStore{records: []model.AttendanceRecord{syncedRecord(2), syncedRecord(3), other}}

	result, err := newTestReconciler(sheet, store).Reimport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, store.deleted)
	assert.Equal(t, 2, result.NewRecords)
	assert.Equal(t, 0, result.AlreadySynced)
	require.Len(t, store.records, 3)
	assert.Equal(t, "payroll", store.records[0].SheetSource)
	assert.Equal(t, "Ann", store.records[1].EmployeeName)
	assert.Equal(t, "Bob", store.records[2].EmployeeName)
}
