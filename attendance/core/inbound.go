package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"axiapac.com/attendance/attendance/model"
	"axiapac.com/attendance/utils"
	"github.com/google/uuid"
)

type ReconcilerOptions struct {
	// Source namespaces row numbers so two sheets can share one table.
	Source string
	Batch  BatchOptions
}

// Reconciler copies new sheet rows into the record store and writes a status
// marker for every data row back to the sheet. It keeps no state between
// runs; the set of already-synced rows is read from the store every time.
type Reconciler struct {
	sheet    SheetClient
	store    RecordStore
	opts     ReconcilerOptions
	logger   *log.Logger
	notifier Notifier
	now      func() time.Time
}

type ReconcilerOption func(*Reconciler)

func WithLogger(l *log.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithNotifier(n Notifier) ReconcilerOption {
	return func(r *Reconciler) { r.notifier = n }
}

func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) { r.now = now }
}

func NewReconciler(sheet SheetClient, store RecordStore, opts ReconcilerOptions, options ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		sheet:  sheet,
		store:  store,
		opts:   opts,
		logger: log.New(os.Stderr, "[sync] ", log.LstdFlags),
		now:    time.Now,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// InboundPlan is the pure outcome of comparing a sheet snapshot with the
// persisted row numbers, before anything is written.
type InboundPlan struct {
	TotalRows     int
	AlreadySynced int
	Records       []model.AttendanceRecord
	Invalid       map[int]error
	// Statuses holds one marker per data row, index 0 being sheet row 2.
	// Rows still to be inserted are left empty until their batch completes.
	Statuses []string
}

// PlanInbound decides which data rows are new and valid. rows includes the
// header at index 0. synced holds the row numbers already persisted.
func PlanInbound(rows [][]string, synced map[int]struct{}, source string, syncedAt time.Time) InboundPlan {
	plan := InboundPlan{Invalid: map[int]error{}}
	if len(rows) <= 1 {
		return plan
	}

	data := rows[1:]
	plan.TotalRows = len(data)
	plan.Statuses = make([]string, len(data))
	for i, cells := range data {
		rowNumber := i + FirstDataRow
		if _, ok := synced[rowNumber]; ok {
			plan.AlreadySynced++
			plan.Statuses[i] = StatusSaved
			continue
		}
		rec, err := ParseRow(cells, rowNumber, source, syncedAt)
		if err != nil {
			plan.Invalid[rowNumber] = err
			plan.Statuses[i] = StatusInvalid
			continue
		}
		plan.Records = append(plan.Records, rec)
	}
	return plan
}

// InvalidRows returns the numbers of the rows that failed validation, in
// sheet order.
func (p InboundPlan) InvalidRows() []int {
	rows := make([]int, 0, len(p.Invalid))
	for rowNumber := range p.Invalid {
		rows = append(rows, rowNumber)
	}
	sort.Ints(rows)
	return rows
}

type InboundResult struct {
	RunID         string `json:"-"`
	TotalRows     int    `json:"totalRows"`
	NewRecords    int    `json:"newRecords"`
	AlreadySynced int    `json:"alreadySynced"`
	InvalidRows   int    `json:"invalidRows,omitempty"`
	FailedRows    int    `json:"failedRows,omitempty"`
	FailedBatches int    `json:"failedBatches,omitempty"`
}

func (r *InboundResult) Message() string {
	if r.NewRecords == 0 && r.FailedRows == 0 {
		return "No new records to sync"
	}
	msg := fmt.Sprintf("Synced %d new records", r.NewRecords)
	if r.FailedRows > 0 {
		msg += fmt.Sprintf(", %d rows failed", r.FailedRows)
	}
	return msg
}

// Sync runs one inbound reconciliation. Row-level and batch-level failures
// are reported in the result; the returned error is reserved for failures
// that abort the run (sheet or store unreachable) and for PARTIAL outcomes.
func (r *Reconciler) Sync(ctx context.Context) (*InboundResult, error) {
	return r.run(ctx, false)
}

// Reimport clears every record of this source and syncs the whole sheet again.
func (r *Reconciler) Reimport(ctx context.Context) (*InboundResult, error) {
	return r.run(ctx, true)
}

func (r *Reconciler) run(ctx context.Context, reimport bool) (*InboundResult, error) {
	started := r.now()
	result := &InboundResult{RunID: uuid.NewString()}

	err := r.reconcile(ctx, reimport, result)
	r.finish(ctx, started, result, err)
	return result, err
}

func (r *Reconciler) reconcile(ctx context.Context, reimport bool, result *InboundResult) error {
	r.logger.Printf("[INFO] Reading sheet rows (run %s)", result.RunID)
	rows, err := r.sheet.ReadRows(ctx)
	if err != nil {
		return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to read sheet: %w", err)}
	}

	synced := map[int]struct{}{}
	if reimport {
		r.logger.Printf("[WARN] Reimport requested, clearing records for source %q", r.opts.Source)
		if err := r.store.DeleteAll(ctx, r.opts.Source); err != nil {
			return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to clear records: %w", err)}
		}
	} else {
		numbers, err := r.store.SyncedRowNumbers(ctx, r.opts.Source)
		if err != nil {
			return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to fetch synced rows: %w", err)}
		}
		synced = utils.ToSet(numbers)
	}

	plan := PlanInbound(rows, synced, r.opts.Source, r.now())
	result.TotalRows = plan.TotalRows
	result.AlreadySynced = plan.AlreadySynced
	result.InvalidRows = len(plan.Invalid)
	for _, rowNumber := range plan.InvalidRows() {
		r.logger.Printf("[WARN] Skipping row %d: %v", rowNumber, plan.Invalid[rowNumber])
	}
	r.logger.Printf("[INFO] %d data rows, %d already synced, %d new, %d invalid",
		plan.TotalRows, plan.AlreadySynced, len(plan.Records), len(plan.Invalid))

	batchErr := r.insert(ctx, plan, result)

	if len(plan.Statuses) > 0 {
		if err := r.sheet.WriteColumn(ctx, ColStatus, FirstDataRow, plan.Statuses); err != nil {
			return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to write status column: %w", err)}
		}
	}

	if batchErr != nil {
		return &SyncError{Code: CodeUpstream, Err: batchErr}
	}
	if result.FailedBatches > 0 {
		return NewSyncError(CodePartial, "%d batches (%d rows) failed to insert", result.FailedBatches, result.FailedRows)
	}
	return nil
}

// insert writes the planned records batch by batch and fills in the status
// of every inserted row.
func (r *Reconciler) insert(ctx context.Context, plan InboundPlan, result *InboundResult) error {
	if len(plan.Records) == 0 {
		return nil
	}

	results, err := RunBatches(ctx, plan.Records, r.opts.Batch, func(ctx context.Context, batch []model.AttendanceRecord) error {
		return r.store.InsertRecords(ctx, batch)
	})

	done := 0
	for _, br := range results {
		status := StatusSaved
		if br.Err != nil {
			status = StatusFailed
			result.FailedBatches++
			result.FailedRows += len(br.Items)
			r.logger.Printf("[ERROR] Batch %d (%d rows) failed after %d attempts: %v", br.Index+1, len(br.Items), br.Attempts, br.Err)
		} else {
			result.NewRecords += len(br.Items)
			r.logger.Printf("[SUCCESS] Batch %d inserted %d rows", br.Index+1, len(br.Items))
		}
		for _, rec := range br.Items {
			plan.Statuses[rec.SheetRowNumber-FirstDataRow] = status
		}
		done += len(br.Items)
	}

	// Rows in batches that never ran because of cancellation.
	for _, rec := range plan.Records[done:] {
		plan.Statuses[rec.SheetRowNumber-FirstDataRow] = StatusFailed
		result.FailedRows++
	}

	if err != nil {
		return fmt.Errorf("insert interrupted: %w", err)
	}
	return nil
}

func (r *Reconciler) finish(ctx context.Context, started time.Time, result *InboundResult, err error) {
	status := model.SyncRunSuccess
	message := result.Message()
	if err != nil {
		status = model.SyncRunFailed
		if CodeOf(err) == CodePartial {
			status = model.SyncRunPartial
		}
		message = err.Error()
	}

	details, _ := json.Marshal(result)
	logRun(ctx, r.store, r.logger, &model.SyncRun{
		ID:          result.RunID,
		Direction:   model.SyncInbound,
		Status:      status,
		SheetSource: r.opts.Source,
		StartedAt:   started,
		DurationMs:  r.now().Sub(started).Milliseconds(),
		Message:     message,
		Details:     details,
	})

	if err != nil {
		notify(ctx, r.notifier, r.logger, true, fmt.Sprintf("Inbound attendance sync %s: %s", status, message))
	}
}

func logRun(ctx context.Context, store RecordStore, logger *log.Logger, run *model.SyncRun) {
	rl, ok := store.(RunLogger)
	if !ok {
		return
	}
	if err := rl.LogRun(ctx, run); err != nil {
		logger.Printf("[WARN] Failed to record sync run %s: %v", run.ID, err)
	}
}

func notify(ctx context.Context, n Notifier, logger *log.Logger, failed bool, message string) {
	if n == nil {
		return
	}
	send := n.Info
	if failed {
		send = n.Error
	}
	if err := send(ctx, message); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("[WARN] Failed to send notification: %v", err)
	}
}
