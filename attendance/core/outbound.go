package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"axiapac.com/attendance/attendance/model"
	"axiapac.com/attendance/utils"
	"github.com/google/uuid"
)

// Exporter writes persisted records for a date range into the sheet. It
// appends without checking what the sheet already holds, so repeated exports
// of the same range produce duplicate rows.
type Exporter struct {
	sheet    SheetClient
	store    RecordStore
	source   string
	logger   *log.Logger
	notifier Notifier
	now      func() time.Time
	location *time.Location
}

type ExporterOption func(*Exporter)

func WithExportLogger(l *log.Logger) ExporterOption {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithExportNotifier(n Notifier) ExporterOption {
	return func(e *Exporter) { e.notifier = n }
}

func WithExportClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) { e.now = now }
}

// WithLocation sets the zone used to decide what "today" is for the default range.
func WithLocation(loc *time.Location) ExporterOption {
	return func(e *Exporter) {
		if loc != nil {
			e.location = loc
		}
	}
}

func NewExporter(sheet SheetClient, store RecordStore, source string, options ...ExporterOption) *Exporter {
	e := &Exporter{
		sheet:    sheet,
		store:    store,
		source:   source,
		logger:   log.New(os.Stderr, "[export] ", log.LstdFlags),
		now:      time.Now,
		location: time.UTC,
	}
	for _, o := range options {
		o(e)
	}
	return e
}

type OutboundResult struct {
	RunID         string    `json:"-"`
	DateRange     DateRange `json:"dateRange"`
	RecordsSynced int       `json:"recordsSynced"`
	SheetURL      string    `json:"sheetUrl"`
}

func (r *OutboundResult) Message() string {
	return fmt.Sprintf("Exported %d records for %s", r.RecordsSynced, r.DateRange)
}

// BuildExportRows renders records as sheet rows carrying the export marker.
func BuildExportRows(records []model.AttendanceRecord) [][]string {
	return utils.Map(records, func(rec model.AttendanceRecord) []string {
		return RecordToRow(rec, StatusExported)
	})
}

// Export resolves the range from the raw start/end strings and copies the
// matching records into the sheet.
func (e *Exporter) Export(ctx context.Context, start, end string) (*OutboundResult, error) {
	started := e.now()
	result := &OutboundResult{
		RunID:     uuid.NewString(),
		DateRange: ResolveDateRange(start, end, started.In(e.location)),
		SheetURL:  e.sheet.URL(),
	}

	err := e.export(ctx, result)

	status := model.SyncRunSuccess
	message := result.Message()
	if err != nil {
		status = model.SyncRunFailed
		message = err.Error()
		notify(ctx, e.notifier, e.logger, true, fmt.Sprintf("Outbound attendance export failed: %s", message))
	}
	details, _ := json.Marshal(result)
	logRun(ctx, e.store, e.logger, &model.SyncRun{
		ID:          result.RunID,
		Direction:   model.SyncOutbound,
		Status:      status,
		SheetSource: e.source,
		StartedAt:   started,
		DurationMs:  e.now().Sub(started).Milliseconds(),
		Message:     message,
		Details:     details,
	})
	return result, err
}

func (e *Exporter) export(ctx context.Context, result *OutboundResult) error {
	e.logger.Printf("[INFO] Fetching records from %s", result.DateRange)
	records, err := e.store.RecordsBetween(ctx, result.DateRange.Start, result.DateRange.End)
	if err != nil {
		return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to fetch records: %w", err)}
	}
	rows := BuildExportRows(records)

	existing, err := e.sheet.ReadRows(ctx)
	if err != nil {
		return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to read sheet: %w", err)}
	}

	if len(existing) == 0 {
		e.logger.Printf("[INFO] Sheet is empty, writing header and %d rows", len(rows))
		out := append([][]string{SheetHeader}, rows...)
		if err := e.sheet.WriteRows(ctx, 1, out); err != nil {
			return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to write sheet: %w", err)}
		}
		result.RecordsSynced = len(rows)
		return nil
	}

	if dataRows := len(existing) - 1; dataRows > 0 {
		markers := make([]string, dataRows)
		for i := range markers {
			markers[i] = StatusExported
		}
		if err := e.sheet.WriteColumn(ctx, ColStatus, FirstDataRow, markers); err != nil {
			return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to mark existing rows: %w", err)}
		}
	}

	if len(rows) > 0 {
		next := len(existing) + 1
		e.logger.Printf("[INFO] Appending %d rows at row %d", len(rows), next)
		if err := e.sheet.WriteRows(ctx, next, rows); err != nil {
			return &SyncError{Code: CodeUpstream, Err: fmt.Errorf("failed to append rows: %w", err)}
		}
	}
	result.RecordsSynced = len(rows)
	return nil
}
