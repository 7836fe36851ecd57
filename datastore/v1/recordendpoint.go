package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"axiapac.com/attendance/attendance/model"
)

const defaultPageSize = 1000

type RecordEndpoint struct {
	transport *Transport
	table     string
	pageSize  int
}

func (this *RecordEndpoint) path() string {
	return "/rest/v1/" + this.table
}

// page fetches rows in pages until the server returns fewer than requested.
func (this *RecordEndpoint) page(ctx context.Context, query url.Values, each func(data []byte) (int, error)) error {
	for offset := 0; ; offset += this.pageSize {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("limit", strconv.Itoa(this.pageSize))
		q.Set("offset", strconv.Itoa(offset))

		resp, err := this.transport.Get(ctx, this.path(), q)
		if err != nil {
			return err
		}
		n, err := each(resp.Data)
		if err != nil {
			return err
		}
		if n < this.pageSize {
			return nil
		}
	}
}

func (this *RecordEndpoint) SyncedRowNumbers(ctx context.Context, source string) ([]int, error) {
	query := url.Values{}
	query.Set("select", "sheet_row_number")
	query.Set("sheet_source", "eq."+source)
	query.Set("order", "sheet_row_number.asc")

	var numbers []int
	err := this.page(ctx, query, func(data []byte) (int, error) {
		var rows []struct {
			SheetRowNumber int `json:"sheet_row_number"`
		}
		if err := json.Unmarshal(data, &rows); err != nil {
			return 0, err
		}
		for _, r := range rows {
			numbers = append(numbers, r.SheetRowNumber)
		}
		return len(rows), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load synced row numbers: %w", err)
	}
	return numbers, nil
}

// recordInsert omits id and created_at so the server assigns them.
type recordInsert struct {
	Date           string  `json:"date"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	EmailID        string  `json:"email_id"`
	FirstIn        *string `json:"first_in"`
	LastOut        *string `json:"last_out"`
	LateLogin      *string `json:"late_login"`
	ShiftName      string  `json:"shift_name"`
	SheetSource    string  `json:"sheet_source"`
	SheetRowNumber int     `json:"sheet_row_number"`
	SheetSyncedAt  string  `json:"sheet_synced_at"`
}

func (this *RecordEndpoint) InsertRecords(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	payload := make([]recordInsert, len(records))
	for i, r := range records {
		payload[i] = recordInsert{
			Date:           r.Date,
			EmployeeID:     r.EmployeeID,
			EmployeeName:   r.EmployeeName,
			EmailID:        r.EmailID,
			FirstIn:        r.FirstIn,
			LastOut:        r.LastOut,
			LateLogin:      r.LateLogin,
			ShiftName:      r.ShiftName,
			SheetSource:    r.SheetSource,
			SheetRowNumber: r.SheetRowNumber,
			SheetSyncedAt:  r.SheetSyncedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	query := url.Values{}
	query.Set("on_conflict", "sheet_source,sheet_row_number")
	_, err := this.transport.Post(ctx, this.path(), payload, query, map[string]string{
		"Prefer": "resolution=ignore-duplicates,return=minimal",
	})
	if err != nil {
		return fmt.Errorf("failed to insert %d records: %w", len(records), err)
	}
	return nil
}

// recordExport holds the columns written back to the sheet. Bookkeeping
// columns such as sheet_synced_at are left out so their server-side format
// never matters here.
type recordExport struct {
	Date         string  `json:"date"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	EmailID      string  `json:"email_id"`
	FirstIn      *string `json:"first_in"`
	LastOut      *string `json:"last_out"`
	LateLogin    *string `json:"late_login"`
	ShiftName    string  `json:"shift_name"`
}

const recordExportColumns = "date,employee_id,employee_name,email_id,first_in,last_out,late_login,shift_name"

func (this *RecordEndpoint) RecordsBetween(ctx context.Context, start, end string) ([]model.AttendanceRecord, error) {
	query := url.Values{}
	query.Set("select", recordExportColumns)
	query.Add("date", "gte."+start)
	query.Add("date", "lte."+end)
	query.Set("order", "date.desc,employee_id.asc")

	var records []model.AttendanceRecord
	err := this.page(ctx, query, func(data []byte) (int, error) {
		var page []recordExport
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		for _, r := range page {
			records = append(records, model.AttendanceRecord{
				Date:         r.Date,
				EmployeeID:   r.EmployeeID,
				EmployeeName: r.EmployeeName,
				EmailID:      r.EmailID,
				FirstIn:      r.FirstIn,
				LastOut:      r.LastOut,
				LateLogin:    r.LateLogin,
				ShiftName:    r.ShiftName,
			})
		}
		return len(page), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

func (this *RecordEndpoint) DeleteAll(ctx context.Context, source string) error {
	query := url.Values{}
	query.Set("sheet_source", "eq."+source)
	if _, err := this.transport.Delete(ctx, this.path(), query); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

type RunEndpoint struct {
	transport *Transport
	table     string
}

func (this *RunEndpoint) Create(ctx context.Context, run *model.SyncRun) error {
	if this.table == "" {
		return nil
	}
	_, err := this.transport.Post(ctx, "/rest/v1/"+this.table, run, nil, map[string]string{"Prefer": "return=minimal"})
	return err
}
