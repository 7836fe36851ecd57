package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"axiapac.com/attendance/attendance/model"
	"axiapac.com/attendance/utils"
)

// Sheet column positions, fixed by the sheet layout.
const (
	ColDate = iota
	ColEmployeeID
	ColEmployeeName
	ColEmailID
	ColFirstIn
	ColLastOut
	ColLateLogin
	ColShiftName
	ColStatus

	ColumnCount
)

// FirstDataRow is the 1-indexed sheet row holding the first record; row 1 is the header.
const FirstDataRow = 2

var SheetHeader = []string{
	"Date",
	"Employee ID",
	"Employee Name",
	"Email ID",
	"First In",
	"Last Out",
	"Late Login",
	"Shift Name",
	"Status",
}

// Row status markers written back to the status column.
const (
	StatusSaved    = "saved"
	StatusInvalid  = "invalid"
	StatusFailed   = "failed"
	StatusExported = "exported"
)

var (
	ErrMissingDate         = errors.New("date is missing or not a valid date")
	ErrMissingEmployeeID   = errors.New("employee id is missing")
	ErrMissingEmployeeName = errors.New("employee name is missing")
)

// ParseRow maps one raw sheet row onto an AttendanceRecord. rowNumber is the
// 1-indexed sheet row the cells came from. A non-nil error means the row
// fails validation and must not be persisted.
func ParseRow(cells []string, rowNumber int, source string, syncedAt time.Time) (model.AttendanceRecord, error) {
	row := utils.PadRight(cells, ColumnCount)

	date := NormalizeDate(row[ColDate])
	if !IsCanonicalDate(date) {
		date = ""
	}
	rec := model.AttendanceRecord{
		Date:           date,
		EmployeeID:     strings.TrimSpace(row[ColEmployeeID]),
		EmployeeName:   strings.TrimSpace(row[ColEmployeeName]),
		EmailID:        strings.TrimSpace(row[ColEmailID]),
		FirstIn:        normalizeTimePtr(row[ColFirstIn]),
		LastOut:        normalizeTimePtr(row[ColLastOut]),
		LateLogin:      normalizeTimePtr(row[ColLateLogin]),
		ShiftName:      strings.TrimSpace(row[ColShiftName]),
		SheetSource:    source,
		SheetRowNumber: rowNumber,
		SheetSyncedAt:  syncedAt,
	}

	var errs []error
	if rec.Date == "" {
		errs = append(errs, ErrMissingDate)
	}
	if rec.EmployeeID == "" {
		errs = append(errs, ErrMissingEmployeeID)
	}
	if rec.EmployeeName == "" {
		errs = append(errs, ErrMissingEmployeeName)
	}
	if len(errs) > 0 {
		return rec, fmt.Errorf("row %d: %w", rowNumber, errors.Join(errs...))
	}
	return rec, nil
}

// RecordToRow renders a record as a full sheet row with the given status.
func RecordToRow(rec model.AttendanceRecord, status string) []string {
	return []string{
		rec.Date,
		rec.EmployeeID,
		rec.EmployeeName,
		rec.EmailID,
		utils.Deref(rec.FirstIn),
		utils.Deref(rec.LastOut),
		utils.Deref(rec.LateLogin),
		rec.ShiftName,
		status,
	}
}
