package model

import "time"

// AttendanceRecord is one employee's attendance for one day, created from a
// single spreadsheet row. SheetSource+SheetRowNumber identify the origin row
// and are unique together.
type AttendanceRecord struct {
	ID             int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Date           string  `gorm:"column:date;type:varchar(10);not null;index" json:"date"`
	EmployeeID     string  `gorm:"column:employee_id;type:varchar(64);not null;index" json:"employee_id"`
	EmployeeName   string  `gorm:"column:employee_name;type:varchar(255);not null" json:"employee_name"`
	EmailID        string  `gorm:"column:email_id;type:varchar(255);not null;default:''" json:"email_id"`
	FirstIn        *string `gorm:"column:first_in;type:varchar(8)" json:"first_in"`
	LastOut        *string `gorm:"column:last_out;type:varchar(8)" json:"last_out"`
	LateLogin      *string `gorm:"column:late_login;type:varchar(8)" json:"late_login"`
	ShiftName      string  `gorm:"column:shift_name;type:varchar(255);not null;default:''" json:"shift_name"`
	SheetSource    string  `gorm:"column:sheet_source;type:varchar(128);not null;default:'';uniqueIndex:idx_sheet_row" json:"sheet_source"`
	SheetRowNumber int     `gorm:"column:sheet_row_number;not null;uniqueIndex:idx_sheet_row" json:"sheet_row_number"`

	SheetSyncedAt time.Time `gorm:"column:sheet_synced_at;type:timestamp;not null;<-:create" json:"sheet_synced_at"`
	CreatedAt     time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"-"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
