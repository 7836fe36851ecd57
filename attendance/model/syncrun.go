package model

import (
	"time"

	"gorm.io/datatypes"
)

type SyncDirection string

const (
	SyncInbound  SyncDirection = "inbound"
	SyncOutbound SyncDirection = "outbound"
)

type SyncRunStatus string

const (
	SyncRunSuccess SyncRunStatus = "success"
	SyncRunPartial SyncRunStatus = "partial"
	SyncRunFailed  SyncRunStatus = "failed"
)

// SyncRun is the audit entry written once per inbound or outbound invocation.
type SyncRun struct {
	ID          string         `gorm:"primaryKey;type:varchar(36);column:id" json:"id"`
	Direction   SyncDirection  `gorm:"column:direction;type:varchar(16);not null;index" json:"direction"`
	Status      SyncRunStatus  `gorm:"column:status;type:varchar(16);not null" json:"status"`
	SheetSource string         `gorm:"column:sheet_source;type:varchar(128);not null;default:''" json:"sheet_source"`
	StartedAt   time.Time      `gorm:"column:started_at;type:timestamp;not null" json:"started_at"`
	DurationMs  int64          `gorm:"column:duration_ms;not null" json:"duration_ms"`
	Message     string         `gorm:"column:message;type:text" json:"message"`
	Details     datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
}

func (SyncRun) TableName() string {
	return "attendance_sync_runs"
}
