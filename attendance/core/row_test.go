package core

import (
	"errors"
	"testing"
	"time"

	"axiapac.com/attendance/attendance/model"
	"axiapac.com/attendance/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRow(t *testing.T) {
	syncedAt := time.Date(2025, 12, 17, 1, 0, 0, 0, time.UTC)

	t.Run("Full row", func(t *testing.T) {
		cells := []string{"16 Dec 25", " E001 ", "Jane Doe", "jane@example.com", "7:58 am", "17:02", "-", "Day", ""}
		rec, err := ParseRow(cells, 4, "roster", syncedAt)
		require.NoError(t, err)
		assert.Equal(t, "2025-12-16", rec.Date)
		assert.Equal(t, "E001", rec.EmployeeID)
		assert.Equal(t, "Jane Doe", rec.EmployeeName)
		assert.Equal(t, "jane@example.com", rec.EmailID)
		assert.Equal(t, utils.Ptr("07:58:00"), rec.FirstIn)
		assert.Equal(t, utils.Ptr("17:02:00"), rec.LastOut)
		assert.Nil(t, rec.LateLogin)
		assert.Equal(t, "Day", rec.ShiftName)
		assert.Equal(t, "roster", rec.SheetSource)
		assert.Equal(t, 4, rec.SheetRowNumber)
		assert.Equal(t, syncedAt, rec.SheetSyncedAt)
	})

	t.Run("Short row is padded", func(t *testing.T) {
		rec, err := ParseRow([]string{"2025-01-02", "E2", "Bob"}, 2, "", syncedAt)
		require.NoError(t, err)
		assert.Equal(t, "", rec.EmailID)
		assert.Nil(t, rec.FirstIn)
		assert.Equal(t, "", rec.ShiftName)
	})

	t.Run("Missing employee id", func(t *testing.T) {
		_, err := ParseRow([]string{"2025-01-02", "  ", "Bob"}, 7, "", syncedAt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingEmployeeID))
		assert.Contains(t, err.Error(), "row 7")
	})

	t.Run("Unparseable date", func(t *testing.T) {
		rec, err := ParseRow([]string{"someday", "E1", "Bob"}, 3, "", syncedAt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingDate))
		assert.Equal(t, "", rec.Date)
	})

	t.Run("Impossible date", func(t *testing.T) {
		_, err := ParseRow([]string{"2025-02-30", "E1", "Bob"}, 3, "", syncedAt)
		assert.True(t, errors.Is(err, ErrMissingDate))
	})

	t.Run("Every missing field reported", func(t *testing.T) {
		_, err := ParseRow(nil, 9, "", syncedAt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingDate))
		assert.True(t, errors.Is(err, ErrMissingEmployeeID))
		assert.True(t, errors.Is(err, ErrMissingEmployeeName))
	})
}

func TestRecordToRow(t *testing.T) {
	rec := model.AttendanceRecord{
		Date:         "2024-01-15",
		EmployeeID:   "E1",
		EmployeeName: "Ann",
		FirstIn:      utils.Ptr("08:00:00"),
		ShiftName:    "Night",
	}
	row := RecordToRow(rec, StatusExported)
	assert.Len(t, row, ColumnCount)
	assert.Equal(t, []string{"2024-01-15", "E1", "Ann", "", "08:00:00", "", "", "Night", "exported"}, row)
}
