package core

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync"

	"axiapac.com/attendance/attendance/model"
)

var discardLogger = log.New(io.Discard, "", 0)

type memSheet struct {
	mu      sync.Mutex
	rows    [][]string
	readErr error
	writes  int
}

func (s *memSheet) ReadRows(ctx context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (s *memSheet) ensure(row, col int) {
	for len(s.rows) < row {
		s.rows = append(s.rows, nil)
	}
	for len(s.rows[row-1]) < col {
		s.rows[row-1] = append(s.rows[row-1], "")
	}
}

func (s *memSheet) WriteRows(ctx context.Context, startRow int, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	for i, r := range rows {
		s.ensure(startRow+i, len(r))
		copy(s.rows[startRow+i-1], r)
	}
	return nil
}

func (s *memSheet) WriteColumn(ctx context.Context, col int, startRow int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	for i, v := range values {
		s.ensure(startRow+i, col+1)
		s.rows[startRow+i-1][col] = v
	}
	return nil
}

func (s *memSheet) URL() string { return "https://sheets.example/attendance" }

func (s *memSheet) status(row int) string {
	if row > len(s.rows) || len(s.rows[row-1]) <= ColStatus {
		return ""
	}
	return s.rows[row-1][ColStatus]
}

type memStore struct {
	mu        sync.Mutex
	records   []model.AttendanceRecord
	runs      []model.SyncRun
	failOn    func(batch []model.AttendanceRecord) error
	inserts   int
	deleted   int
	syncedErr error
}

func (m *memStore) SyncedRowNumbers(ctx context.Context, source string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.syncedErr != nil {
		return nil, m.syncedErr
	}
	var out []int
	for _, r := range m.records {
		if r.SheetSource == source {
			out = append(out, r.SheetRowNumber)
		}
	}
	return out, nil
}

func (m *memStore) InsertRecords(ctx context.Context, records []model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.failOn != nil {
		if err := m.failOn(records); err != nil {
			return err
		}
	}
	for _, rec := range records {
		dup := false
		for _, existing := range m.records {
			if existing.SheetSource == rec.SheetSource && existing.SheetRowNumber == rec.SheetRowNumber {
				dup = true
				break
			}
		}
		if !dup {
			m.records = append(m.records, rec)
		}
	}
	return nil
}

func (m *memStore) RecordsBetween(ctx context.Context, start, end string) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AttendanceRecord
	for _, r := range m.records {
		if r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

func (m *memStore) DeleteAll(ctx context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	for _, r := range m.records {
		if r.SheetSource != source {
			kept = append(kept, r)
		} else {
			m.deleted++
		}
	}
	m.records = kept
	return nil
}

func (m *memStore) LogRun(ctx context.Context, run *model.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

type memNotifier struct {
	infos  []string
	errors []string
}

func (n *memNotifier) Info(ctx context.Context, message string) error {
	n.infos = append(n.infos, message)
	return nil
}

func (n *memNotifier) Error(ctx context.Context, message string) error {
	n.errors = append(n.errors, message)
	return errors.New("slack unavailable")
}
