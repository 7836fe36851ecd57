package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"axiapac.com/attendance/infrastructure/filesystem"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook is a core.SheetClient over one worksheet of an .xlsx file kept in
// a FileSystem. Every write loads the latest copy and saves it back.
type Workbook struct {
	fs        filesystem.FileSystem
	key       string
	sheetName string
	location  string

	mu sync.Mutex
}

// NewWorkbook serves sheetName from the workbook stored under key. location
// is reported as the sheet URL.
func NewWorkbook(files filesystem.FileSystem, key, sheetName, location string) *Workbook {
	return &Workbook{fs: files, key: key, sheetName: sheetName, location: location}
}

func (w *Workbook) open(ctx context.Context) (*excelize.File, error) {
	var buf bytes.Buffer
	err := w.fs.ReadFile(ctx, w.key, &buf)
	if errors.Is(err, fs.ErrNotExist) {
		f := excelize.NewFile()
		if w.sheetName != "Sheet1" {
			if _, err := f.NewSheet(w.sheetName); err != nil {
				return nil, err
			}
			f.DeleteSheet("Sheet1")
		}
		return f, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", w.key, err)
	}
	if idx, err := f.GetSheetIndex(w.sheetName); err != nil || idx < 0 {
		if _, err := f.NewSheet(w.sheetName); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (w *Workbook) save(ctx context.Context, f *excelize.File) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to encode workbook %s: %w", w.key, err)
	}
	return w.fs.WriteFile(ctx, w.key, buf.Bytes(), xlsxContentType)
}

func (w *Workbook) ReadRows(ctx context.Context) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(w.sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", w.sheetName, err)
	}
	return rows, nil
}

func (w *Workbook) WriteRows(ctx context.Context, startRow int, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	return w.edit(ctx, func(f *excelize.File) error {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, startRow+i)
			if err != nil {
				return err
			}
			values := toInterfaces(row)
			if err := f.SetSheetRow(w.sheetName, cell, &values); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Workbook) WriteColumn(ctx context.Context, col int, startRow int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	return w.edit(ctx, func(f *excelize.File) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, startRow+i)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(w.sheetName, cell, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Workbook) edit(ctx context.Context, fn func(f *excelize.File) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("failed to update %s: %w", w.sheetName, err)
	}
	return w.save(ctx, f)
}

func (w *Workbook) URL() string {
	return w.location
}
