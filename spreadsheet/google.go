package spreadsheet

import (
	"context"
	"fmt"
	"strings"

	"axiapac.com/attendance/attendance/core"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheet is a core.SheetClient over one tab of a Google spreadsheet.
type GoogleSheet struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// CredentialsOption picks inline service-account JSON over a credentials file.
func CredentialsOption(credentialsJSON, credentialsFile string) option.ClientOption {
	if credentialsJSON != "" {
		return option.WithCredentialsJSON([]byte(credentialsJSON))
	}
	return option.WithCredentialsFile(credentialsFile)
}

func NewGoogleSheet(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*GoogleSheet, error) {
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &GoogleSheet{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// a1 quotes the tab name so names with spaces or punctuation stay valid.
func (g *GoogleSheet) a1(cells string) string {
	return "'" + strings.ReplaceAll(g.sheetName, "'", "''") + "'!" + cells
}

func (g *GoogleSheet) ReadRows(ctx context.Context) ([][]string, error) {
	last, _ := excelize.ColumnNumberToName(core.ColumnCount)
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.a1("A:"+last)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", g.sheetName, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func (g *GoogleSheet) WriteRows(ctx context.Context, startRow int, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = toInterfaces(row)
	}
	return g.update(ctx, g.a1(fmt.Sprintf("A%d", startRow)), values)
}

func (g *GoogleSheet) WriteColumn(ctx context.Context, col int, startRow int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return err
	}
	cells := make([][]interface{}, len(values))
	for i, v := range values {
		cells[i] = []interface{}{v}
	}
	rng := fmt.Sprintf("%s%d:%s%d", name, startRow, name, startRow+len(values)-1)
	return g.update(ctx, g.a1(rng), cells)
}

func (g *GoogleSheet) update(ctx context.Context, rng string, values [][]interface{}) error {
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, rng, &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", rng, err)
	}
	return nil
}

func (g *GoogleSheet) URL() string {
	return "https://docs.google.com/spreadsheets/d/" + g.spreadsheetID
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
