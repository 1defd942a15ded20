package sheetsync

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// updatedRangeRe extracts the row number from an append response range
// like "Expenses!A42:J42".
var updatedRangeRe = regexp.MustCompile(`![A-Z]+(\d+)`)

// GoogleSheetStore implements RowStore on a Google Sheets worksheet.
type GoogleSheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string

	sheetID       int64
	sheetIDLoaded bool
}

// NewGoogleSheetStore creates a store bound to one worksheet of one
// spreadsheet, authenticating with a service account key file.
func NewGoogleSheetStore(ctx context.Context, credentialsFile, spreadsheetID, worksheet string) (*GoogleSheetStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleSheetStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}, nil
}

// AppendRow appends one row and returns the row number reported by the
// API, so concurrent appends from other clients cannot collide.
func (g *GoogleSheetStore) AppendRow(ctx context.Context, values []string) (int64, error) {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(values)}}

	resp, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, g.worksheet, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("append row: %w", err)
	}

	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return 0, fmt.Errorf("append response has no updated range")
	}
	m := updatedRangeRe.FindStringSubmatch(resp.Updates.UpdatedRange)
	if m == nil {
		return 0, fmt.Errorf("unexpected updated range %q", resp.Updates.UpdatedRange)
	}
	row, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected updated range %q: %w", resp.Updates.UpdatedRange, err)
	}
	return row, nil
}

// UpdateCell overwrites one cell addressed by 1-based row and column.
func (g *GoogleSheetStore) UpdateCell(ctx context.Context, row int64, col int, value string) error {
	if col < 1 || col > 26 {
		return fmt.Errorf("column index %d out of range", col)
	}
	cell := fmt.Sprintf("%s!%c%d", g.worksheet, rune('A'+col-1), row)

	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, cell, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update cell %s: %w", cell, err)
	}
	return nil
}

// DeleteRow removes the row from the worksheet grid.
func (g *GoogleSheetStore) DeleteRow(ctx context.Context, row int64) error {
	sheetID, err := g.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: row - 1,
						EndIndex:   row,
					},
				},
			},
		},
	}

	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", row, err)
	}
	return nil
}

// RowCount returns the number of the last row with data.
func (g *GoogleSheetStore) RowCount(ctx context.Context) (int64, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.worksheet+"!A:A").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("read column A: %w", err)
	}
	return int64(len(resp.Values)), nil
}

// AllRows reads the whole worksheet, header row first.
func (g *GoogleSheetStore) AllRows(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.worksheet).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read worksheet: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprintf("%v", cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// resolveSheetID looks up the numeric sheet id of the worksheet, which
// the delete API needs instead of the worksheet title.
func (g *GoogleSheetStore) resolveSheetID(ctx context.Context) (int64, error) {
	if g.sheetIDLoaded {
		return g.sheetID, nil
	}

	meta, err := g.svc.Spreadsheets.Get(g.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}

	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == g.worksheet {
			g.sheetID = sh.Properties.SheetId
			g.sheetIDLoaded = true
			return g.sheetID, nil
		}
	}
	return 0, fmt.Errorf("worksheet %q not found", g.worksheet)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
