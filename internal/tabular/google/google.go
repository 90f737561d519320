// Package google implements the tabular store against the Google Sheets and
// Drive APIs.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tsink/internal/codec"
	"tsink/internal/core"
	"tsink/internal/tabular"

	gdrive "google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const spreadsheetMIME = "application/vnd.google-apps.spreadsheet"

// Scopes required by the store: read/write sheet values and structure, plus
// read-only document listing.
var Scopes = []string{
	gsheet.SpreadsheetsScope,
	gdrive.DriveMetadataReadonlyScope,
}

type Client struct {
	sheets *gsheet.Service
	drive  *gdrive.Service
}

var _ tabular.Store = (*Client)(nil)

// New builds a client on top of an authenticated HTTP client carrying at
// least Scopes (see googleauth).
func New(ctx context.Context, hc *http.Client) (*Client, error) {
	sheetsSvc, err := gsheet.NewService(ctx, goption.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	driveSvc, err := gdrive.NewService(ctx, goption.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &Client{sheets: sheetsSvc, drive: driveSvc}, nil
}

func (c *Client) ReadRange(ctx context.Context, doc, rangeSpec string) ([][]string, error) {
	resp, err := c.sheets.Spreadsheets.Values.Get(doc, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rangeSpec, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = toStrings(row)
	}
	return rows, nil
}

func (c *Client) AppendRow(ctx context.Context, doc, sheet string, row []string) error {
	vr := &gsheet.ValueRange{Values: [][]any{toAnys(row)}}
	_, err := c.sheets.Spreadsheets.Values.Append(doc, sheet, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

func (c *Client) UpdateRange(ctx context.Context, doc, rangeSpec string, row []string) error {
	vr := &gsheet.ValueRange{Values: [][]any{toAnys(row)}}
	_, err := c.sheets.Spreadsheets.Values.Update(doc, rangeSpec, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rangeSpec, err)
	}
	return nil
}

// DeleteRow removes one row via a structural batch edit. RowPosition is
// 1-based while the dimension range is 0-based, hence the shift.
func (c *Client) DeleteRow(ctx context.Context, doc string, sheetID int64, pos core.RowPosition) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(pos) - 1,
					EndIndex:   int64(pos),
				},
			},
		}},
	}
	_, err := c.sheets.Spreadsheets.BatchUpdate(doc, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete row %d: %w", pos, err)
	}
	return nil
}

func (c *Client) SheetIDs(ctx context.Context, doc string) (map[string]int64, error) {
	resp, err := c.sheets.Spreadsheets.Get(doc).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheet metadata: %w", err)
	}
	ids := make(map[string]int64, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids, nil
}

func (c *Client) ListDocuments(ctx context.Context) ([]tabular.Document, error) {
	resp, err := c.drive.Files.List().
		Q(fmt.Sprintf("mimeType='%s'", spreadsheetMIME)).
		Fields("files(id,name,modifiedTime)").
		OrderBy("modifiedTime desc").
		PageSize(20).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs := make([]tabular.Document, 0, len(resp.Files))
	for _, f := range resp.Files {
		modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
		docs = append(docs, tabular.Document{ID: f.Id, Name: f.Name, Modified: modified})
	}
	return docs, nil
}

func (c *Client) CreateDocument(ctx context.Context, title string) (string, error) {
	body := &gsheet.Spreadsheet{
		Properties: &gsheet.SpreadsheetProperties{Title: title},
	}
	for _, schema := range codec.DefaultSchema() {
		body.Sheets = append(body.Sheets, &gsheet.Sheet{
			Properties: &gsheet.SheetProperties{Title: schema.Title},
			Data:       []*gsheet.GridData{{RowData: toRowData(schema.Rows)}},
		})
	}
	resp, err := c.sheets.Spreadsheets.Create(body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	slog.InfoContext(ctx, "created document", "id", resp.SpreadsheetId, "title", title)
	return resp.SpreadsheetId, nil
}

func toRowData(rows [][]string) []*gsheet.RowData {
	out := make([]*gsheet.RowData, len(rows))
	for i, row := range rows {
		rd := &gsheet.RowData{}
		for _, v := range row {
			v := v
			rd.Values = append(rd.Values, &gsheet.CellData{
				UserEnteredValue: &gsheet.ExtendedValue{StringValue: &v},
			})
		}
		out[i] = rd
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toAnys(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
