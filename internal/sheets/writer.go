package sheets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"tournament-stats/internal/apierr"
	"tournament-stats/internal/stats"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	service = "sheets"

	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

	// Size of a worksheet created on first run
	newSheetRows = 1000
	newSheetCols = 60
)

// Target identifies the worksheet rows are appended to. SpreadsheetID wins
// over SpreadsheetName when both are set.
type Target struct {
	SpreadsheetID   string
	SpreadsheetName string
	Worksheet       string
}

// Writer appends stat rows to a Google Sheets worksheet.
type Writer struct {
	svc           *gsheets.Service
	spreadsheetID string
	worksheet     string
}

// NewWriter authenticates with the service account in credentialsFile and
// resolves the target spreadsheet. Extra client options are appended after
// the credentials (tests pass an endpoint and no credentials file).
func NewWriter(ctx context.Context, credentialsFile string, target Target, opts ...option.ClientOption) (*Writer, error) {
	if target.Worksheet == "" {
		target.Worksheet = "Sheet1"
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+2)
	if credentialsFile != "" {
		clientOpts = append(clientOpts,
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(gsheets.SpreadsheetsScope, drive.DriveReadonlyScope),
		)
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	id := target.SpreadsheetID
	if id == "" {
		id, err = findSpreadsheetByName(ctx, target.SpreadsheetName, clientOpts)
		if err != nil {
			return nil, err
		}
	}

	return &Writer{
		svc:           svc,
		spreadsheetID: id,
		worksheet:     target.Worksheet,
	}, nil
}

// findSpreadsheetByName looks the spreadsheet up through Drive. The sheet
// must be shared with the service account to be visible.
func findSpreadsheetByName(ctx context.Context, name string, opts []option.ClientOption) (string, error) {
	if name == "" {
		return "", fmt.Errorf("neither spreadsheet id nor name configured")
	}

	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create drive service: %w", err)
	}

	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)
	list, err := driveSvc.Files.List().Q(q).Fields("files(id, name)").PageSize(2).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("lookup spreadsheet %q: %w", name, classify(err))
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q not found - share it with the service account email: %w", name, apierr.ErrAuth)
	}
	if len(list.Files) > 1 {
		log.Printf("[Sheets] %d spreadsheets named %q, using %s", len(list.Files), name, list.Files[0].Id)
	}
	return list.Files[0].Id, nil
}

// SpreadsheetID returns the resolved spreadsheet id.
func (w *Writer) SpreadsheetID() string {
	return w.spreadsheetID
}

// EnsureWorksheet creates the target tab when the spreadsheet lacks it.
func (w *Writer) EnsureWorksheet(ctx context.Context) error {
	ss, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", classify(err))
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == w.worksheet {
			return nil
		}
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: w.worksheet,
					GridProperties: &gsheets.GridProperties{
						RowCount:    newSheetRows,
						ColumnCount: newSheetCols,
					},
				},
			},
		}},
	}
	if _, err := w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add worksheet %q: %w", w.worksheet, classify(err))
	}
	log.Printf("[Sheets] Created worksheet '%s'", w.worksheet)
	return nil
}

// EnsureHeader writes stats.Headers to row 1 unless it is already there.
// It reports whether the header was written.
func (w *Writer) EnsureHeader(ctx context.Context) (bool, error) {
	current, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, w.a1("A1:1")).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read header row: %w", classify(err))
	}
	if len(current.Values) > 0 && len(current.Values[0]) > 0 &&
		fmt.Sprint(current.Values[0][0]) == stats.Headers[0] {
		return false, nil
	}

	header := make([]interface{}, len(stats.Headers))
	for i, h := range stats.Headers {
		header[i] = h
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{header}}
	if _, err := w.svc.Spreadsheets.Values.Update(w.spreadsheetID, w.a1("A1"), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("write header row: %w", classify(err))
	}
	log.Printf("[Sheets] Added headers to '%s'", w.worksheet)
	return true, nil
}

// AppendRows appends rows after the last data row in a single call, so a
// batch is either appended whole or not at all.
func (w *Writer) AppendRows(ctx context.Context, rows []stats.Row) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = r.Values()
	}

	resp, err := w.svc.Spreadsheets.Values.Append(w.spreadsheetID, w.a1("A1"), &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %d rows: %w", len(rows), classify(err))
	}
	if resp.Updates != nil {
		log.Printf("[Sheets] Wrote %d rows to '%s' (%s)", resp.Updates.UpdatedRows, w.worksheet, resp.Updates.UpdatedRange)
	}
	return nil
}

// a1 qualifies a cell range with the worksheet name.
func (w *Writer) a1(cells string) string {
	return "'" + strings.ReplaceAll(w.worksheet, "'", "''") + "'!" + cells
}

// classify maps Google API failures onto the apierr taxonomy. A missing
// spreadsheet is reported as an auth failure: the usual cause is a sheet
// that was never shared with the service account.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		se := &apierr.StatusError{Service: service, StatusCode: gerr.Code, Message: gerr.Message}
		if gerr.Code == 404 {
			return fmt.Errorf("spreadsheet not visible to the service account: %w: %w", apierr.ErrAuth, se)
		}
		return se
	}
	return apierr.Transient(service, err)
}
