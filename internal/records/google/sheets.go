// Package google loads trip-payment records from the Google APIs: the admin
// dataset from a spreadsheet worksheet, the driver dataset from a Drive CSV
// export. Both authenticate with a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"payportal/internal/core"
	ports "payportal/internal/records"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsSource reads the payments worksheet wholesale.
type SheetsSource struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.Source = (*SheetsSource)(nil)

// NewSheetsFromEnv creates a worksheet source using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_SHEET_NAME (default
// "data") and service-account credentials (see credentialsJSON).
func NewSheetsFromEnv(ctx context.Context) (*SheetsSource, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "data"
	}

	creds, err := credentialsJSON()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsSource{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// Fetch downloads the whole worksheet and cleans it into a Table.
func (s *SheetsSource) Fetch(ctx context.Context) (core.Table, error) {
	if s.svc == nil {
		return core.Table{}, errors.New("sheets service not initialized")
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName).Context(ctx).Do()
	if err != nil {
		return core.Table{}, fmt.Errorf("read worksheet %s: %w", s.sheetName, err)
	}
	header, rows := splitValues(resp.Values)
	tbl := core.Clean(header, rows)
	slog.InfoContext(ctx, "Fetched worksheet",
		"sheet", s.sheetName,
		"record_count", len(tbl.Records),
		"columns", len(tbl.Columns))
	return tbl, nil
}

// splitValues converts the Sheets API values matrix into a header row plus
// string rows for the Cleaner.
func splitValues(values [][]interface{}) (header []string, rows [][]string) {
	if len(values) == 0 {
		return nil, nil
	}
	header = toStrings(values[0])
	rows = make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		rows = append(rows, toStrings(v))
	}
	return header, rows
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// credentialsJSON resolves service-account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func credentialsJSON() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}
