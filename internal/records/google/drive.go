package google

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"payportal/internal/core"
	ports "payportal/internal/records"

	gdrive "google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"
)

// DriveSource reads the driver-portal dataset: a CSV export hosted as a
// single Drive file, downloaded in full on each fetch.
type DriveSource struct {
	svc    *gdrive.Service
	fileID string
}

var _ ports.Source = (*DriveSource)(nil)

// NewDriveFromEnv creates a Drive CSV source. Required: GOOGLE_DRIVE_FILE_ID
// plus service-account credentials.
func NewDriveFromEnv(ctx context.Context) (*DriveSource, error) {
	fileID := strings.TrimSpace(os.Getenv("GOOGLE_DRIVE_FILE_ID"))
	if fileID == "" {
		return nil, errors.New("missing GOOGLE_DRIVE_FILE_ID")
	}

	creds, err := credentialsJSON()
	if err != nil {
		return nil, err
	}
	svc, err := gdrive.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gdrive.DriveReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &DriveSource{svc: svc, fileID: fileID}, nil
}

// Fetch downloads the CSV file and cleans it into a Table.
func (s *DriveSource) Fetch(ctx context.Context) (core.Table, error) {
	if s.svc == nil {
		return core.Table{}, errors.New("drive service not initialized")
	}
	resp, err := s.svc.Files.Get(s.fileID).Context(ctx).Download()
	if err != nil {
		return core.Table{}, fmt.Errorf("download drive file %s: %w", s.fileID, err)
	}
	defer resp.Body.Close()

	tbl, err := cleanCSV(resp.Body)
	if err != nil {
		return core.Table{}, fmt.Errorf("parse drive csv %s: %w", s.fileID, err)
	}
	slog.InfoContext(ctx, "Fetched drive csv",
		"file_id", s.fileID,
		"record_count", len(tbl.Records))
	return tbl, nil
}

// cleanCSV reads header+rows from r and runs the Cleaner. Ragged rows are
// tolerated: the Cleaner pads short rows, so per-record field counts are not
// enforced here.
func cleanCSV(r io.Reader) (core.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return core.Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return core.Table{}, nil
	}
	return core.Clean(all[0], all[1:]), nil
}
