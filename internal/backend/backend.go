// Package backend selects and constructs the record source a binary runs
// against: the live Google worksheet, the Drive CSV export, the local SQLite
// snapshot, or an in-memory seed.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"payportal/internal/config"
	"payportal/internal/records"
	gsource "payportal/internal/records/google"
	"payportal/internal/records/memory"
	"payportal/internal/storage"
)

type Type string

const (
	Sheets Type = "sheets"
	Drive  Type = "drive"
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Sheets, Drive, SQLite, Memory:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result bundles the constructed source with its cleanup.
type Result struct {
	Source  records.Source
	Cleanup CleanupFunc
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the record source named by cfg.DataBackend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case Sheets:
		src, err := gsource.NewSheetsFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets source: %w", err)
		}
		f.logger.Info("Initialized sheets backend", "sheet", cfg.GoogleSheetName)
		return &Result{Source: src}, nil

	case Drive:
		src, err := gsource.NewDriveFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize drive source: %w", err)
		}
		f.logger.Info("Initialized drive backend", "file_id", cfg.GoogleDriveFileID)
		return &Result{Source: src}, nil

	case SQLite:
		repo, err := storage.NewSnapshotRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize snapshot repository: %w", err)
		}
		f.logger.Info("Initialized sqlite snapshot backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Source: repo, Cleanup: repo.Close}, nil

	default:
		src := memory.NewFromDir(cfg.DataDir)
		f.logger.Info("Initialized memory backend", "data_dir", cfg.DataDir)
		return &Result{Source: src}, nil
	}
}
