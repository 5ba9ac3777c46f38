// Package storage mirrors the external payments dataset into a local SQLite
// snapshot so the portals can run when the Google APIs are unreachable. The
// snapshot is rebuilt wholesale: Replace swaps the entire table in one
// transaction, matching the dataset's no-row-level-updates lifecycle.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"payportal/internal/core"

	_ "modernc.org/sqlite"
)

const (
	metaColumns   = "columns"
	metaFetchedAt = "fetched_at"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(dbPath string) (*SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{db: db}, nil
}

func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Replace swaps the snapshot for a freshly fetched table. Delete-and-insert
// inside one transaction keeps readers on the previous snapshot until commit.
func (r *SnapshotRepository) Replace(ctx context.Context, tbl core.Table, fetchedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_records`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trip_records (
			trip_id, driver_num, first_name, last_name, job_date,
			total_paid, total_fare, coop_commission, tips, tolls,
			base_fare, wait_time_pay, stops_amount, cash_collected, darter,
			status, nacha_title, account, bank, routing
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range tbl.Records {
		var jobDate interface{}
		if !rec.JobDate.IsEmpty() {
			jobDate = rec.JobDate.Format("2006-01-02")
		}
		if _, err := stmt.ExecContext(ctx,
			rec.TripID, rec.DriverNum, rec.FirstName, rec.LastName, jobDate,
			rec.TotalPaid.Cents, rec.TotalFare.Cents, rec.CoopCommission.Cents,
			rec.Tips.Cents, rec.Tolls.Cents,
			rec.BaseFare.Cents, rec.WaitTimePay.Cents, rec.StopsAmount.Cents,
			rec.CashCollected.Cents, rec.Darter.Cents,
			rec.Status, rec.NachaTitle, rec.Account, rec.Bank, rec.Routing,
		); err != nil {
			return fmt.Errorf("insert trip record %s: %w", rec.TripID, err)
		}
	}

	if err := setMeta(ctx, tx, metaColumns, encodeColumns(tbl.Columns)); err != nil {
		return err
	}
	if err := setMeta(ctx, tx, metaFetchedAt, fetchedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot replaced",
		"record_count", len(tbl.Records),
		"fetched_at", fetchedAt.UTC().Format(time.RFC3339))
	return nil
}

// Fetch implements records.Source by reading the whole snapshot.
func (r *SnapshotRepository) Fetch(ctx context.Context) (core.Table, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT trip_id, driver_num, first_name, last_name, job_date,
		       total_paid, total_fare, coop_commission, tips, tolls,
		       base_fare, wait_time_pay, stops_amount, cash_collected, darter,
		       status, nacha_title, account, bank, routing
		FROM trip_records ORDER BY id`)
	if err != nil {
		return core.Table{}, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var tbl core.Table
	for rows.Next() {
		var rec core.TripRecord
		var jobDate sql.NullString
		if err := rows.Scan(
			&rec.TripID, &rec.DriverNum, &rec.FirstName, &rec.LastName, &jobDate,
			&rec.TotalPaid.Cents, &rec.TotalFare.Cents, &rec.CoopCommission.Cents,
			&rec.Tips.Cents, &rec.Tolls.Cents,
			&rec.BaseFare.Cents, &rec.WaitTimePay.Cents, &rec.StopsAmount.Cents,
			&rec.CashCollected.Cents, &rec.Darter.Cents,
			&rec.Status, &rec.NachaTitle, &rec.Account, &rec.Bank, &rec.Routing,
		); err != nil {
			return core.Table{}, fmt.Errorf("scan trip record: %w", err)
		}
		if jobDate.Valid {
			rec.JobDate = core.ParseJobDate(jobDate.String)
		}
		tbl.Records = append(tbl.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return core.Table{}, fmt.Errorf("iterate snapshot: %w", err)
	}

	cols, err := getMeta(ctx, r.db, metaColumns)
	if err != nil {
		return core.Table{}, err
	}
	tbl.Columns = decodeColumns(cols)
	return tbl, nil
}

// FetchedAt reports when the snapshot was last replaced; zero when the
// snapshot has never been written.
func (r *SnapshotRepository) FetchedAt(ctx context.Context) (time.Time, error) {
	v, err := getMeta(ctx, r.db, metaFetchedAt)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot timestamp: %w", err)
	}
	return t, nil
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write snapshot meta %s: %w", key, err)
	}
	return nil
}

func getMeta(ctx context.Context, db *sql.DB, key string) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT value FROM snapshot_meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read snapshot meta %s: %w", key, err)
	}
	return v, nil
}

func encodeColumns(cols core.ColumnSet) string {
	names := make([]string, 0, len(cols))
	for name, present := range cols {
		if present {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func decodeColumns(s string) core.ColumnSet {
	cols := core.ColumnSet{}
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			cols[name] = true
		}
	}
	return cols
}
