package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Record source selection: sheets | drive | sqlite | memory
	DataBackend string

	// Record cache. The driver portal tolerates a staler table than the
	// reporting portal, so it carries its own TTL.
	CacheTTL       time.Duration
	DriverCacheTTL time.Duration
	FetchTimeout   time.Duration

	// Google APIs
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleDriveFileID        string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// SQLite snapshot
	SQLiteDBPath string

	// AMQP refresh events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Snapshot worker
	SnapshotInterval time.Duration

	// Driver portal
	SessionTTL time.Duration

	// Memory backend seed directory
	DataDir string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		CacheTTL:       getEnvDuration("CACHE_TTL", 10*time.Minute),
		DriverCacheTTL: getEnvDuration("DRIVER_CACHE_TTL", time.Hour),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 30*time.Second),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "data"),
		GoogleDriveFileID:        getEnv("GOOGLE_DRIVE_FILE_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/payportal.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "payportal"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "snapshot_events"),

		SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", 10*time.Minute),

		SessionTTL: getEnvDuration("SESSION_TTL", 12*time.Hour),

		DataDir: getEnv("DATA_DIR", "data"),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "GOOGLE_SPREADSHEET_ID is required for the sheets backend")
		}
		if c.GoogleSheetName == "" {
			errs = append(errs, "GOOGLE_SHEET_NAME cannot be empty for the sheets backend")
		}
		errs = append(errs, c.validateGoogleCreds()...)
	case "drive":
		if c.GoogleDriveFileID == "" {
			errs = append(errs, "GOOGLE_DRIVE_FILE_ID is required for the drive backend")
		}
		errs = append(errs, c.validateGoogleCreds()...)
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLITE_DB_PATH cannot be empty for the sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
		// Seed directory is optional; a missing one yields an empty table.
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [sheets drive sqlite memory]", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.DriverCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid driver cache TTL %v: must be at least 1 second", c.DriverCacheTTL))
	}
	if c.FetchTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	}
	if c.SnapshotInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid snapshot interval %v: must be at least 1 second", c.SnapshotInterval))
	} else if c.SnapshotInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid snapshot interval %v: must be at most 24 hours", c.SnapshotInterval))
	}
	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (c *Config) validateGoogleCreds() []string {
	if c.GoogleServiceAccountJSON != "" {
		return nil
	}
	file := c.GoogleServiceAccountFile
	if file == "" {
		file = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if file == "" {
		return []string{"service account credentials required: set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS"}
	}
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return []string{fmt.Sprintf("service account file does not exist: %s", file)}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
