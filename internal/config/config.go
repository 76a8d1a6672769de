package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends selectable with DEALER_STORE.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMongoDB  = "mongodb"
	StoreSheets   = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	Postgres PostgresConfig
	MongoDB  MongoDBConfig
	Sheets   SheetsConfig
	Backup   BackupConfig
	WhatsApp WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the zap preset: "prod" (JSON) or "dev" (console).
type LogConfig struct {
	Mode string
}

// StoreConfig selects the inventory backend and the file locations of the file backend.
type StoreConfig struct {
	Backend       string
	InventoryFile string
	ContractsFile string
	DealershipID  int
}

// PostgresConfig holds the relational backend connection string.
type PostgresConfig struct {
	DSN string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// BackupConfig drives the scheduled inventory backup. An empty schedule disables it.
type BackupConfig struct {
	CronSchedule string
	File         string
}

// WhatsAppConfig contains credentials for deal notifications. Notifications
// are disabled unless token, phone number id and recipient are all set.
type WhatsAppConfig struct {
	AccessToken       string
	PhoneNumberID     string
	BaseURL           string
	APIVersion        string
	SalesManagerPhone string
}

// Enabled reports whether deal notifications can be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != "" && w.SalesManagerPhone != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	dealershipID, err := strconv.Atoi(getenvWithDefault("DEALERSHIP_ID", "1"))
	if err != nil {
		return nil, fmt.Errorf("DEALERSHIP_ID must be an integer: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Mode: getenvWithDefault("LOG_MODE", "prod"),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(getenvWithDefault("DEALER_STORE", StoreFile)),
			InventoryFile: getenvWithDefault("INVENTORY_FILE", "inventory.csv"),
			ContractsFile: getenvWithDefault("CONTRACTS_FILE", "contracts.csv"),
			DealershipID:  dealershipID,
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "dealership"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Backup: BackupConfig{
			CronSchedule: os.Getenv("BACKUP_CRON_SCHEDULE"),
			File:         getenvWithDefault("BACKUP_FILE", "inventory.backup.csv"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:       os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:     os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:           getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:        getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			SalesManagerPhone: os.Getenv("SALES_MANAGER_PHONE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that the fields required by the selected backend are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Log.Mode {
	case "prod", "dev":
	default:
		return fmt.Errorf("LOG_MODE must be prod or dev, got %q", c.Log.Mode)
	}

	if c.Store.DealershipID <= 0 {
		return errors.New("DEALERSHIP_ID must be positive")
	}

	switch c.Store.Backend {
	case StoreFile:
		if c.Store.InventoryFile == "" {
			return errors.New("INVENTORY_FILE must not be empty")
		}
		if c.Store.ContractsFile == "" {
			return errors.New("CONTRACTS_FILE must not be empty")
		}
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN must be provided")
		}
	case StoreMongoDB:
		switch {
		case c.MongoDB.URI == "":
			return errors.New("MONGODB_URI must be provided")
		case c.MongoDB.DBName == "":
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case StoreSheets:
		switch {
		case c.Sheets.CredentialsPath == "":
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		case c.Sheets.SpreadsheetID == "":
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	default:
		return fmt.Errorf("DEALER_STORE must be one of file, postgres, mongodb, sheets; got %q", c.Store.Backend)
	}

	if c.Backup.CronSchedule != "" && c.Backup.File == "" {
		return errors.New("BACKUP_FILE must not be empty when BACKUP_CRON_SCHEDULE is set")
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
