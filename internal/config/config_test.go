package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_MODE", "DEALER_STORE", "INVENTORY_FILE", "CONTRACTS_FILE",
		"POSTGRES_DSN", "DEALERSHIP_ID", "MONGODB_URI", "MONGODB_DB_NAME",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
		"BACKUP_CRON_SCHEDULE", "BACKUP_FILE", "WHATSAPP_TOKEN",
		"WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION",
		"SALES_MANAGER_PHONE",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaultsToFileStore(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreFile, cfg.Store.Backend)
	assert.Equal(t, "inventory.csv", cfg.Store.InventoryFile)
	assert.Equal(t, "contracts.csv", cfg.Store.ContractsFile)
	assert.Equal(t, 1, cfg.Store.DealershipID)
	assert.False(t, cfg.WhatsApp.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "DEALER_STORE=postgres\nPOSTGRES_DSN=host=localhost dbname=cars\nDEALERSHIP_ID=4\nLOG_MODE=dev\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Backend)
	assert.Equal(t, "host=localhost dbname=cars", cfg.Postgres.DSN)
	assert.Equal(t, 4, cfg.Store.DealershipID)
	assert.Equal(t, "dev", cfg.Log.Mode)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Port: "8080"},
			Log:    LogConfig{Mode: "prod"},
			Store:  StoreConfig{Backend: StoreFile, InventoryFile: "inventory.csv", ContractsFile: "contracts.csv", DealershipID: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "file store ok", mutate: func(*Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Backend = "redis" }, wantErr: "DEALER_STORE"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Backend = StorePostgres }, wantErr: "POSTGRES_DSN"},
		{name: "mongodb without uri", mutate: func(c *Config) { c.Store.Backend = StoreMongoDB }, wantErr: "MONGODB_URI"},
		{name: "sheets without credentials", mutate: func(c *Config) { c.Store.Backend = StoreSheets }, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{name: "bad log mode", mutate: func(c *Config) { c.Log.Mode = "verbose" }, wantErr: "LOG_MODE"},
		{name: "backup without file", mutate: func(c *Config) { c.Backup.CronSchedule = "@daily" }, wantErr: "BACKUP_FILE"},
		{name: "zero dealership id", mutate: func(c *Config) { c.Store.DealershipID = 0 }, wantErr: "DEALERSHIP_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
