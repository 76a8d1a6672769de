package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/config"
	"github.com/teagang/dealership/internal/repository/filestore"
	"github.com/teagang/dealership/internal/service/notify"
	"github.com/teagang/dealership/internal/service/persistence"
)

func TestOpenFileStoreAndLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Store: config.StoreConfig{
		Backend:       config.StoreFile,
		InventoryFile: filepath.Join(dir, "inventory.csv"),
		ContractsFile: filepath.Join(dir, "contracts.csv"),
	}}

	store, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = store.Close(context.Background()) }()

	assert.IsType(t, &filestore.InventoryRepository{}, store.Backend)
	assert.IsType(t, &filestore.ContractLog{}, store.Contracts)

	svc := NewDealer(context.Background(), store, notify.Nop{}, zap.NewNop())
	assert.Equal(t, persistence.DefaultName, svc.Dealership().Name)
	assert.Equal(t, persistence.DefaultPhone, svc.Dealership().Phone)
}

func TestOpenUnknownStore(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{Store: config.StoreConfig{Backend: "redis"}}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewNotifierDisabled(t *testing.T) {
	assert.IsType(t, notify.Nop{}, NewNotifier(&config.Config{}, zap.NewNop()))
}
