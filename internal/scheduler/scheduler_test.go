package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teagang/dealership/internal/domain/models"
	"github.com/teagang/dealership/internal/repository/filestore"
)

type fixedInventory struct{}

func (fixedInventory) Snapshot(context.Context) (models.Dealership, []models.Vehicle) {
	return models.Dealership{Name: "ABC", Address: "1 Main", Phone: "555"}, []models.Vehicle{
		{VIN: 1, Year: 2020, Make: "Ford", Model: "F150", Type: "Truck", Color: "Black", Odometer: 500, Price: decimal.NewFromInt(35000)},
	}
}

type capturingNotifier struct {
	messages []string
}

func (c *capturingNotifier) NotifyContract(context.Context, models.Contract) error { return nil }

func (c *capturingNotifier) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	c.messages = append(c.messages, req.Message)
	return nil
}

type failingStore struct{}

func (failingStore) Store(context.Context, models.Dealership, []models.Vehicle) error {
	return errors.New("read-only")
}

func TestBackupWritesFileAndSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.csv")
	notifier := &capturingNotifier{}
	s := NewScheduler("@daily", fixedInventory{}, filestore.NewInventoryRepository(path, nil), notifier, nil)

	require.NoError(t, s.Backup(context.Background()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ABC|1 Main|555\n1|2020|Ford|F150|Truck|Black|500|35000.00\n", string(content))

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "ABC inventory: 1 vehicles worth $35000.00")
}

func TestBackupStoreFailure(t *testing.T) {
	notifier := &capturingNotifier{}
	s := NewScheduler("@daily", fixedInventory{}, failingStore{}, notifier, nil)

	assert.Error(t, s.Backup(context.Background()))
	assert.Empty(t, notifier.messages)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler("not a schedule", fixedInventory{}, failingStore{}, nil, nil)
	assert.Error(t, s.Start())
}
