package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teagang/dealership/internal/domain/models"
)

func TestFetchMissingFile(t *testing.T) {
	repo := NewInventoryRepository(filepath.Join(t.TempDir(), "inventory.csv"), nil)

	snapshot, err := repo.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestFetchSplitsHeaderAndRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte("ABC|1 Main|555\r\n1|2020|Ford|F150|Truck|Black|500|35000.00\r\n\r\nbroken\n"), 0o644))

	snapshot, err := NewInventoryRepository(path, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABC|1 Main|555", snapshot.Header)
	assert.Equal(t, []string{"1|2020|Ford|F150|Truck|Black|500|35000.00", "", "broken"}, snapshot.Records)
}

func TestStoreRoundTripIsByteStable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	repo := NewInventoryRepository(path, nil)

	content := "ABC|1 Main|555\n1|2020|Ford|F150|Truck|Black|500|35000.00\n2|2018|Mazda|3|Sedan|White|64000|12500.25\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	snapshot, err := repo.Fetch(ctx)
	require.NoError(t, err)

	vehicles := make([]models.Vehicle, 0, len(snapshot.Records))
	for _, record := range snapshot.Records {
		v, err := models.ParseVehicleRecord(record)
		require.NoError(t, err)
		vehicles = append(vehicles, *v)
	}
	require.NoError(t, repo.Store(ctx, models.Dealership{Name: "ABC", Address: "1 Main", Phone: "555"}, vehicles))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(written))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp.*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStoreIntoMissingDirectoryFails(t *testing.T) {
	repo := NewInventoryRepository(filepath.Join(t.TempDir(), "nope", "inventory.csv"), nil)

	err := repo.Store(context.Background(), models.Dealership{Name: "ABC"}, nil)
	assert.Error(t, err)
}

func TestContractLogAppends(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "contracts.csv")
	log := NewContractLog(path, nil)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	vehicle := models.Vehicle{VIN: 9, Year: 2022, Make: "Kia", Model: "Rio", Type: "Car", Color: "Blue", Odometer: 10, Price: decimal.NewFromInt(9999)}

	require.NoError(t, log.AppendContract(ctx, models.NewSalesContract(date, "Bob", "bob@example.com", vehicle, false)))
	require.NoError(t, log.AppendContract(ctx, models.NewLeaseContract(date, "Ann", "ann@example.com", vehicle)))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "SALE|2024-01-02|Bob|bob@example.com|9|2022|Kia|Rio||Blue|10|9999.00|10893.95|NO|0.00", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "LEASE|2024-01-02|Ann|"))
}
