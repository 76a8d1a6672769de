package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/teagang/dealership/internal/domain/models"
)

func setupTestRepository(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewRepository(db, 0, nil)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo, db
}

func testVehicles() []models.Vehicle {
	return []models.Vehicle{
		{VIN: 101, Year: 2020, Make: "Ford", Model: "F150", Type: "Sold", Color: "Black", Odometer: 500, Price: decimal.NewFromInt(35000)},
		{VIN: 102, Year: 2018, Make: "Mazda", Model: "3", Type: "Sedan", Color: "White", Odometer: 64000, Price: decimal.RequireFromString("12500.25")},
	}
}

func TestFetchWithoutDealershipRow(t *testing.T) {
	repo, _ := setupTestRepository(t)

	snapshot, err := repo.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestStoreThenFetchMapsTypeToSoldFlag(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepository(t)

	dealership := models.Dealership{Name: "ABC", Address: "1 Main", Phone: "555"}
	require.NoError(t, repo.Store(ctx, dealership, testVehicles()))

	snapshot, err := repo.Fetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "ABC|1 Main|555", snapshot.Header)
	assert.Equal(t, []string{
		"101|2020|Ford|F150|Sold|Black|500|35000.00",
		"102|2018|Mazda|3|Available|White|64000|12500.25",
	}, snapshot.Records)
}

func TestStoreReplacesPreviousRows(t *testing.T) {
	ctx := context.Background()
	repo, db := setupTestRepository(t)

	require.NoError(t, repo.Store(ctx, models.Dealership{Name: "Old", Address: "A", Phone: "1"}, testVehicles()))
	require.NoError(t, repo.Store(ctx, models.Dealership{Name: "New", Address: "B", Phone: "2"}, testVehicles()[1:]))

	var dealerships int64
	require.NoError(t, db.Model(&dealershipRow{}).Count(&dealerships).Error)
	assert.EqualValues(t, 1, dealerships)

	var vehicles int64
	require.NoError(t, db.Model(&vehicleRow{}).Count(&vehicles).Error)
	assert.EqualValues(t, 1, vehicles)

	snapshot, err := repo.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New|B|2", snapshot.Header)
	assert.Len(t, snapshot.Records, 1)
}

func TestStoreEmptyInventory(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupTestRepository(t)

	require.NoError(t, repo.Store(ctx, models.Dealership{Name: "ABC", Address: "1 Main", Phone: "555"}, nil))

	snapshot, err := repo.Fetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Empty(t, snapshot.Records)
}

func TestAppendContractRoutesByKind(t *testing.T) {
	ctx := context.Background()
	repo, db := setupTestRepository(t)
	vehicle := testVehicles()[0]
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.AppendContract(ctx, models.NewSalesContract(date, "Bob", "bob@example.com", vehicle, true)))
	require.NoError(t, repo.AppendContract(ctx, models.NewLeaseContract(date, "Ann", "ann@example.com", vehicle)))

	var sale salesContractRow
	require.NoError(t, db.First(&sale).Error)
	assert.Equal(t, "101", sale.VehicleVIN)
	assert.True(t, sale.FinancialOption)

	var lease leaseContractRow
	require.NoError(t, db.First(&lease).Error)
	assert.Equal(t, "Ann", lease.CustomerName)

	err := repo.AppendContract(ctx, models.Contract{Kind: "RENT"})
	assert.ErrorIs(t, err, models.ErrInvalidContract)
}
