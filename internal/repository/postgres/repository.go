package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/teagang/dealership/internal/domain/models"
)

const (
	// DefaultDealershipID is the fixed id of the single dealership row.
	DefaultDealershipID = 1

	// TypeSold and TypeAvailable are the only vehicle types this store can reproduce.
	TypeSold      = "Sold"
	TypeAvailable = "Available"

	insertBatchSize = 200
)

// Repository persists the inventory and contracts in relational tables.
// Vehicle type is reduced to the sold flag on save and rebuilt as
// Sold/Available on load.
type Repository struct {
	db           *gorm.DB
	dealershipID int
	logger       *zap.Logger
}

// Open connects to Postgres with the provided DSN.
func Open(dsn string) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// NewRepository wraps an open gorm handle. dealershipID <= 0 selects DefaultDealershipID.
func NewRepository(db *gorm.DB, dealershipID int, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dealershipID <= 0 {
		dealershipID = DefaultDealershipID
	}
	return &Repository{db: db, dealershipID: dealershipID, logger: logger}
}

// Migrate creates or updates the tables used by the repository.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&dealershipRow{},
		&vehicleRow{},
		&salesContractRow{},
		&leaseContractRow{},
	); err != nil {
		return fmt.Errorf("migrate dealership schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Name identifies the backend in logs and errors.
func (r *Repository) Name() string { return "postgres" }

// Fetch reads the dealership row and its vehicles. No dealership row means no
// stored inventory.
func (r *Repository) Fetch(ctx context.Context) (*models.Snapshot, error) {
	var dealership dealershipRow
	err := r.db.WithContext(ctx).
		Where("dealership_id = ?", r.dealershipID).
		Take(&dealership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load dealership %d: %w", r.dealershipID, err)
	}

	var rows []vehicleRow
	if err := r.db.WithContext(ctx).
		Where("dealership_id = ?", r.dealershipID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load vehicles for dealership %d: %w", r.dealershipID, err)
	}

	snapshot := &models.Snapshot{
		Header:  dealership.toModel().Record(),
		Records: make([]string, 0, len(rows)),
	}
	for _, row := range rows {
		snapshot.Records = append(snapshot.Records, row.record())
	}
	return snapshot, nil
}

// Store upserts the dealership row, deletes its vehicles and inserts the
// current ones inside one transaction.
func (r *Repository) Store(ctx context.Context, dealership models.Dealership, vehicles []models.Vehicle) error {
	rows := make([]vehicleRow, 0, len(vehicles))
	collapsed := 0
	for _, v := range vehicles {
		row := newVehicleRow(r.dealershipID, v)
		if v.Type != TypeSold && v.Type != TypeAvailable {
			collapsed++
		}
		rows = append(rows, row)
	}
	if collapsed > 0 {
		r.logger.Debug("vehicle types stored as sold flag only", zap.Int("vehicles", collapsed))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := dealershipRow{
			DealershipID: r.dealershipID,
			Name:         dealership.Name,
			Address:      dealership.Address,
			Phone:        dealership.Phone,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dealership_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "address", "phone"}),
		}).Create(&header).Error; err != nil {
			return fmt.Errorf("upsert dealership: %w", err)
		}

		if err := tx.Where("dealership_id = ?", r.dealershipID).Delete(&vehicleRow{}).Error; err != nil {
			return fmt.Errorf("delete vehicles: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert vehicles: %w", err)
		}
		return nil
	})
}

// AppendContract inserts a row into sales_contracts or lease_contracts.
func (r *Repository) AppendContract(ctx context.Context, contract models.Contract) error {
	vin := strconv.Itoa(contract.Vehicle.VIN)

	var row any
	switch contract.Kind {
	case models.ContractSale:
		row = &salesContractRow{
			CustomerName:    contract.CustomerName,
			CustomerEmail:   contract.CustomerEmail,
			VehicleVIN:      vin,
			FinancialOption: contract.Financed(),
		}
	case models.ContractLease:
		row = &leaseContractRow{
			CustomerName:  contract.CustomerName,
			CustomerEmail: contract.CustomerEmail,
			VehicleVIN:    vin,
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", models.ErrInvalidContract, contract.Kind)
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert %s contract: %w", strings.ToLower(string(contract.Kind)), err)
	}
	return nil
}

type dealershipRow struct {
	DealershipID int    `gorm:"column:dealership_id;primaryKey;autoIncrement:false"`
	Name         string `gorm:"column:name"`
	Address      string `gorm:"column:address"`
	Phone        string `gorm:"column:phone"`
}

func (dealershipRow) TableName() string { return "dealerships" }

func (d dealershipRow) toModel() models.Dealership {
	return models.Dealership{Name: d.Name, Address: d.Address, Phone: d.Phone}
}

type vehicleRow struct {
	ID           uint            `gorm:"column:id;primaryKey"`
	VIN          string          `gorm:"column:vin;type:text"`
	Make         string          `gorm:"column:make"`
	Model        string          `gorm:"column:model"`
	Year         int             `gorm:"column:year"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Color        string          `gorm:"column:color"`
	Sold         bool            `gorm:"column:sold"`
	DealershipID int             `gorm:"column:dealership_id;index"`
	Odometer     int64           `gorm:"column:odometer"`
}

func (vehicleRow) TableName() string { return "vehicles" }

func newVehicleRow(dealershipID int, v models.Vehicle) vehicleRow {
	return vehicleRow{
		VIN:          strconv.Itoa(v.VIN),
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		Price:        v.Price,
		Color:        v.Color,
		Sold:         strings.EqualFold(v.Type, TypeSold),
		DealershipID: dealershipID,
		Odometer:     v.Odometer,
	}
}

// record renders the row as a canonical vehicle record so the gateway can
// validate it like any other stored line.
func (v vehicleRow) record() string {
	vehicleType := TypeAvailable
	if v.Sold {
		vehicleType = TypeSold
	}
	return strings.Join([]string{
		v.VIN,
		strconv.Itoa(v.Year),
		v.Make,
		v.Model,
		vehicleType,
		v.Color,
		strconv.FormatInt(v.Odometer, 10),
		v.Price.StringFixed(2),
	}, models.FieldSeparator)
}

type salesContractRow struct {
	ID              uint   `gorm:"column:id;primaryKey"`
	CustomerName    string `gorm:"column:customer_name"`
	CustomerEmail   string `gorm:"column:customer_email"`
	VehicleVIN      string `gorm:"column:vehicle_vin"`
	FinancialOption bool   `gorm:"column:financial_option"`
}

func (salesContractRow) TableName() string { return "sales_contracts" }

type leaseContractRow struct {
	ID            uint   `gorm:"column:id;primaryKey"`
	CustomerName  string `gorm:"column:customer_name"`
	CustomerEmail string `gorm:"column:customer_email"`
	VehicleVIN    string `gorm:"column:vehicle_vin"`
}

func (leaseContractRow) TableName() string { return "lease_contracts" }
